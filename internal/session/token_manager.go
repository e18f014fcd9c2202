package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const issuer = "signaling-service"

var (
	// ErrTokenInvalid covers bad signatures, unknown tokens, and revoked tokens.
	ErrTokenInvalid = errors.New("session token invalid")
	// ErrTokenExpired is returned once the token's TTL has passed.
	ErrTokenExpired = errors.New("session token expired")
	// ErrTokenMismatch is returned when the token does not belong to the
	// presenting user/channel pair.
	ErrTokenMismatch = errors.New("session token does not match user and channel")
)

// Claims is the payload of a realtime session token.
type Claims struct {
	UserID      uint   `json:"user_id"`
	ChannelID   uint   `json:"channel_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Descriptor is what a validated token grants: the identity and channel the
// realtime session is bound to.
type Descriptor struct {
	UserID      uint      `json:"user_id"`
	ChannelID   uint      `json:"channel_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	SessionID   string    `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Grant is returned by Issue and handed to the client over REST.
type Grant struct {
	Token     string    `json:"session_token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type record struct {
	desc      Descriptor
	validated bool
}

// Manager issues short-lived session tokens and tracks them until they are
// validated over the WebSocket, revoked, or swept after expiry. Tokens are
// HS256 JWTs; the in-memory store is what makes revocation effective before
// the TTL runs out.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	sweepEvery time.Duration

	mu     sync.RWMutex
	tokens map[string]*record

	now func() time.Time
	log *zap.Logger
}

func NewManager(secret string, ttl, sweepEvery time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		secret:     []byte(secret),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		tokens:     make(map[string]*record),
		now:        time.Now,
		log:        log,
	}
}

// Issue mints a token for the given user and channel. Issuing again for the
// same pair leaves earlier tokens untouched; both stay redeemable until they
// expire or are revoked.
func (m *Manager) Issue(userID, channelID uint, displayName, role string) (Grant, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	sessionID := uuid.NewString()

	claims := &Claims{
		UserID:      userID,
		ChannelID:   channelID,
		DisplayName: displayName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Grant{}, err
	}

	m.mu.Lock()
	m.tokens[signed] = &record{desc: Descriptor{
		UserID:      userID,
		ChannelID:   channelID,
		DisplayName: displayName,
		Role:        role,
		SessionID:   sessionID,
		ExpiresAt:   expiresAt,
	}}
	m.mu.Unlock()

	m.log.Debug("session token issued",
		zap.Uint("user_id", userID),
		zap.Uint("channel_id", channelID),
		zap.String("session_id", sessionID))

	return Grant{Token: signed, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// Validate checks signature and expiry, requires the token to still be in the
// store (not revoked, not swept), and requires it to match the presenting
// user and channel exactly. A token may be validated more than once while it
// lives, which is what allows a quick reconnect.
func (m *Manager) Validate(token string, userID, channelID uint) (Descriptor, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Descriptor{}, ErrTokenExpired
		}
		return Descriptor{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Descriptor{}, ErrTokenInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tokens[token]
	if !ok {
		return Descriptor{}, ErrTokenInvalid
	}
	if !m.now().Before(rec.desc.ExpiresAt) {
		delete(m.tokens, token)
		return Descriptor{}, ErrTokenExpired
	}
	if claims.UserID != userID || claims.ChannelID != channelID {
		return Descriptor{}, ErrTokenMismatch
	}

	rec.validated = true
	return rec.desc, nil
}

// Revoke drops a token from the store and returns what it granted, so the
// caller can tear down the matching session. Unknown or already-revoked
// tokens are a no-op.
func (m *Manager) Revoke(token string) (Descriptor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tokens[token]
	if !ok {
		return Descriptor{}, false
	}
	delete(m.tokens, token)
	return rec.desc, true
}

// Cleanup removes expired records and reports how many were dropped.
func (m *Manager) Cleanup() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, rec := range m.tokens {
		if !now.Before(rec.desc.ExpiresAt) {
			delete(m.tokens, token)
			removed++
		}
	}
	return removed
}

// Run sweeps expired tokens on a fixed interval until the context ends.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Cleanup(); n > 0 {
				m.log.Debug("swept expired session tokens", zap.Int("count", n))
			}
		}
	}
}

// Stats reports live and validated token counts for the stats endpoint.
func (m *Manager) Stats() (live, validated int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.tokens {
		live++
		if rec.validated {
			validated++
		}
	}
	return live, validated
}
