package ice

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ephemeral TURN credentials in the coturn REST form (turnserver running
// with --use-auth-secret):
//
//	username   = <unix_expiry>:<prefix>:<session_id>
//	credential = base64(hmac_sha1(shared_secret, username))
//
// The TURN server recomputes the HMAC from its copy of the shared secret and
// rejects the credential once the embedded expiry passes, so nothing about a
// session ever has to be pushed to it.

// Credentials is handed to browsers inside the join response.
type Credentials struct {
	Username   string `json:"username"`
	Credential string `json:"credential"`
	ExpiryUnix int64  `json:"expiry_unix"`
}

// Generator mints per-session TURN credentials.
type Generator struct {
	secret []byte
	ttl    time.Duration
	prefix string

	now func() time.Time
}

func NewGenerator(secret, prefix string, ttl time.Duration) (*Generator, error) {
	if secret == "" {
		return nil, errors.New("turn rest: shared secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("turn rest: ttl must be positive")
	}
	if prefix == "" || strings.Contains(prefix, ":") {
		return nil, errors.New("turn rest: prefix must be non-empty and contain no ':'")
	}
	return &Generator{
		secret: []byte(secret),
		ttl:    ttl,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

// Credentials builds the ephemeral username/credential pair for a session.
func (g *Generator) Credentials(sessionID string) (Credentials, error) {
	if sessionID == "" || strings.Contains(sessionID, ":") {
		return Credentials{}, errors.New("turn rest: session id must be non-empty and contain no ':'")
	}

	expiry := g.now().UTC().Add(g.ttl).Unix()
	username := fmt.Sprintf("%d:%s:%s", expiry, g.prefix, sessionID)

	mac := hmac.New(sha1.New, g.secret)
	mac.Write([]byte(username))

	return Credentials{
		Username:   username,
		Credential: base64.StdEncoding.EncodeToString(mac.Sum(nil)),
		ExpiryUnix: expiry,
	}, nil
}
