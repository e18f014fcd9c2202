package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authTestSecret = "middleware-test-secret"

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(authTestSecret)

	engine := gin.New()
	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.MustGet(ContextUserID),
			"username": c.GetString(ContextUsername),
		})
	}
	engine.GET("/header", am.RequireAuth(), echo)
	engine.GET("/query", am.RequireAuthFromQuery(), echo)
	return engine
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID uint, username string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func get(engine *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	engine := newAuthEngine()
	token := signToken(t, authTestSecret, jwt.SigningMethodHS256, validClaims(42, "carol"))

	w := get(engine, "/header", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 42, "username": "carol"}`, w.Body.String())
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	engine := newAuthEngine()

	w := get(engine, "/header", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	engine := newAuthEngine()

	cases := map[string]string{
		"garbage":         "Bearer not-a-jwt",
		"wrong secret":    "Bearer " + signToken(t, "other-secret", jwt.SigningMethodHS256, validClaims(42, "carol")),
		"wrong algorithm": "Bearer " + signToken(t, authTestSecret, jwt.SigningMethodHS384, validClaims(42, "carol")),
		"expired": "Bearer " + signToken(t, authTestSecret, jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":  42,
			"username": "carol",
			"exp":      time.Now().Add(-time.Minute).Unix(),
		}),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(engine, "/header", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAuthRejectsBadUserIDClaim(t *testing.T) {
	engine := newAuthEngine()

	cases := map[string]jwt.MapClaims{
		"missing":  {"username": "carol", "exp": time.Now().Add(time.Hour).Unix()},
		"zero":     {"user_id": 0, "username": "carol", "exp": time.Now().Add(time.Hour).Unix()},
		"negative": {"user_id": -3, "username": "carol", "exp": time.Now().Add(time.Hour).Unix()},
		"string":   {"user_id": "42", "username": "carol", "exp": time.Now().Add(time.Hour).Unix()},
	}

	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			token := signToken(t, authTestSecret, jwt.SigningMethodHS256, claims)
			w := get(engine, "/header", "Bearer "+token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAuthDefaultsUsernameWhenClaimMissing(t *testing.T) {
	engine := newAuthEngine()
	token := signToken(t, authTestSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := get(engine, "/header", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 42, "username": ""}`, w.Body.String())
}

func TestRequireAuthFromQuery(t *testing.T) {
	engine := newAuthEngine()
	token := signToken(t, authTestSecret, jwt.SigningMethodHS256, validClaims(42, "carol"))

	// Token in the query string, no header.
	w := get(engine, "/query?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 42, "username": "carol"}`, w.Body.String())

	// Header fallback still works for non-browser clients.
	w = get(engine, "/query", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Neither is a 401.
	w = get(engine, "/query", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
