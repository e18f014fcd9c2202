package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSEngine(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS(allowedOrigins))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return engine
}

func requestWithOrigin(engine *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	engine := newCORSEngine([]string{"https://app.example.com"})

	w := requestWithOrigin(engine, http.MethodGet, "https://app.example.com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSOmitsHeaderForUnknownOrigin(t *testing.T) {
	engine := newCORSEngine([]string{"https://app.example.com"})

	w := requestWithOrigin(engine, http.MethodGet, "https://evil.example.com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAlwaysAllowsLocalhost(t *testing.T) {
	engine := newCORSEngine(nil)

	for _, origin := range []string{"http://localhost:3000", "http://127.0.0.1:5173"} {
		w := requestWithOrigin(engine, http.MethodGet, origin)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"), "origin %s", origin)
	}
}

func TestCORSAnswersPreflight(t *testing.T) {
	engine := newCORSEngine([]string{"https://app.example.com"})

	w := requestWithOrigin(engine, http.MethodOptions, "https://app.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
