package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"signaling-service/pkg/response"
)

// Context keys set by the auth middleware.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// AuthMiddleware verifies the API access token the main application issues to
// its users. This is not the per-channel session token; it only proves who the
// caller is.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// RequireAuth authenticates from the Authorization header.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		am.bindIdentity(c, tokenString)
	}
}

// RequireAuthFromQuery authenticates from the token query parameter, with the
// Authorization header as fallback. Browsers cannot attach headers to a
// WebSocket handshake, so the upgrade endpoint uses this variant.
func (am *AuthMiddleware) RequireAuthFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "token query parameter is required")
			return
		}

		am.bindIdentity(c, tokenString)
	}
}

// bindIdentity parses the access token and stores the caller identity on the
// request context, aborting on any validation failure.
func (am *AuthMiddleware) bindIdentity(c *gin.Context, tokenString string) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(am.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil || !token.Valid {
		response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid access token")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token claims")
		return
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "user_id claim must be a positive number")
		return
	}

	c.Set(ContextUserID, uint(userID))
	if username, ok := claims["username"].(string); ok {
		c.Set(ContextUsername, username)
	} else {
		c.Set(ContextUsername, "")
	}
	c.Next()
}
