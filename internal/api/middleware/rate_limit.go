package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"signaling-service/internal/services"
	"signaling-service/pkg/response"
)

type RateLimitMiddleware struct {
	redisService *services.RedisService
}

func NewRateLimitMiddleware(redisService *services.RedisService) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redisService: redisService,
	}
}

// RateLimit limits authenticated callers per user and endpoint.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "")
			return
		}

		key := fmt.Sprintf("rate_limit:%d:%s", userID, c.Request.URL.Path)
		rm.check(c, key, requests, window)
	}
}

// WebSocketRateLimit caps how fast a user may open new connections.
func (rm *RateLimitMiddleware) WebSocketRateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "")
			return
		}

		key := fmt.Sprintf("rate_limit:websocket:%d", userID)
		rm.check(c, key, requests, window)
	}
}

// RateLimitIP limits unauthenticated routes by client address.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		rm.check(c, key, requests, window)
	}
}

func (rm *RateLimitMiddleware) check(c *gin.Context, key string, requests int, window time.Duration) {
	allowed, err := rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window)
	if err != nil {
		response.AbortError(c, http.StatusInternalServerError, response.CodeInternal, "rate limit check failed")
		return
	}

	if !allowed {
		response.AbortError(c, http.StatusTooManyRequests, response.CodeRateLimited,
			fmt.Sprintf("too many requests, limit is %d per %v", requests, window))
		return
	}

	c.Next()
}
