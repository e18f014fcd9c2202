package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes returned by the REST edge.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal_error"
)

var msg = map[string]string{
	CodeInvalidRequest: "request body or parameters are invalid",
	CodeUnauthorized:   "missing or invalid credentials",
	CodeForbidden:      "not allowed for this channel",
	CodeNotFound:       "resource not found",
	CodeRateLimited:    "too many requests",
	CodeInternal:       "internal server error",
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Message returns the default human-readable text for a code.
func Message(code string) string {
	if m, ok := msg[code]; ok {
		return m
	}
	return msg[CodeInternal]
}

// Error writes the standard error envelope. An empty message falls back to
// the catalog text for the code.
func Error(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = Message(code)
	}
	c.JSON(status, gin.H{"error": ErrorBody{Code: code, Message: message}})
}

// AbortError is Error plus request abortion, for middleware.
func AbortError(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = Message(code)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": ErrorBody{Code: code, Message: message}})
}

// OK writes a 200 with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// NoContent writes an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
