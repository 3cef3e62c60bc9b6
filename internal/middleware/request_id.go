// Package middleware provides HTTP middleware components for the plate service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the HTTP header name for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength caps client-supplied request IDs. Longer values
	// are discarded and replaced so a hostile header cannot bloat every
	// log line of the request.
	maxRequestIDLength = 128
)

// ContextKey type for context keys to avoid collisions.
type ContextKey string

// RequestIDKey is the context key for request ID.
const RequestIDKey ContextKey = "request_id"

// RequestID returns a middleware that tags each request with an ID used
// in log lines and response envelopes. A client-supplied X-Request-ID is
// kept when it fits the length cap, so callers can correlate an
// optimization job across their systems and this one; otherwise a UUID v4
// is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		c.Set(string(RequestIDKey), requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID retrieves the request ID from the gin context. Returns an
// empty string when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(string(RequestIDKey)); exists {
		if requestID, ok := id.(string); ok {
			return requestID
		}
	}
	return ""
}
