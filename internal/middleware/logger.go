package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the gin context key holding the request ID.
const ContextKeyRequestID = "request_id"

// RequestID injects an X-Request-ID header into the request and response.
// An incoming ID from the caller is kept so requests can be traced across
// services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// probePaths are excluded from the access log to keep kubelet noise out.
var probePaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
}

// Logger logs each HTTP request with method, path, status, latency, and
// client IP. Handler errors collected by gin are appended when present.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if probePaths[c.Request.URL.Path] {
			return
		}

		requestID, _ := c.Get(ContextKeyRequestID)
		if len(c.Errors) > 0 {
			log.Printf("[%s] %s %s %d %s %s errors=%s",
				requestID,
				c.Request.Method,
				c.Request.URL.Path,
				c.Writer.Status(),
				time.Since(start),
				c.ClientIP(),
				c.Errors.String(),
			)
			return
		}
		log.Printf("[%s] %s %s %d %s %s",
			requestID,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
