package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moodhabit/backend/internal/logger"
)

// RequestID assigns a correlation ID to every request. An incoming
// X-Request-ID header is honored; otherwise a new one is generated.
// The ID is stored in the gin context (for apierror responses) and in the
// request context (for log enrichment), and echoed back in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		requestID = logger.RequestIDFromContext(ctx)

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Logger middleware for logging HTTP requests
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		log := logger.FromContext(c.Request.Context()).WithContext(c.Request.Context())
		log.Info("request completed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", statusCode),
			logger.Duration("latency", latency),
		)
	}
}
