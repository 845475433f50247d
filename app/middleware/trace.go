package middleware

import (
	"schedrouter/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const traceHeader = "X-Trace-Id"

// Trace assigns every request a trace id, taking the caller's X-Trace-Id
// when present, and threads it through the request context for logging.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(traceHeader, traceID)

		c.Next()
	}
}
