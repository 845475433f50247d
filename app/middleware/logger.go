package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"schedrouter/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/pretty"
)

// maxLoggedBody caps how much of a request body reaches the access log
const maxLoggedBody = 1000

// Logger is the access log middleware
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// POST bodies are the routed payloads; keep a compacted sample
		var bodyStr string
		if c.Request.Method == http.MethodPost {
			bodyStr = getRequestBody(c)
		}

		c.Next()

		if c.Writer.Status() == http.StatusNotFound {
			return
		}

		latency := time.Since(startTime)

		msg := "%3d | %13v | %15s | %s %s"
		args := []interface{}{
			c.Writer.Status(),
			latency,
			c.ClientIP(),
			c.Request.Method,
			c.Request.RequestURI,
		}
		if bodyStr != "" {
			msg += " | body: %s"
			args = append(args, bodyStr)
		}

		logger.InfoCtx(c.Request.Context(), msg, args...)
	}
}

// getRequestBody reads and restores the request body
func getRequestBody(c *gin.Context) string {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
		// Reset request body since reading it clears it
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return CompressBody(bodyBytes)
}

// CompressBody compacts a JSON body, truncating long payloads
func CompressBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	compressed := pretty.Ugly(body)
	if len(compressed) > maxLoggedBody {
		return string(compressed[:maxLoggedBody]) + "..."
	}
	return string(compressed)
}
