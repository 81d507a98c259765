package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
)

// RequestLogger logs one entry per request. Successful requests to the
// quiet paths (probes, scrapes) are logged at debug level.
func RequestLogger(quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithContext(c.Request.Context()).WithFields(map[string]interface{}{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"route":      c.FullPath(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		})

		if user := GetUsername(c); user != "" {
			entry = entry.WithField("user", user)
		}
		if query != "" {
			entry = entry.WithField("query", query)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		case quiet[path]:
			entry.Debug("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
