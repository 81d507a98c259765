package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
)

const (
	TraceIDHeader = "X-Trace-ID"
	TraceIDKey    = "trace_id"
)

// Caller supplied ids are echoed into logs and events, so only short
// token-like values are accepted.
var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// TraceID adopts the caller's X-Trace-ID or mints one, exposes it on the
// response and stores it in the request context for logging and events.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if !traceIDPattern.MatchString(traceID) {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}

func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
