package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookhaven/bookhaven/internal/contexts"
)

// TraceHeader carries the client-assigned trace id, when present.
const TraceHeader = "BH-Trace-Id"

// WithTracing attaches a trace id to the request context so every log
// line of the request carries it. The incoming header wins; otherwise a
// fresh id is generated. The id is echoed in the response.
func WithTracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Header(TraceHeader, traceID)

		ctx := contexts.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
