package middleware

import (
	"github.com/fatflowers/ispbill/pkg/logctx"
	"github.com/fatflowers/ispbill/pkg/tool"

	"github.com/gin-gonic/gin"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderOperatorID = "X-Operator-ID"
)

// TraceMiddleware adds a trace ID to the request. It reads X-Request-ID if
// provided by the client; otherwise generates a UUIDv7. The trace ID is stored
// in both gin.Context (key: "traceID") and the request's context.Context.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set("traceID", traceID)
		c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), traceID))
		c.Next()
	}
}

// OperatorMiddleware records the operator named by X-Operator-ID so applied
// commands are attributed in the billing log.
func OperatorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if op := c.GetHeader(HeaderOperatorID); op != "" {
			c.Set("operatorID", op)
			c.Request = c.Request.WithContext(logctx.WithOperator(c.Request.Context(), op))
		}
		c.Next()
	}
}
