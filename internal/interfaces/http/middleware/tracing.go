package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxEmployeeCodeLength bounds the code copied from the query string
const maxEmployeeCodeLength = 64

// Tracing opens a server span per request with otelgin and tags it with the
// request ID and the employee code the report is for. It must run after
// RequestID. The tagging handler runs inside the span, before it ends;
// otelgin itself records the errors handlers attach to the context.
func Tracing(service string, opts ...otelgin.Option) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(service, opts...),
		tagSpan,
	}
}

func tagSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}

	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if code := c.Query("code"); code != "" {
		if len(code) > maxEmployeeCodeLength {
			code = code[:maxEmployeeCodeLength]
		}
		span.SetAttributes(attribute.String("employee_code", code))
	}
	c.Next()
}
