package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps request IDs taken from inbound headers before
// they are attached to spans.
const maxRequestIDLength = 128

// TracingConfig configures the request tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns the default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "lastmile-backend",
		Enabled:     true,
	}
}

// TracingWithConfig wraps otelgin and enriches each request span with
// request_id, user_id and actor_role attributes once the handler chain
// has run. Responses of 400 and above mark the span as errored.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otel := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		// otelgin drives c.Next itself; when it returns the response
		// is written and JWT claims are on the context.
		otel(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if id := traceRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if role := getActorRoleFromContext(c); role != "" {
			span.SetAttributes(attribute.String("actor_role", role))
		}
		if userID := GetJWTUserID(c); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func traceRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := c.GetHeader("X-Request-ID")
	if len(id) > maxRequestIDLength {
		id = id[:maxRequestIDLength]
	}
	return id
}
