package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing starts a server span per request through otelgin. Span names follow
// "METHOD route", e.g. "POST /api/v1/credits/:id/apply".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes copies request_id and user_id onto the active span. It must run
// after Tracing, RequestID and ActingUser.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpan(c, span)
		}
		c.Next()
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if userID, ok := GetUserID(c); ok {
		span.SetAttributes(attribute.String("user_id", userID.String()))
	}
}

// SpanErrorMarker marks the active span as failed for 4xx and 5xx responses.
// Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		description := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			description = "Internal Server Error"
		case status == http.StatusNotFound:
			description = "Not Found"
		case status == http.StatusConflict:
			description = "Conflict"
		case status == http.StatusUnprocessableEntity:
			description = "Rejected"
		}
		span.SetStatus(codes.Error, description)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
