package tracing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/rechargemock/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/smallbiznis/rechargemock"

// MiddlewareConfig controls span annotation.
type MiddlewareConfig struct {
	// ErrorClassifier maps the handler's last error to (error_type, error_code).
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware opens a server span per request, continuing any inbound
// trace context. Only 5xx responses mark the span as failed; validation
// rejects and simulated operator failures are recorded as attributes.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	tracer := otel.Tracer(instrumentationName)
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		span.SetName(c.Request.Method + " " + route)

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		}
		if id := obscontext.RequestIDFromContext(ctx); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if id := c.GetString("transaction_id"); id != "" {
			attrs = append(attrs, attribute.String("transaction_id", id))
		}
		last := c.Errors.Last()
		if last != nil && cfg.ErrorClassifier != nil {
			errorType, errorCode := cfg.ErrorClassifier(last.Err)
			attrs = append(attrs,
				attribute.String("error.type", errorType),
				attribute.String("error_code", errorCode),
			)
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if last != nil {
				span.RecordError(SafeError(last.Err))
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// StartTask opens an internal span for a scheduled task. The span active
// when the task was scheduled becomes its parent, so a bill payment's
// resolution joins the trace of the request that accepted it.
func StartTask(ctx context.Context, name, runID string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "task "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("task.name", name),
			attribute.String("task.run_id", runID),
		),
	)
}
