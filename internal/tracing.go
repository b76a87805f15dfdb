package internal

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dmitrymomot/proton"

func (a *App) setTracerProvider(tp trace.TracerProvider) {
	a.tracerProvider = tp
	a.tracer = tp.Tracer(instrumentationName)
}

// startSpan opens a span covering one lifecycle run.
// With the default no-op provider this costs nothing.
func (a *App) startSpan(r *http.Request) (context.Context, trace.Span) {
	return a.tracer.Start(r.Context(), "proton.handle",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		),
	)
}

func (a *App) endSpan(span trace.Span, res *Response, err error) {
	if res != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", res.Status()))
		if route := res.Route(); route != nil {
			span.SetAttributes(attribute.String("http.route", route.Pattern))
		}
	}
	if err != nil {
		span.RecordError(err)
	}
	if err != nil && (res == nil || res.Status() >= http.StatusInternalServerError) {
		span.SetStatus(codes.Error, err.Error())
	}
}
