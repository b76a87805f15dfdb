package internal

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/proton/pkg/config"
	"github.com/dmitrymomot/proton/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithConfig replaces the configuration store.
// Use this to share a store loaded from files and environment.
func WithConfig(store *config.Store) Option {
	return func(a *App) {
		if store != nil {
			a.config = store
		}
	}
}

// WithSettings seeds the configuration store with values.
func WithSettings(values map[string]any) Option {
	return func(a *App) {
		for k, v := range values {
			a.config.Set(k, v)
		}
	}
}

// WithDebug toggles debug mode. In debug mode the default exception
// decorator exposes error messages and traces.
func WithDebug(debug bool) Option {
	return func(a *App) {
		a.config.Set(KeyDebug, debug)
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.router.Use(mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithExceptionDecorator sets the function that converts errors into responses.
//
// Example:
//
//	proton.WithExceptionDecorator(func(err error) *proton.Response {
//	    return proton.NewResponse().HTML(http.StatusInternalServerError, "<h1>Oops</h1>")
//	})
func WithExceptionDecorator(d ExceptionDecorator) Option {
	return func(a *App) {
		a.decorator = d
	}
}

// WithListener subscribes a listener during construction.
// Panics on an empty name or nil listener.
func WithListener(name string, l Listener) Option {
	return func(a *App) {
		a.Subscribe(name, l)
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	proton.New(
//	    proton.WithHealthChecks(
//	        proton.WithReadinessCheck("db", pingDB),
//	    ),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with the given component name and extractors.
//
// Example:
//
//	proton.New(
//	    proton.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAccessLog logs one line per request from Terminate.
func WithAccessLog() Option {
	return func(a *App) {
		a.accessLog = true
	}
}

// WithMetrics records request counts and durations into reg.
// Collectors live under the "proton_http" prefix.
// Panics if the collectors are already registered.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *App) {
		m := newHTTPMetrics("proton")
		if err := m.register(reg); err != nil {
			panic(fmt.Sprintf("proton: register metrics: %v", err))
		}
		a.Subscribe(EventResponseAfter, m.observe)
	}
}

// WithTracerProvider wraps each lifecycle run in a span.
// Run also instruments the server with otelhttp using this provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *App) {
		if tp != nil {
			a.setTracerProvider(tp)
			a.tracing = true
		}
	}
}

// WithEventPublisher forwards events to a watermill publisher as JSON
// EventEnvelope messages on topic. Without event names every lifecycle
// event is forwarded.
//
// Example:
//
//	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
//	proton.New(
//	    proton.WithEventPublisher(pubSub, "proton.events", proton.EventResponseAfter),
//	)
func WithEventPublisher(pub message.Publisher, topic string, events ...string) Option {
	return func(a *App) {
		if pub == nil {
			panic("proton: nil event publisher")
		}
		if len(events) == 0 {
			events = lifecycleEvents
		}
		b := &eventBridge{publisher: pub, topic: topic, logger: a.Logger}
		for _, name := range events {
			a.Subscribe(name, b.forward)
		}
	}
}
