package proton

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/proton/internal"
	"github.com/dmitrymomot/proton/pkg/config"
	"github.com/dmitrymomot/proton/pkg/health"
	"github.com/dmitrymomot/proton/pkg/logger"
)

// Type aliases - public API
type (
	// App owns a configuration store, a router and an event emitter and
	// turns every request into exactly one response.
	App = internal.App

	// Router maps method and path pairs to handlers.
	Router = internal.Router

	// Route is a registered method and pattern pair.
	Route = internal.Route

	// Params holds path parameters extracted by the router.
	Params = internal.Params

	// Response is a buffered HTTP response implementing http.ResponseWriter.
	Response = internal.Response

	// Event is the payload passed to listeners.
	Event = internal.Event

	// Listener receives events.
	Listener = internal.Listener

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ExceptionDecorator converts errors into responses.
	ExceptionDecorator = internal.ExceptionDecorator

	// HTTPError represents an HTTP error with status, message and code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// PanicError represents a panic recovered during dispatch.
	PanicError = internal.PanicError

	// EventEnvelope is the payload published by WithEventPublisher.
	EventEnvelope = internal.EventEnvelope

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Config is the key-value store for settings and services.
	Config = config.Store
)

// Lifecycle event names.
const (
	EventRequestReceived    = internal.EventRequestReceived
	EventResponseBefore     = internal.EventResponseBefore
	EventResponseBeforeSend = internal.EventResponseBeforeSend
	EventResponseAfter      = internal.EventResponseAfter
)

// Well-known configuration keys.
const (
	KeyDebug           = internal.KeyDebug
	KeyServerAddress   = internal.KeyServerAddress
	KeyShutdownTimeout = internal.KeyShutdownTimeout
)

// HeaderRequestID is the header carrying the request ID.
const HeaderRequestID = internal.HeaderRequestID

// Errors
var (
	// ErrContractViolation is returned when a handler or the exception
	// decorator yields no response.
	ErrContractViolation = internal.ErrContractViolation

	// ErrAlreadySent is returned when sending a response twice.
	ErrAlreadySent = internal.ErrAlreadySent
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	app := proton.New(
//	    proton.WithDebug(true),
//	    proton.WithHandlers(handlers.NewPages(repo)),
//	)
//	app.GET("/", func(r *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
//	    return res.HTML(http.StatusOK, "<h1>It works!</h1>"), nil
//	})
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewResponse creates an empty 200 OK response.
func NewResponse() *Response {
	return internal.NewResponse()
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return internal.NewRouter()
}

// NewConfig creates a configuration store.
func NewConfig(opts ...config.Option) *Config {
	return config.New(opts...)
}

// HandlerFromHTTP adapts a standard http.Handler into a HandlerFunc.
func HandlerFromHTTP(h http.Handler) HandlerFunc {
	return internal.HandlerFromHTTP(h)
}

// MetricsHandler exposes the metrics gathered by g in the Prometheus text format.
func MetricsHandler(g prometheus.Gatherer) HandlerFunc {
	return internal.MetricsHandler(g)
}

// App options

// WithConfig replaces the configuration store.
func WithConfig(store *Config) Option {
	return internal.WithConfig(store)
}

// WithSettings seeds the configuration store with values.
func WithSettings(values map[string]any) Option {
	return internal.WithSettings(values)
}

// WithDebug toggles debug mode. In debug mode the default exception
// decorator exposes error messages and traces.
func WithDebug(debug bool) Option {
	return internal.WithDebug(debug)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithExceptionDecorator sets the function that converts errors into responses.
func WithExceptionDecorator(d ExceptionDecorator) Option {
	return internal.WithExceptionDecorator(d)
}

// WithListener subscribes a listener during construction.
func WithListener(name string, l Listener) Option {
	return internal.WithListener(name, l)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	proton.WithHealthChecks(
//	    proton.WithReadinessCheck("db", pingDB),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	proton.WithLogger("api", middlewares.RequestIDExtractor())
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithAccessLog logs one line per completed request.
func WithAccessLog() Option {
	return internal.WithAccessLog()
}

// WithMetrics records request counts and durations into reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return internal.WithMetrics(reg)
}

// WithTracerProvider wraps each request lifecycle in an OpenTelemetry span.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return internal.WithTracerProvider(tp)
}

// WithEventPublisher forwards events to a watermill publisher.
// Without event names every lifecycle event is forwarded.
func WithEventPublisher(pub message.Publisher, topic string, events ...string) Option {
	return internal.WithEventPublisher(pub, topic, events...)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithReadinessOptions passes options such as a per-check timeout to the readiness runner.
func WithReadinessOptions(opts ...health.Option) HealthOption {
	return internal.WithReadinessOptions(opts...)
}

// Run options

// Address sets the HTTP server address.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before requests are served.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Error helpers

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithErrorCode sets an application-specific error code.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithError attaches the underlying error.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// WithHeader adds a response header rendered with the error.
func WithHeader(key, value string) HTTPErrorOption {
	return internal.WithHeader(key, value)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrMethodNotAllowed(allowed []string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrMethodNotAllowed(allowed, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the HTTPError from an error chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsPanicError reports whether err wraps a recovered panic.
func IsPanicError(err error) bool {
	return internal.IsPanicError(err)
}

// Generic helpers

// Param returns a typed path parameter, or the zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](p Params, name string) T {
	return internal.Param[T](p, name)
}

// Query returns a typed query parameter, or the zero value.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string) T {
	return internal.Query[T](r, name)
}

// QueryDefault returns a typed query parameter, or defaultValue.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string, defaultValue T) T {
	return internal.QueryDefault(r, name, defaultValue)
}

// ConfigValue returns the configuration value under key asserted to T.
func ConfigValue[T any](app *App, key string) T {
	return config.Value[T](app.Config(), key)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return internal.RequestIDFromContext(ctx)
}
