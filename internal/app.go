package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dmitrymomot/proton/pkg/config"
	"github.com/dmitrymomot/proton/pkg/event"
	"github.com/dmitrymomot/proton/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Well-known configuration keys.
const (
	// KeyDebug enables error details in default error responses.
	KeyDebug = "debug"
	// KeyServerAddress is the listen address used by Run when none is given.
	KeyServerAddress = "server.address"
	// KeyShutdownTimeout bounds graceful shutdown in Run.
	KeyShutdownTimeout = "server.shutdown_timeout"
)

// App orchestrates the request lifecycle.
// It owns a configuration store, a router and an event emitter, and turns
// every request into exactly one response.
type App struct {
	config         *config.Store
	router         *Router
	events         *event.Emitter[*Event]
	decorator      ExceptionDecorator
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	healthConfig   *healthConfig
	handlers       []Handler
	accessLog      bool
	tracing        bool
	mu             sync.RWMutex
}

// New creates a new application with the given options.
//
// Example:
//
//	app := proton.New(
//	    proton.WithDebug(true),
//	    proton.WithMiddleware(middlewares.RequestID()),
//	    proton.WithHandlers(handlers.NewPages(repo)),
//	)
func New(opts ...Option) *App {
	a := &App{
		config: config.New(),
		router: NewRouter(),
		events: event.New[*Event](),
		logger: logger.NewNope(),
	}
	a.setTracerProvider(noop.NewTracerProvider())

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

func (a *App) setupRoutes() {
	if a.healthConfig != nil {
		a.registerHealthRoutes(a.healthConfig)
	}
	for _, h := range a.handlers {
		h.Routes(a.router)
	}
}

// Config returns the application's configuration store.
func (a *App) Config() *config.Store { return a.config }

// Router returns the application's router.
func (a *App) Router() *Router { return a.router }

// Events returns the application's event emitter.
func (a *App) Events() *event.Emitter[*Event] { return a.events }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Set stores a configuration value or service.
func (a *App) Set(key string, value any) { a.config.Set(key, value) }

// Get returns a configuration value, or the first default when key is missing.
func (a *App) Get(key string, def ...any) any { return a.config.Get(key, def...) }

// Has reports whether a configuration key is present.
func (a *App) Has(key string) bool { return a.config.Has(key) }

// Remove deletes a configuration key.
func (a *App) Remove(key string) { a.config.Remove(key) }

// Debug reports whether debug mode is on.
func (a *App) Debug() bool { return a.config.Bool(KeyDebug) }

func (a *App) GET(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.GET(pattern, h, mw...)
}

func (a *App) POST(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.POST(pattern, h, mw...)
}

func (a *App) PUT(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.PUT(pattern, h, mw...)
}

func (a *App) PATCH(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.PATCH(pattern, h, mw...)
}

func (a *App) DELETE(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.DELETE(pattern, h, mw...)
}

func (a *App) HEAD(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.HEAD(pattern, h, mw...)
}

func (a *App) OPTIONS(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return a.router.OPTIONS(pattern, h, mw...)
}

// Group registers routes sharing a pattern prefix and middleware.
func (a *App) Group(prefix string, fn func(r *Router), mw ...Middleware) {
	a.router.Group(prefix, fn, mw...)
}

// Use appends global middleware.
func (a *App) Use(mw ...Middleware) { a.router.Use(mw...) }

// Subscribe registers a listener for an event name, or "*" for every event.
// Panics on an empty name or nil listener.
func (a *App) Subscribe(name string, l Listener) {
	if err := a.events.Subscribe(name, l); err != nil {
		panic(fmt.Sprintf("proton: subscribe %q: %v", name, err))
	}
}

// SubscribeOnce registers a listener that runs on the next emission only.
// Panics on an empty name or nil listener.
func (a *App) SubscribeOnce(name string, l Listener) {
	if err := a.events.SubscribeOnce(name, l); err != nil {
		panic(fmt.Sprintf("proton: subscribe %q: %v", name, err))
	}
}

// Emit fires a custom event outside the request lifecycle.
// Listener errors are joined and returned together with the event.
func (a *App) Emit(name string, args ...any) (*Event, error) {
	e := newEvent(name, nil, nil, args...)
	return e, a.events.Emit(name, e)
}

// SetExceptionDecorator replaces the exception decorator.
// Passing nil restores the default JSON decorator.
func (a *App) SetExceptionDecorator(d ExceptionDecorator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.decorator = d
}

func (a *App) exceptionDecorator() ExceptionDecorator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.decorator == nil {
		return a.defaultDecorator
	}
	return a.decorator
}

// Handle runs a request through the lifecycle and returns its response.
// Errors raised by listeners, routing or handlers are converted into a
// response by the exception decorator. The only error returned is
// ErrContractViolation, when a handler or the decorator yields no response.
func (a *App) Handle(r *http.Request) (*Response, error) {
	return a.process(r, true)
}

// Dispatch runs a request through the same lifecycle as Handle but returns
// errors to the caller instead of decorating them.
func (a *App) Dispatch(r *http.Request) (*Response, error) {
	return a.process(r, false)
}

// Terminate fires response.after for a response that has been sent.
// Listener errors are logged and returned.
func (a *App) Terminate(r *http.Request, res *Response) error {
	err := a.emit(EventResponseAfter, r, res)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "response.after listener failed", slog.Any("error", err))
	}
	if a.accessLog {
		a.logRequest(r, res)
	}
	return err
}

// ServeHTTP implements http.Handler: Handle, emit response.before.send,
// send the response and Terminate.
// A contract violation is a programming error and panics.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := a.Handle(r)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "request handling aborted", slog.Any("error", err))
		panic(err)
	}
	if req := res.request(); req != nil {
		r = req
	}

	if err := a.emit(EventResponseBeforeSend, r, res); err != nil {
		a.logger.ErrorContext(r.Context(), "response.before.send listener failed", slog.Any("error", err))
	}
	if err := res.Send(w); err != nil {
		a.logger.WarnContext(r.Context(), "failed to send response", slog.Any("error", err))
	}
	_ = a.Terminate(r, res)
}

func (a *App) process(r *http.Request, catch bool) (*Response, error) {
	ctx, span := a.startSpan(r)
	defer span.End()
	r = r.WithContext(ctx)

	c := newCycle()
	c.request = r
	res, before, err := a.pipeline(r, NewResponse().adopt(c), c)
	if err == nil {
		a.endSpan(span, res, nil)
		return res, nil
	}
	if !catch || errors.Is(err, ErrContractViolation) {
		a.endSpan(span, nil, err)
		return nil, err
	}

	decorated := a.exceptionDecorator()(err)
	if decorated == nil {
		err = fmt.Errorf("%w: exception decorator returned no response for: %w", ErrContractViolation, err)
		a.endSpan(span, nil, err)
		return nil, err
	}
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	decorated.adopt(c)
	a.logError(r, err, decorated)

	if !before {
		if emitErr := a.safeEmit(EventResponseBefore, r, decorated); emitErr != nil {
			a.logger.ErrorContext(r.Context(), "response.before listener failed on error response", slog.Any("error", emitErr))
		}
	}
	a.endSpan(span, decorated, err)
	return decorated, nil
}

// pipeline emits request.received, routes, runs the handler and emits
// response.before. before reports whether response.before was emitted.
func (a *App) pipeline(r *http.Request, res *Response, c *cycle) (out *Response, before bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = newPanicError(v)
		}
	}()

	if err := a.emit(EventRequestReceived, r, res); err != nil {
		return res, false, err
	}

	out, err = a.router.dispatch(r, res, c)
	if err != nil {
		return res, false, err
	}
	if out == nil {
		route := c.route
		return res, false, fmt.Errorf("%w: handler for %s %s returned no response", ErrContractViolation, route.Method, route.Pattern)
	}
	out.adopt(c)

	// set before emitting so a panicking listener does not trigger a second round
	before = true
	if err := a.emit(EventResponseBefore, r, out); err != nil {
		return out, before, err
	}
	return out, before, nil
}

func (a *App) emit(name string, r *http.Request, res *Response) error {
	return a.events.Emit(name, newEvent(name, r, res))
}

// safeEmit is emit with panics converted to errors.
func (a *App) safeEmit(name string, r *http.Request, res *Response) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = newPanicError(v)
		}
	}()
	return a.emit(name, r, res)
}

func (a *App) logError(r *http.Request, err error, res *Response) {
	status := res.Status()
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	if id := res.Header().Get(HeaderRequestID); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if pe, ok := AsPanicError(err); ok {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed", attrs...)
		return
	}
	a.logger.DebugContext(r.Context(), "request rejected", attrs...)
}

func (a *App) logRequest(r *http.Request, res *Response) {
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", res.Status()),
		slog.Int("size", len(res.Bytes())),
	}
	if route := res.Route(); route != nil {
		attrs = append(attrs, slog.String("route", route.Pattern))
	}
	if res.cycle != nil {
		attrs = append(attrs, slog.Duration("duration", time.Since(res.cycle.started)))
	}
	if id := res.Header().Get(HeaderRequestID); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	a.logger.InfoContext(r.Context(), "request completed", attrs...)
}
