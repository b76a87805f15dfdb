package internal

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// methods lists the verbs probed when building the Allow header.
var methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// Route is a registered method and pattern pair.
type Route struct {
	handler HandlerFunc
	Method  string
	Pattern string
}

// routeTable is the state shared by a router and all of its groups.
// chi does the path matching; handlers are kept here by method and pattern.
type routeTable struct {
	mux        *chi.Mux
	routes     map[string]*Route
	order      []*Route
	middleware []Middleware
	mu         sync.RWMutex
}

// Router maps method and path pairs to handlers.
// Patterns use chi syntax: "/users/{id}", "/files/*", "/posts/{id:[0-9]+}".
type Router struct {
	table      *routeTable
	prefix     string
	middleware []Middleware
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		table: &routeTable{
			mux:    chi.NewRouter(),
			routes: make(map[string]*Route),
		},
	}
}

// Register adds a handler for method and pattern.
// Registering the same pair twice replaces the previous handler.
// Panics on an invalid pattern, like chi does.
func (r *Router) Register(method, pattern string, h HandlerFunc, mw ...Middleware) *Route {
	if h == nil {
		panic(fmt.Sprintf("proton: nil handler for %s %s", method, pattern))
	}
	method = strings.ToUpper(method)
	full := r.join(pattern)

	// Group middleware wraps route middleware; the first one listed runs first.
	chain := slices.Concat(r.middleware, mw)
	for _, m := range slices.Backward(chain) {
		h = m(h)
	}
	route := &Route{Method: method, Pattern: full, handler: h}

	t := r.table
	t.mu.Lock()
	defer t.mu.Unlock()
	chi.RegisterMethod(method)
	t.mux.Method(method, full, http.NotFoundHandler())
	key := routeKey(method, full)
	if _, exists := t.routes[key]; !exists {
		t.order = append(t.order, route)
	} else {
		for i, existing := range t.order {
			if existing.Method == method && existing.Pattern == full {
				t.order[i] = route
			}
		}
	}
	t.routes[key] = route
	return route
}

func (r *Router) GET(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodGet, pattern, h, mw...)
}

func (r *Router) POST(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodPost, pattern, h, mw...)
}

func (r *Router) PUT(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodPut, pattern, h, mw...)
}

func (r *Router) PATCH(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodPatch, pattern, h, mw...)
}

func (r *Router) DELETE(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodDelete, pattern, h, mw...)
}

func (r *Router) HEAD(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodHead, pattern, h, mw...)
}

func (r *Router) OPTIONS(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return r.Register(http.MethodOptions, pattern, h, mw...)
}

// Group registers routes sharing a pattern prefix and middleware.
// Middleware passed here applies only to routes declared inside fn.
func (r *Router) Group(prefix string, fn func(r *Router), mw ...Middleware) {
	fn(&Router{
		table:      r.table,
		prefix:     r.join(prefix),
		middleware: slices.Concat(r.middleware, mw),
	})
}

// Use appends middleware that wraps every matched handler, including
// routes registered before the call. The first middleware added runs first.
func (r *Router) Use(mw ...Middleware) {
	if r.prefix != "" || len(r.middleware) > 0 {
		panic("proton: Use must be called on the root router; pass group middleware to Group")
	}
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	r.table.middleware = append(r.table.middleware, mw...)
}

// Mount attaches an http.Handler under pattern for every method.
// The prefix is stripped before the handler sees the request.
func (r *Router) Mount(pattern string, h http.Handler) {
	full := r.join(pattern)
	h = http.StripPrefix(strings.TrimSuffix(full, "/"), h)
	for _, method := range methods {
		r.Register(method, pattern, HandlerFromHTTP(h))
		r.Register(method, strings.TrimSuffix(pattern, "/")+"/*", HandlerFromHTTP(h))
	}
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	r.table.mu.RLock()
	defer r.table.mu.RUnlock()
	return slices.Clone(r.table.order)
}

// Match resolves method and path to a route and its parameters.
// It returns a 404 HTTPError when no route matches the path, and a 405
// HTTPError listing the allowed methods when only the method is wrong.
func (r *Router) Match(method, path string) (*Route, Params, error) {
	route, rctx := r.find(strings.ToUpper(method), path)
	if route != nil {
		return route, paramsOf(rctx), nil
	}

	var allowed []string
	for _, m := range methods {
		if found, _ := r.find(m, path); found != nil {
			allowed = append(allowed, m)
		}
	}
	if len(allowed) > 0 {
		return nil, nil, ErrMethodNotAllowed(allowed)
	}
	return nil, nil, ErrNotFound(http.StatusText(http.StatusNotFound))
}

func (r *Router) find(method, path string) (*Route, *chi.Context) {
	if path == "" {
		path = "/"
	}
	rctx := chi.NewRouteContext()
	t := r.table
	t.mu.RLock()
	defer t.mu.RUnlock()
	pattern := t.mux.Find(rctx, method, path)
	if pattern == "" {
		return nil, nil
	}
	return t.routes[routeKey(method, pattern)], rctx
}

// dispatch resolves the route for req and runs it through the middleware stack.
func (r *Router) dispatch(req *http.Request, res *Response, c *cycle) (*Response, error) {
	route, rctx := r.find(strings.ToUpper(req.Method), req.URL.Path)
	if route == nil {
		_, _, err := r.Match(req.Method, req.URL.Path)
		return nil, err
	}

	c.mu.Lock()
	c.route = route
	c.mu.Unlock()

	r.table.mu.RLock()
	h := route.handler
	for _, m := range slices.Backward(r.table.middleware) {
		h = m(h)
	}
	r.table.mu.RUnlock()

	// Expose chi's route context so chi.URLParam and RoutePattern work in handlers.
	rctx.RouteMethod = route.Method
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return h(req, res, paramsOf(rctx))
}

func (r *Router) join(pattern string) string {
	if pattern == "" || pattern == "/" {
		if r.prefix != "" {
			return r.prefix
		}
		return "/"
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return strings.TrimSuffix(r.prefix, "/") + pattern
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

func paramsOf(rctx *chi.Context) Params {
	params := make(Params, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return params
}
