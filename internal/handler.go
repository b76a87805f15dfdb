package internal

import "net/http"

// Params holds the path parameters extracted by the router, e.g. {id} in "/users/{id}".
type Params map[string]string

// Get returns the parameter value by name.
// Returns empty string if the parameter doesn't exist.
func (p Params) Get(name string) string {
	return p[name]
}

// Handler declares routes on a router.
//
// Example:
//
//	type PagesHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *PagesHandler) Routes(r *proton.Router) {
//	    r.GET("/", h.home)
//	    r.GET("/pages/{slug}", h.show)
//	}
type Handler interface {
	Routes(r *Router)
}

// HandlerFunc is the signature for route handlers.
// It receives the request, the response of the current cycle and the path
// parameters, and returns the response to send. Returning a non-nil error
// hands the error to the exception decorator. Returning a nil response
// without an error is a contract violation.
type HandlerFunc func(r *http.Request, res *Response, params Params) (*Response, error)

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func PoweredBy(next proton.HandlerFunc) proton.HandlerFunc {
//	    return func(r *http.Request, res *proton.Response, p proton.Params) (*proton.Response, error) {
//	        res.SetHeader("X-Powered-By", "proton")
//	        return next(r, res, p)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ExceptionDecorator converts an error caught during dispatch into a response.
// It must return a non-nil response.
type ExceptionDecorator func(err error) *Response

// HandlerFromHTTP adapts a standard http.Handler into a HandlerFunc.
// The handler writes into the response of the current cycle.
func HandlerFromHTTP(h http.Handler) HandlerFunc {
	return func(r *http.Request, res *Response, _ Params) (*Response, error) {
		h.ServeHTTP(res, r)
		return res, nil
	}
}
