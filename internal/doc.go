// Package internal provides the core types and implementation for the Proton framework.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/proton"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Owns a configuration store, a router and an event emitter and runs the request lifecycle
//   - Router: Maps method and path pairs to handlers, with groups and middleware
//   - Response: Buffered response that implements http.ResponseWriter
//   - Event: Payload passed to lifecycle and custom event listeners
//   - HandlerFunc: Route handler returning the response to send
//   - Middleware: Wraps handlers to add cross-cutting concerns
//   - ExceptionDecorator: Converts errors into responses
//
// # Request Lifecycle
//
// Handle runs every request through the same steps:
//
//  1. A fresh Response is created and request.received is emitted
//  2. The router resolves the route (404 and 405 are HTTPErrors)
//  3. Global, group and route middleware run around the handler
//  4. response.before is emitted with the handler's response
//
// Any error or panic raised in steps 1 to 4 is handed to the exception
// decorator, whose response replaces the current one; response.before is
// then emitted for it unless it already ran. ServeHTTP adds
// response.before.send before writing and response.after (via Terminate)
// once the response is sent.
//
// Dispatch runs the same steps without the decorator and returns the error.
//
// # Contract Violations
//
// A handler returning a nil response without an error, or a decorator
// returning nil, yields ErrContractViolation. Handle returns it undecorated
// and ServeHTTP panics: both indicate a broken application, not a bad request.
//
// # Observability
//
// WithMetrics, WithTracerProvider, WithEventPublisher and WithAccessLog
// are all built on lifecycle listeners or the span around Handle, so they
// see exactly what custom listeners see.
package internal
