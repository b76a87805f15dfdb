package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/proton/pkg/event"
)

// Lifecycle event names emitted while handling a request.
const (
	// EventRequestReceived fires before routing.
	EventRequestReceived = "request.received"
	// EventResponseBefore fires after the handler (or the exception decorator) produced a response.
	EventResponseBefore = "response.before"
	// EventResponseBeforeSend fires right before the response is written to the client.
	EventResponseBeforeSend = "response.before.send"
	// EventResponseAfter fires from Terminate once the response has been sent.
	EventResponseAfter = "response.after"
)

// Listener receives an event. A returned error is reported to the emitter's caller.
type Listener = event.Listener[*Event]

// Event is the payload passed to listeners.
// Request and Response are nil for custom events emitted outside a request.
type Event struct {
	ctx      context.Context
	request  *http.Request
	response *Response
	name     string
	args     []any
}

func newEvent(name string, r *http.Request, res *Response, args ...any) *Event {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	return &Event{ctx: ctx, name: name, request: r, response: res, args: args}
}

func (e *Event) Name() string { return e.name }

// Request returns the request of the cycle. Every lifecycle event of one
// ServeHTTP call sees the same request value, carrying the tracing span.
func (e *Event) Request() *http.Request { return e.request }

func (e *Event) Response() *Response { return e.response }

func (e *Event) Context() context.Context { return e.ctx }

// Args returns the extra arguments passed to Emit.
func (e *Event) Args() []any { return e.args }

// Arg returns the i-th argument or nil when out of range.
func (e *Event) Arg(i int) any {
	if i < 0 || i >= len(e.args) {
		return nil
	}
	return e.args[i]
}

// Route returns the matched route, or nil when routing failed or has not happened yet.
func (e *Event) Route() *Route {
	if e.response == nil {
		return nil
	}
	return e.response.Route()
}

// Err returns the error the exception decorator handled during this cycle, if any.
func (e *Event) Err() error {
	if e.response == nil || e.response.cycle == nil {
		return nil
	}
	c := e.response.cycle
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// StartedAt returns when handling of the request began.
// Zero for custom events.
func (e *Event) StartedAt() time.Time {
	if e.response == nil || e.response.cycle == nil {
		return time.Time{}
	}
	return e.response.cycle.started
}
