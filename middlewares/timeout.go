package middlewares

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmitrymomot/proton/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that enforces a request timeout.
// The handler receives a request whose context carries the deadline.
// If it does not return in time, a TimeoutError is returned and handed
// to the exception decorator.
//
// The handler goroutine keeps running after the timeout. Long-running
// operations should watch r.Context().Done() and stop early.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	type result struct {
		res *internal.Response
		err error
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(r *http.Request, res *internal.Response, p internal.Params) (*internal.Response, error) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan result, 1)
			go func() {
				// Panics in this goroutine would bypass the App's recovery.
				defer func() {
					if v := recover(); v != nil {
						done <- result{err: &internal.PanicError{Value: v, Stack: debug.Stack()}}
					}
				}()
				out, err := next(r.WithContext(ctx), res, p)
				done <- result{res: out, err: err}
			}()

			select {
			case out := <-done:
				return out.res, out.err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return nil, &TimeoutError{Duration: timeout}
				}
				return nil, ctx.Err()
			}
		}
	}
}
