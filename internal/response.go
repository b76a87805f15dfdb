package internal

import (
	"bytes"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// cycle carries per-request metadata shared by every response a single
// Handle call produces, so listeners see it on whichever response is active.
type cycle struct {
	started time.Time
	route   *Route
	err     error
	kept    http.Header
	request *http.Request
	mu      sync.RWMutex
}

func newCycle() *cycle {
	return &cycle{started: time.Now()}
}

// Response is a buffered HTTP response.
// It implements http.ResponseWriter, so standard handlers can write into it.
// Nothing reaches the client until Send is called.
type Response struct {
	header      http.Header
	cycle       *cycle
	body        bytes.Buffer
	status      int
	wroteHeader bool
	sent        bool
	mu          sync.Mutex
}

// NewResponse creates an empty 200 OK response.
func NewResponse() *Response {
	return &Response{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

// Header returns the response headers. Implements http.ResponseWriter.
func (r *Response) Header() http.Header {
	return r.header
}

// SetHeader sets a header value, replacing existing ones.
func (r *Response) SetHeader(key, value string) *Response {
	r.header.Set(key, value)
	return r
}

// KeepHeader sets a header that follows the request cycle: any response
// that replaces this one, including the one built by the exception
// decorator, receives it too.
func (r *Response) KeepHeader(key, value string) *Response {
	r.header.Set(key, value)
	if c := r.cycle; c != nil {
		c.mu.Lock()
		if c.kept == nil {
			c.kept = make(http.Header)
		}
		c.kept.Set(key, value)
		c.mu.Unlock()
	}
	return r
}

// Status returns the response status code.
func (r *Response) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// SetStatus sets the status code unconditionally.
func (r *Response) SetStatus(code int) *Response {
	r.mu.Lock()
	r.status = code
	r.wroteHeader = true
	r.mu.Unlock()
	return r
}

// WriteHeader implements http.ResponseWriter.
// Like net/http, only the first call takes effect.
func (r *Response) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

// Write appends b to the body. Implements http.ResponseWriter.
func (r *Response) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wroteHeader = true
	return r.body.Write(b)
}

// WriteString appends s to the body.
func (r *Response) WriteString(s string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wroteHeader = true
	return r.body.WriteString(s)
}

// SetContent replaces the body.
func (r *Response) SetContent(content string) *Response {
	r.mu.Lock()
	r.body.Reset()
	r.body.WriteString(content)
	r.mu.Unlock()
	return r
}

// Content returns the body as a string.
func (r *Response) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

// Bytes returns a copy of the body.
func (r *Response) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.body.Bytes())
}

// String replaces the body with plain text.
func (r *Response) String(code int, s string) *Response {
	r.header.Set("Content-Type", "text/plain; charset=utf-8")
	return r.SetStatus(code).SetContent(s)
}

// HTML replaces the body with an HTML document.
func (r *Response) HTML(code int, s string) *Response {
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	return r.SetStatus(code).SetContent(s)
}

// JSON replaces the body with v encoded as JSON.
func (r *Response) JSON(code int, v any) (*Response, error) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return r, err
	}
	r.header.Set("Content-Type", "application/json")
	r.SetStatus(code)

	r.mu.Lock()
	r.body.Reset()
	r.body.Write(data)
	r.mu.Unlock()
	return r, nil
}

// NoContent clears the body and sets 204 No Content.
func (r *Response) NoContent() *Response {
	return r.SetStatus(http.StatusNoContent).SetContent("")
}

// Redirect sets the Location header and a redirect status.
// Status codes outside 3xx default to 303 See Other.
func (r *Response) Redirect(code int, url string) *Response {
	if code < 300 || code > 399 {
		code = http.StatusSeeOther
	}
	r.header.Set("Location", url)
	return r.SetStatus(code)
}

// Sent reports whether Send has been called.
func (r *Response) Sent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// Send writes the status, headers and body to w.
// A response is sent at most once; later calls return ErrAlreadySent.
func (r *Response) Send(w http.ResponseWriter) error {
	r.mu.Lock()
	if r.sent {
		r.mu.Unlock()
		return ErrAlreadySent
	}
	r.sent = true
	status := r.status
	body := bytes.Clone(r.body.Bytes())
	r.mu.Unlock()

	dst := w.Header()
	for k, v := range r.header {
		dst[k] = v
	}
	if bodyAllowed(status) {
		dst.Set("Content-Length", strconv.Itoa(len(body)))
	}

	w.WriteHeader(status)
	if !bodyAllowed(status) || len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// Route returns the route matched during the cycle that produced the response.
func (r *Response) Route() *Route {
	if r.cycle == nil {
		return nil
	}
	r.cycle.mu.RLock()
	defer r.cycle.mu.RUnlock()
	return r.cycle.route
}

// request returns the request the lifecycle ran with, or nil outside a cycle.
func (r *Response) request() *http.Request {
	if r.cycle == nil {
		return nil
	}
	r.cycle.mu.RLock()
	defer r.cycle.mu.RUnlock()
	return r.cycle.request
}

// adopt attaches the cycle metadata to a response returned by a handler
// or an exception decorator.
func (r *Response) adopt(c *cycle) *Response {
	r.cycle = c
	if r.header == nil {
		r.header = make(http.Header)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, values := range c.kept {
		r.header[key] = slices.Clone(values)
	}
	return r
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
