package proton_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrymomot/proton"
)

// testHandler is a simple handler for testing.
type testHandler struct {
	message string
}

func (h *testHandler) Routes(r *proton.Router) {
	r.GET("/", h.index)
	r.GET("/json", h.jsonResponse)
	r.GET("/user/{id}", h.getUser)
	r.POST("/echo", h.echo)
	r.Group("/api", func(r *proton.Router) {
		r.GET("/health", h.health)
	})
}

func (h *testHandler) index(_ *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
	return res.String(http.StatusOK, h.message), nil
}

func (h *testHandler) jsonResponse(_ *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
	return res.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *testHandler) getUser(_ *http.Request, res *proton.Response, p proton.Params) (*proton.Response, error) {
	if proton.Param[int](p, "id") == 0 {
		return nil, proton.ErrBadRequest("invalid user id")
	}
	return res.JSON(http.StatusOK, map[string]string{"id": p.Get("id")})
}

func (h *testHandler) echo(r *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return res.String(http.StatusOK, string(body)), nil
}

func (h *testHandler) health(_ *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
	return res.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// testMiddleware adds a header to all responses.
func testMiddleware(headerName, headerValue string) proton.Middleware {
	return func(next proton.HandlerFunc) proton.HandlerFunc {
		return func(r *http.Request, res *proton.Response, p proton.Params) (*proton.Response, error) {
			res.SetHeader(headerName, headerValue)
			return next(r, res, p)
		}
	}
}

func newTestServer(t *testing.T, opts ...proton.Option) *httptest.Server {
	t.Helper()
	opts = append([]proton.Option{
		proton.WithHandlers(&testHandler{message: "hello"}),
		proton.WithMiddleware(testMiddleware("X-Test", "value")),
	}, opts...)
	srv := httptest.NewServer(proton.New(opts...))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	app := proton.New()
	if app == nil {
		t.Fatal("New() returned nil")
	}
	if len(app.Router().Routes()) != 0 {
		t.Error("new app should have no routes")
	}
}

func TestServer(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "index", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "hello"},
		{name: "json", method: http.MethodGet, path: "/json", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "params", method: http.MethodGet, path: "/user/42", wantStatus: http.StatusOK, wantBody: `{"id":"42"}`},
		{name: "http error", method: http.MethodGet, path: "/user/abc", wantStatus: http.StatusBadRequest, wantBody: `{"error":{"message":"invalid user id"}}`},
		{name: "echo", method: http.MethodPost, path: "/echo", body: "ping", wantStatus: http.StatusOK, wantBody: "ping"},
		{name: "group", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantBody: `{"status":"healthy"}`},
		{name: "not found", method: http.MethodGet, path: "/missing", wantStatus: http.StatusNotFound, wantBody: `{"error":{"message":"Not Found"}}`},
		{name: "method not allowed", method: http.MethodDelete, path: "/echo", wantStatus: http.StatusMethodNotAllowed, wantBody: `{"error":{"message":"Method Not Allowed"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequestWithContext(context.Background(), tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestMiddlewareHeader(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Test"); got != "value" {
		t.Errorf("X-Test = %q, want %q", got, "value")
	}
}

func TestDebugErrors(t *testing.T) {
	app := proton.New(proton.WithDebug(true))
	app.GET("/boom", func(*http.Request, *proton.Response, proton.Params) (*proton.Response, error) {
		return nil, errors.New("disk full")
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	var body struct {
		Error struct {
			Message string   `json:"message"`
			Trace   []string `json:"trace"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if body.Error.Message != "disk full" {
		t.Errorf("message = %q, want %q", body.Error.Message, "disk full")
	}
	if len(body.Error.Trace) == 0 {
		t.Error("trace should be present in debug mode")
	}
}

func TestConfigValue(t *testing.T) {
	type mailer struct{ from string }

	app := proton.New(proton.WithSettings(map[string]any{"mailer": &mailer{from: "noreply@example.com"}}))
	if got := proton.ConfigValue[*mailer](app, "mailer"); got == nil || got.from != "noreply@example.com" {
		t.Errorf("ConfigValue returned %+v", got)
	}
	if got := proton.ConfigValue[string](app, "missing"); got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
}
