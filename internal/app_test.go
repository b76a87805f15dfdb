package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/proton/internal"
)

type errorPayload struct {
	Error struct {
		Message string   `json:"message"`
		Code    string   `json:"code"`
		Trace   []string `json:"trace"`
	} `json:"error"`
}

func decodeError(t *testing.T, res *internal.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.Unmarshal(res.Bytes(), &body))
	return body
}

// recorder collects event names in emission order.
type recorder struct {
	names []string
	mu    sync.Mutex
}

func (r *recorder) listen(e *internal.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, e.Name())
	return nil
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func TestApp_Handle_NoRoutes(t *testing.T) {
	t.Parallel()

	app := internal.New()
	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.Status())
	require.Equal(t, "Not Found", decodeError(t, res).Error.Message)
}

func TestApp_Handle_ItWorks(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET("/", func(_ *http.Request, res *internal.Response, _ internal.Params) (*internal.Response, error) {
		return res.HTML(http.StatusOK, "<h1>It works!</h1>"), nil
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status())
	require.Equal(t, "<h1>It works!</h1>", res.Content())
}

func TestApp_Handle_Verbs(t *testing.T) {
	t.Parallel()

	app := internal.New()
	register := map[string]func(string, internal.HandlerFunc, ...internal.Middleware) *internal.Route{
		http.MethodGet:     app.GET,
		http.MethodPost:    app.POST,
		http.MethodPut:     app.PUT,
		http.MethodPatch:   app.PATCH,
		http.MethodDelete:  app.DELETE,
		http.MethodHead:    app.HEAD,
		http.MethodOptions: app.OPTIONS,
	}
	for method, fn := range register {
		fn("/resource", ok(method))
	}

	for method := range register {
		t.Run(method, func(t *testing.T) {
			t.Parallel()
			res, err := app.Handle(httptest.NewRequest(method, "/resource", nil))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, res.Status())
			require.Equal(t, method, res.Content())
		})
	}
}

func TestApp_Handle_HandlerError(t *testing.T) {
	t.Parallel()

	failing := func(_ *http.Request, _ *internal.Response, _ internal.Params) (*internal.Response, error) {
		return nil, errors.New("database exploded")
	}

	t.Run("message hidden without debug", func(t *testing.T) {
		t.Parallel()
		app := internal.New()
		app.GET("/", failing)

		res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, res.Status())
		body := decodeError(t, res)
		require.Equal(t, "Internal Server Error", body.Error.Message)
		require.Empty(t, body.Error.Trace)
	})

	t.Run("message and trace with debug", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithDebug(true))
		app.GET("/", failing)

		res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, res.Status())
		body := decodeError(t, res)
		require.Equal(t, "database exploded", body.Error.Message)
		require.NotEmpty(t, body.Error.Trace)
	})

	t.Run("http error keeps status and code", func(t *testing.T) {
		t.Parallel()
		app := internal.New()
		app.GET("/", func(_ *http.Request, _ *internal.Response, _ internal.Params) (*internal.Response, error) {
			return nil, internal.ErrForbidden("no access", internal.WithErrorCode("AUTH_001"))
		})

		res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusForbidden, res.Status())
		body := decodeError(t, res)
		require.Equal(t, "no access", body.Error.Message)
		require.Equal(t, "AUTH_001", body.Error.Code)
	})
}

func TestApp_Handle_ListenerError(t *testing.T) {
	t.Parallel()

	var handled bool
	app := internal.New()
	app.GET("/", func(_ *http.Request, res *internal.Response, _ internal.Params) (*internal.Response, error) {
		handled = true
		return res, nil
	})
	app.Subscribe(internal.EventRequestReceived, func(*internal.Event) error {
		return errors.New("listener failed")
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, res.Status())
	require.False(t, handled, "routing is skipped once request.received fails")
}

func TestApp_Handle_ResponseBeforeOnErrorPath(t *testing.T) {
	t.Parallel()

	var (
		seen    []int
		lastErr error
	)
	app := internal.New()
	app.Subscribe(internal.EventResponseBefore, func(e *internal.Event) error {
		seen = append(seen, e.Response().Status())
		lastErr = e.Err()
		return nil
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.Status())
	require.Equal(t, []int{http.StatusNotFound}, seen)
	require.True(t, internal.IsHTTPError(lastErr))
}

func TestApp_Handle_ResponseBeforeFailsOnce(t *testing.T) {
	t.Parallel()

	var calls int
	app := internal.New()
	app.GET("/", ok("fine"))
	app.Subscribe(internal.EventResponseBefore, func(*internal.Event) error {
		calls++
		return errors.New("cannot finalize")
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, res.Status())
	require.Equal(t, 1, calls)
}

func TestApp_Handle_ResponseBeforePanicsOnce(t *testing.T) {
	t.Parallel()

	var first, second int
	app := internal.New()
	app.GET("/", ok("fine"))
	app.Subscribe(internal.EventResponseBefore, func(*internal.Event) error {
		first++
		return nil
	})
	app.Subscribe(internal.EventResponseBefore, func(*internal.Event) error {
		second++
		panic("finalizer exploded")
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, res.Status())
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)
}

func TestApp_ServeHTTP_SameRequestAcrossEvents(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []*http.Request
	)
	app := internal.New()
	app.GET("/", ok("fine"))
	app.Subscribe("*", func(e *internal.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Request())
		return nil
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, seen, 4)
	for _, r := range seen[1:] {
		require.Same(t, seen[0], r)
	}
}

func TestApp_Handle_SharedResponse(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.Subscribe(internal.EventRequestReceived, func(e *internal.Event) error {
		e.Response().SetHeader("X-Early", "set-by-listener")
		return nil
	})
	app.GET("/", func(_ *http.Request, res *internal.Response, _ internal.Params) (*internal.Response, error) {
		return res.String(http.StatusOK, res.Header().Get("X-Early")), nil
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, "set-by-listener", res.Content())
}

func TestApp_Handle_Panic(t *testing.T) {
	t.Parallel()

	var caught error
	app := internal.New()
	app.GET("/", func(*http.Request, *internal.Response, internal.Params) (*internal.Response, error) {
		panic("kaboom")
	})
	app.Subscribe(internal.EventResponseBefore, func(e *internal.Event) error {
		caught = e.Err()
		return nil
	})

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, res.Status())
	require.True(t, internal.IsPanicError(caught))
}

func TestApp_Handle_CustomDecorator(t *testing.T) {
	t.Parallel()

	custom := internal.NewResponse().HTML(http.StatusTeapot, "<p>custom</p>")
	app := internal.New(internal.WithExceptionDecorator(func(error) *internal.Response {
		return custom
	}))

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	require.Same(t, custom, res)
	require.Equal(t, http.StatusTeapot, res.Status())

	app.SetExceptionDecorator(nil)
	res, err = app.Handle(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.Status())
}

func TestApp_Handle_ContractViolation(t *testing.T) {
	t.Parallel()

	t.Run("decorator returns nil", func(t *testing.T) {
		t.Parallel()
		app := internal.New()
		app.SetExceptionDecorator(func(error) *internal.Response { return nil })

		res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, internal.ErrContractViolation)
		require.True(t, internal.IsHTTPError(err), "the original error stays in the chain")
		require.Nil(t, res)
	})

	t.Run("handler returns nil response", func(t *testing.T) {
		t.Parallel()
		app := internal.New()
		app.GET("/", func(*http.Request, *internal.Response, internal.Params) (*internal.Response, error) {
			return nil, nil
		})

		res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, internal.ErrContractViolation)
		require.Nil(t, res)
	})

	t.Run("ServeHTTP panics", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithExceptionDecorator(func(error) *internal.Response { return nil }))
		require.Panics(t, func() {
			app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET("/", ok("home"))

	res, err := app.Dispatch(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, "home", res.Content())

	res, err = app.Dispatch(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Nil(t, res)
	he := internal.AsHTTPError(err)
	require.NotNil(t, he)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestApp_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET("/users", ok("list"))
	app.POST("/users", ok("create"))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestApp_ServeHTTP_EventOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	app := internal.New()
	app.Subscribe("*", rec.listen)
	app.GET("/hello/{name}", func(_ *http.Request, res *internal.Response, p internal.Params) (*internal.Response, error) {
		return res.String(http.StatusOK, "hello "+p.Get("name")), nil
	})
	app.Subscribe(internal.EventResponseBeforeSend, func(e *internal.Event) error {
		e.Response().SetHeader("X-Sent-By", "proton")
		return nil
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello/world", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hello world", w.Body.String())
	require.Equal(t, "proton", w.Header().Get("X-Sent-By"))
	require.Equal(t, []string{
		internal.EventRequestReceived,
		internal.EventResponseBefore,
		internal.EventResponseBeforeSend,
		internal.EventResponseAfter,
	}, rec.events())
}

func TestApp_Terminate(t *testing.T) {
	t.Parallel()

	var (
		got   *internal.Response
		route *internal.Route
	)
	app := internal.New()
	app.GET("/items/{id}", ok("item"))
	app.Subscribe(internal.EventResponseAfter, func(e *internal.Event) error {
		got = e.Response()
		route = e.Route()
		require.False(t, e.StartedAt().IsZero())
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	res, err := app.Handle(req)
	require.NoError(t, err)
	require.Nil(t, got, "response.after only fires from Terminate")

	require.NoError(t, app.Terminate(req, res))
	require.Same(t, res, got)
	require.Equal(t, "/items/{id}", route.Pattern)

	failing := internal.New()
	failing.Subscribe(internal.EventResponseAfter, func(*internal.Event) error { return errors.New("flush failed") })
	require.Error(t, failing.Terminate(req, internal.NewResponse()))
}

func TestApp_Emit(t *testing.T) {
	t.Parallel()

	app := internal.New()
	var args []any
	app.Subscribe("user.created", func(e *internal.Event) error {
		args = e.Args()
		return nil
	})

	e, err := app.Emit("user.created", "alice", 42)
	require.NoError(t, err)
	require.Equal(t, "user.created", e.Name())
	require.Equal(t, []any{"alice", 42}, args)
	require.Equal(t, "alice", e.Arg(0))
	require.Nil(t, e.Arg(5))
	require.Nil(t, e.Request())
	require.Nil(t, e.Route())
	require.True(t, e.StartedAt().IsZero())

	app.Subscribe("user.created", func(*internal.Event) error { return errors.New("mailer down") })
	_, err = app.Emit("user.created", "bob")
	require.ErrorContains(t, err, "mailer down")
}

func TestApp_SubscribeOnce(t *testing.T) {
	t.Parallel()

	var calls int
	app := internal.New()
	app.GET("/", ok("home"))
	app.SubscribeOnce(internal.EventRequestReceived, func(*internal.Event) error {
		calls++
		return nil
	})

	for range 3 {
		_, err := app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls)
}

func TestApp_SubscribeValidation(t *testing.T) {
	t.Parallel()

	app := internal.New()
	require.Panics(t, func() { app.Subscribe("", func(*internal.Event) error { return nil }) })
	require.Panics(t, func() { app.Subscribe("x", nil) })
}

func TestApp_Config(t *testing.T) {
	t.Parallel()

	type mailer struct{}
	svc := &mailer{}

	app := internal.New(internal.WithSettings(map[string]any{"app.name": "demo"}))
	app.Set("mailer", svc)

	require.Equal(t, "demo", app.Get("app.name"))
	require.Same(t, svc, app.Get("mailer"))
	require.Equal(t, "fallback", app.Get("missing", "fallback"))
	require.True(t, app.Has("mailer"))

	app.Remove("mailer")
	require.False(t, app.Has("mailer"))
	require.False(t, app.Debug())

	app.Set(internal.KeyDebug, true)
	require.True(t, app.Debug())
}

type pagesHandler struct{}

func (pagesHandler) Routes(r *internal.Router) {
	r.GET("/about", ok("about"))
}

func TestApp_WithHandlers(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(pagesHandler{}))
	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/about", nil))
	require.NoError(t, err)
	require.Equal(t, "about", res.Content())
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealthChecks(
		internal.WithReadinessCheck("db", func(ctx context.Context) error { return errors.New("down") }),
	))

	live, err := app.Handle(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, live.Status())
	require.Equal(t, "OK", live.Content())

	ready, err := app.Handle(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, ready.Status())
}
