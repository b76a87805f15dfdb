package internal_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/proton/internal"
)

func TestResponse_Defaults(t *testing.T) {
	t.Parallel()

	res := internal.NewResponse()
	require.Equal(t, http.StatusOK, res.Status())
	require.Empty(t, res.Content())
	require.False(t, res.Sent())
	require.Nil(t, res.Route())
}

func TestResponse_ResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("first WriteHeader wins", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse()
		res.WriteHeader(http.StatusCreated)
		res.WriteHeader(http.StatusAccepted)
		require.Equal(t, http.StatusCreated, res.Status())
	})

	t.Run("write appends", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse()
		_, _ = res.Write([]byte("hello "))
		_, _ = res.WriteString("world")
		require.Equal(t, "hello world", res.Content())
	})

	t.Run("SetStatus overrides", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse()
		res.WriteHeader(http.StatusCreated)
		res.SetStatus(http.StatusTeapot)
		require.Equal(t, http.StatusTeapot, res.Status())
	})
}

func TestResponse_Helpers(t *testing.T) {
	t.Parallel()

	t.Run("html", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse().HTML(http.StatusOK, "<h1>It works!</h1>")
		require.Equal(t, "<h1>It works!</h1>", res.Content())
		require.Equal(t, "text/html; charset=utf-8", res.Header().Get("Content-Type"))
	})

	t.Run("string replaces body", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse()
		_, _ = res.WriteString("old")
		res.String(http.StatusAccepted, "new")
		require.Equal(t, "new", res.Content())
		require.Equal(t, http.StatusAccepted, res.Status())
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		res, err := internal.NewResponse().JSON(http.StatusCreated, map[string]any{"id": 7})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, res.Status())
		require.Equal(t, "application/json", res.Header().Get("Content-Type"))

		var body map[string]int
		require.NoError(t, json.Unmarshal(res.Bytes(), &body))
		require.Equal(t, 7, body["id"])
	})

	t.Run("json encode failure", func(t *testing.T) {
		t.Parallel()
		_, err := internal.NewResponse().JSON(http.StatusOK, make(chan int))
		require.Error(t, err)
	})

	t.Run("redirect", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse().Redirect(http.StatusFound, "/login")
		require.Equal(t, http.StatusFound, res.Status())
		require.Equal(t, "/login", res.Header().Get("Location"))

		res = internal.NewResponse().Redirect(http.StatusOK, "/home")
		require.Equal(t, http.StatusSeeOther, res.Status())
	})
}

func TestResponse_Send(t *testing.T) {
	t.Parallel()

	t.Run("writes status headers and body once", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse().String(http.StatusCreated, "done")
		res.SetHeader("X-Custom", "yes")

		rec := httptest.NewRecorder()
		require.NoError(t, res.Send(rec))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "done", rec.Body.String())
		require.Equal(t, "yes", rec.Header().Get("X-Custom"))
		require.Equal(t, "4", rec.Header().Get("Content-Length"))
		require.True(t, res.Sent())

		require.ErrorIs(t, res.Send(httptest.NewRecorder()), internal.ErrAlreadySent)
	})

	t.Run("no body for 204", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse().NoContent()
		rec := httptest.NewRecorder()
		require.NoError(t, res.Send(rec))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
		require.Empty(t, rec.Header().Get("Content-Length"))
	})
}

func TestHandlerFromHTTP(t *testing.T) {
	t.Parallel()

	h := internal.HandlerFromHTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Legacy", "1")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("legacy"))
	}))

	res, err := h(httptest.NewRequest(http.MethodGet, "/", nil), internal.NewResponse(), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, res.Status())
	require.Equal(t, "legacy", res.Content())
	require.Equal(t, "1", res.Header().Get("X-Legacy"))
}
