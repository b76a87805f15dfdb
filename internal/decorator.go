package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Trace   []string `json:"trace,omitempty"`
}

// defaultDecorator renders errors as {"error":{"message":...}}.
// The status comes from a StatusCode method anywhere in the chain, else 500.
// Messages of errors that are not HTTPErrors stay hidden unless debug is on.
func (a *App) defaultDecorator(err error) *Response {
	debug := a.Debug()
	status := http.StatusInternalServerError
	detail := errorDetail{Message: http.StatusText(status)}

	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) && sc.StatusCode() >= 400 {
		status = sc.StatusCode()
		detail.Message = http.StatusText(status)
	}

	res := NewResponse()
	if he := AsHTTPError(err); he != nil {
		detail.Message = he.Error()
		detail.Code = he.ErrorCode
		for k, v := range he.Header {
			res.Header()[k] = v
		}
	} else if debug {
		detail.Message = err.Error()
	}
	if debug {
		detail.Trace = errorTrace(err)
	}

	if _, encErr := res.JSON(status, errorBody{Error: detail}); encErr != nil {
		res.String(status, detail.Message)
	}
	return res
}

// errorTrace lists the error chain, or the goroutine stack for panics.
func errorTrace(err error) []string {
	if pe, ok := AsPanicError(err); ok {
		return strings.Split(strings.TrimSpace(string(pe.Stack)), "\n")
	}
	var lines []string
	for err != nil {
		lines = append(lines, fmt.Sprintf("%T: %s", err, err))
		err = errors.Unwrap(err)
	}
	return lines
}
