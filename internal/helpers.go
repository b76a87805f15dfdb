package internal

import (
	"net/http"
	"strconv"
)

// Param returns a typed path parameter.
// Returns the zero value if the parameter is missing or cannot be parsed.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](p Params, name string) T {
	v, _ := convertParam[T](p.Get(name))
	return v
}

// Query returns a typed query parameter.
// Returns the zero value if the parameter is missing or cannot be parsed.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string) T {
	v, _ := convertParam[T](r.URL.Query().Get(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string, defaultValue T) T {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
func convertParam[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var zero T
	var out any
	var err error
	switch any(zero).(type) {
	case string:
		out = raw
	case int:
		out, err = strconv.Atoi(raw)
	case int64:
		out, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		out, err = strconv.ParseFloat(raw, 64)
	case bool:
		out, err = strconv.ParseBool(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	return out.(T), true
}
