package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests that matched no route, keeping label cardinality bounded.
const unmatchedRoute = "unmatched"

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(namespace string) *httpMetrics {
	return &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time from request received to response sent.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *httpMetrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// observe is subscribed to response.after.
func (m *httpMetrics) observe(e *Event) error {
	r, res := e.Request(), e.Response()
	if r == nil || res == nil {
		return nil
	}
	route := unmatchedRoute
	if rt := e.Route(); rt != nil {
		route = rt.Pattern
	}
	m.requests.WithLabelValues(r.Method, route, strconv.Itoa(res.Status())).Inc()
	if started := e.StartedAt(); !started.IsZero() {
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(started).Seconds())
	}
	return nil
}

// MetricsHandler exposes the metrics gathered by g in the Prometheus text format.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	app := proton.New(proton.WithMetrics(reg))
//	app.GET("/metrics", proton.MetricsHandler(reg))
func MetricsHandler(g prometheus.Gatherer) HandlerFunc {
	return HandlerFromHTTP(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

var _ http.Handler = (*App)(nil)
