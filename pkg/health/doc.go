// Package health runs named readiness checks and exposes liveness and
// readiness probes as plain http.HandlerFunc values.
//
// [Run] executes [Checks] in parallel under a shared timeout and returns an
// aggregated [Response]. [LivenessHandler] always answers OK;
// [ReadinessHandler] answers 503 when any check fails.
//
//	checks := health.Checks{
//	    "config": func(ctx context.Context) error { return nil },
//	}
//	mux.Get("/health/ready", health.ReadinessHandler(checks, health.WithTimeout(3*time.Second)))
//
// Handlers respond with plain text ("OK" / "Service Unavailable") unless the
// client asks for JSON with ?format=json or an Accept: application/json header:
//
//	{"status":"unhealthy","checks":{"db":{"status":"unhealthy","error":"connection refused"}}}
package health
