package internal

import (
	"github.com/dmitrymomot/proton/pkg/health"
)

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	opts          []health.Option
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during the readiness probe.
//
// Example:
//
//	proton.WithReadinessCheck("db", func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithReadinessOptions passes options to the readiness check runner.
func WithReadinessOptions(opts ...health.Option) HealthOption {
	return func(c *healthConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// registerHealthRoutes exposes the probes as regular routes, so they go
// through the same lifecycle events as any other request.
func (a *App) registerHealthRoutes(cfg *healthConfig) {
	opts := append([]health.Option{health.WithLogger(a.logger)}, cfg.opts...)
	a.router.GET(cfg.livenessPath, HandlerFromHTTP(health.LivenessHandler()))
	a.router.GET(cfg.readinessPath, HandlerFromHTTP(health.ReadinessHandler(cfg.checks, opts...)))
}
