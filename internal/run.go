package internal

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// defaultAddress is used when neither Run nor the configuration names one.
const defaultAddress = ":8080"

// Run starts an HTTP server serving the application and blocks until
// SIGINT, SIGTERM or cancellation of the base context.
// An empty addr falls back to the "server.address" setting, then ":8080".
//
// Example:
//
//	app := proton.New(proton.WithHandlers(handlers.NewPages()))
//	err := app.Run(":8080", proton.ShutdownTimeout(10*time.Second))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	address := cfg.address
	if address == "" {
		address = addr
	}
	if address == "" {
		address = a.config.String(KeyServerAddress, defaultAddress)
	}

	shutdownTimeout := cfg.shutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = a.config.Duration(KeyShutdownTimeout, defaultShutdownTimeout)
	}

	log := cfg.logger
	if log == nil {
		log = a.logger
	}

	var handler http.Handler = a
	if a.tracing {
		handler = otelhttp.NewHandler(a, "proton", otelhttp.WithTracerProvider(a.tracerProvider))
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         address,
		logger:          log,
		shutdownTimeout: shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
