package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/proton/pkg/logger"
)

// runtimeConfig is the resolved input of runServer.
type runtimeConfig struct {
	handler         http.Handler
	baseCtx         context.Context
	logger          *slog.Logger
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// runServer serves handler until SIGINT, SIGTERM or cancellation of the base
// context, then drains connections and runs the shutdown hooks.
func runServer(cfg runtimeConfig) error {
	cfg = cfg.withDefaults()
	log := cfg.logger

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return err
	}
	if err := runHooks(ctx, cfg.startupHooks, log.With("phase", "startup"), true); err != nil {
		_ = ln.Close()
		return err
	}

	srv := newHTTPServer(cfg)
	served := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("address", ln.Addr().String()))
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		served <- err
	}()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	log.Info("stopping")
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	// hooks run after the drain so they never race in-flight requests
	err = errors.Join(srv.Shutdown(drainCtx), runHooks(drainCtx, cfg.shutdownHooks, log.With("phase", "shutdown"), false))
	if err != nil {
		log.Error("stopped with errors", slog.Any("error", err))
		return err
	}
	log.Info("stopped")
	return nil
}

func (cfg runtimeConfig) withDefaults() runtimeConfig {
	if cfg.address == "" {
		cfg.address = defaultAddress
	}
	if cfg.shutdownTimeout <= 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}
	if cfg.baseCtx == nil {
		cfg.baseCtx = context.Background()
	}
	return cfg
}

func newHTTPServer(cfg runtimeConfig) *http.Server {
	return &http.Server{
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(cfg.logger.Handler(), slog.LevelError),
	}
}

// runHooks runs hooks in order. With failFast it returns the first error,
// otherwise every hook runs and the errors are joined.
func runHooks(ctx context.Context, hooks []func(context.Context) error, log *slog.Logger, failFast bool) error {
	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			log.Error("hook failed", slog.Any("error", err))
			if failFast {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
