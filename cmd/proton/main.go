// Command proton runs a demo Proton application.
//
// Configuration is read from config.yaml or $PROTON_CONFIG_FILE (optional) and PROTON_* environment
// variables, with .env loaded first when present:
//
//	PROTON_DEBUG=true
//	PROTON_SERVER__ADDRESS=:8080
//	PROTON_SERVER__SHUTDOWN_TIMEOUT=10s
//	PROTON_LOG__LEVEL=debug
//	PROTON_SENTRY__DSN=https://key@sentry.io/1
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/proton"
	"github.com/dmitrymomot/proton/middlewares"
	"github.com/dmitrymomot/proton/pkg/config"
	"github.com/dmitrymomot/proton/pkg/logger"
)

const eventsTopic = "proton.events"

func main() {
	// .env is optional in every environment
	_ = godotenv.Load()

	cfg := config.New(config.WithDefaults(map[string]any{
		"app.name":       "proton",
		"server.address": ":8080",
		"log.level":      "info",
	}))
	configFile := os.Getenv("PROTON_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if err := cfg.LoadFile(configFile); err != nil {
		slog.Error("failed to load config file", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.LoadEnv("PROTON_"); err != nil {
		slog.Error("failed to load environment", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.NewWithSentry(logger.SentryConfig{
		DSN:         cfg.String("sentry.dsn"),
		Environment: cfg.String("app.env", "development"),
		Release:     cfg.String("app.release"),
		Base:        logger.Config{Level: logger.ParseLevel(cfg.String("log.level"))},
		MinLevel:    slog.LevelWarn,
	}, middlewares.RequestIDExtractor()).With("component", cfg.String("app.name"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(log))

	app := proton.New(
		proton.WithConfig(cfg),
		proton.WithCustomLogger(log),
		proton.WithAccessLog(),
		proton.WithMiddleware(middlewares.RequestID()),
		proton.WithMetrics(reg),
		proton.WithEventPublisher(pubSub, eventsTopic, proton.EventResponseAfter),
		proton.WithHealthChecks(),
		proton.WithHandlers(newPagesHandler(cfg)),
	)
	app.GET("/metrics", proton.MetricsHandler(reg))

	hooks := []proton.RunOption{
		proton.StartupHook(func(ctx context.Context) error {
			return consumeEvents(ctx, pubSub, log)
		}),
		proton.ShutdownHook(func(context.Context) error { return pubSub.Close() }),
	}
	if cfg.String("sentry.dsn") != "" {
		hooks = append(hooks, proton.ShutdownHook(logger.FlushSentry))
	}

	if err := app.Run("", hooks...); err != nil {
		log.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
