// Package config provides the keyed registry an application reads its settings
// and shared services from.
//
// A [Store] maps string keys to arbitrary values. Values keep their identity,
// so a pointer stored with Set is the same pointer returned by Get. This makes
// the store usable both as a settings map and as a small service container.
//
// # Basic Usage
//
//	s := config.New()
//	s.Set("debug", true)
//	s.Set("db", pool)
//
//	if s.Bool("debug") {
//	    // ...
//	}
//	pool := config.Value[*pgxpool.Pool](s, "db")
//
// # Loading
//
// Settings can be loaded from YAML files and environment variables. Nested keys
// are flattened with a dot:
//
//	s := config.New(config.WithDefaults(map[string]any{
//	    "server.address": ":8080",
//	}))
//	if err := s.LoadFile("config.yaml"); err != nil {
//	    return err
//	}
//	// PROTON_SERVER__ADDRESS=:9000 -> "server.address"
//	if err := s.LoadEnv("PROTON_"); err != nil {
//	    return err
//	}
//
// Later loads override earlier ones. A missing file is not an error.
//
// # Typed Reads
//
// [Store.String], [Store.Bool], [Store.Int] and [Store.Duration] coerce string
// values, so settings loaded from the environment behave like native values.
package config
