package config

// Option configures a Store.
type Option func(*Store)

// WithDefaults seeds the store with default values.
// Nested maps are flattened with a dot, so {"server": {"address": ":8080"}}
// is stored under "server.address".
func WithDefaults(values map[string]any) Option {
	return func(s *Store) {
		for k, v := range flatten(values, "") {
			s.entries[k] = v
		}
	}
}
