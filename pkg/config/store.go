package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// delimiter separates nested key segments.
const delimiter = "."

// Store is a keyed registry of settings and services.
// It is safe for concurrent use; writes are expected during application setup.
type Store struct {
	entries map[string]any
	mu      sync.RWMutex
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{entries: make(map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Get returns the value stored under key.
// If the key is missing, the first default is returned, or nil without one.
func (s *Store) Get(key string, def ...any) any {
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.entries))
}

// All returns a shallow copy of every entry.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

// String returns the value under key as a string.
// Non-string values are formatted with fmt. Missing keys yield def or "".
func (s *Store) String(key string, def ...string) string {
	v, ok := s.lookup(key)
	if !ok {
		return first(def)
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Bool returns the value under key as a bool.
// Strings are parsed with strconv.ParseBool and numbers are true when non-zero.
// Missing or unparsable values yield false.
func (s *Store) Bool(key string) bool {
	v, ok := s.lookup(key)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return false
}

// Int returns the value under key as an int.
// Missing or unparsable values yield def or 0.
func (s *Store) Int(key string, def ...int) int {
	v, ok := s.lookup(key)
	if !ok {
		return first(def)
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return first(def)
}

// Duration returns the value under key as a time.Duration.
// Strings are parsed with time.ParseDuration; plain numbers are seconds.
// Missing or unparsable values yield def or 0.
func (s *Store) Duration(key string, def ...time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return first(def)
	}
	switch t := v.(type) {
	case time.Duration:
		return t
	case int:
		return time.Duration(t) * time.Second
	case int64:
		return time.Duration(t) * time.Second
	case float64:
		return time.Duration(t * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(t)); err == nil {
			return d
		}
	}
	return first(def)
}

// Load reads a koanf provider and merges its flattened keys into the store.
// Loaded keys override existing ones.
func (s *Store) Load(p koanf.Provider, pa koanf.Parser) error {
	k := koanf.New(delimiter)
	if err := k.Load(p, pa); err != nil {
		return errors.Join(ErrLoad, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.entries, k.All())
	return nil
}

// LoadFile merges a YAML file into the store.
// A missing file is silently skipped.
func (s *Store) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Join(ErrLoad, err)
	}
	return s.Load(file.Provider(path), yaml.Parser())
}

// LoadEnv merges environment variables that start with prefix.
// The prefix is stripped, the rest is lowercased and "__" becomes a key
// separator: PROTON_SERVER__ADDRESS is stored as "server.address".
func (s *Store) LoadEnv(prefix string) error {
	return s.Load(env.Provider(prefix, delimiter, func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		return strings.ReplaceAll(key, "__", delimiter)
	}), nil)
}

// Value returns the value under key asserted to T.
// Returns the zero value of T if the key is missing or holds another type.
func Value[T any](s *Store, key string) T {
	if v, ok := s.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

func first[T any](vals []T) T {
	if len(vals) > 0 {
		return vals[0]
	}
	var zero T
	return zero
}

// flatten collapses nested maps into dot-separated keys.
func flatten(in map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + delimiter + k
		}
		if nested, ok := v.(map[string]any); ok {
			maps.Copy(out, flatten(nested, key))
			continue
		}
		out[key] = v
	}
	return out
}
