// Package envstore models the process environment as an injected key-value
// store. Code that reads or mutates the environment takes a Store so tests
// can use a MemoryStore instead of touching the real process state.
//
// Lifecycle: a store is read freely, mutated once by the .env loader, and
// read again afterwards. Stores make no atomicity promise across several Set
// calls; callers serialise loading themselves.
package envstore

import (
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
)

// ErrEmptyKey is returned when Set is called with an empty key.
var ErrEmptyKey = errors.New("environment key must not be empty")

// Store provides access to environment variables.
type Store interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	Keys() []string
}

// MemoryStore keeps variables in-memory and guards access with a RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore initialises a store with a copy of initial.
func NewMemoryStore(initial map[string]string) *MemoryStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

// Lookup returns the value stored under key.
func (s *MemoryStore) Lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *MemoryStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the stored variables.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// OSStore reads and writes the real process environment.
type OSStore struct{}

// NewOSStore returns a Store backed by the process environment.
func NewOSStore() OSStore {
	return OSStore{}
}

// Lookup wraps os.LookupEnv.
func (OSStore) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Set wraps os.Setenv.
func (OSStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return os.Setenv(key, value)
}

// Keys lists the names of all process environment variables in sorted order.
func (OSStore) Keys() []string {
	environ := os.Environ()
	keys := make([]string, 0, len(environ))
	for _, kv := range environ {
		// Windows keeps per-drive entries such as "=C:=C:\\".
		if i := strings.Index(kv, "="); i > 0 {
			keys = append(keys, kv[:i])
		}
	}
	sort.Strings(keys)
	return keys
}
