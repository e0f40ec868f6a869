package provider

import (
	"context"
	"fmt"
)

// Value kinds reported in errors.
const (
	KindString = "string"
	KindNumber = "number"
)

// Provider is the lookup capability shared by every configuration source.
//
// Getters report whether a value was found; a false flag with a nil error
// means the key has no value. Require variants turn a missing value into a
// MissingKeyError.
type Provider interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	GetNumber(ctx context.Context, key string) (float64, bool, error)
	RequireString(ctx context.Context, key string) (string, error)
	RequireNumber(ctx context.Context, key string) (float64, error)
}

// Source is a read-only view over a string-keyed mapping.
type Source interface {
	Lookup(key string) (any, bool)
}

// Mapping is a Source over arbitrary values, such as decoded YAML.
type Mapping map[string]any

// Lookup implements Source.
func (m Mapping) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// StringMapping is a Source over string values.
type StringMapping map[string]string

// Lookup implements Source.
func (m StringMapping) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// StringLookup is implemented by live string stores such as the process environment.
type StringLookup interface {
	Lookup(key string) (string, bool)
}

type stringSource struct {
	store StringLookup
}

// Strings adapts a StringLookup into a Source. The store is observed on
// every lookup, not copied.
func Strings(store StringLookup) Source {
	return stringSource{store: store}
}

func (s stringSource) Lookup(key string) (any, bool) {
	if s.store == nil {
		return nil, false
	}
	v, ok := s.store.Lookup(key)
	if !ok {
		return nil, false
	}
	return v, true
}

// LookupOr returns the value of key in src, or the result of fallback when
// src has no usable value. A nil value counts as absent.
func LookupOr(src Source, key string, fallback func() (any, bool)) (any, bool) {
	if src != nil {
		if v, ok := src.Lookup(key); ok && v != nil {
			return v, true
		}
	}
	if fallback == nil {
		return nil, false
	}
	return fallback()
}

// NewConfig builds a provider over values, falling back to defaults when
// they are given.
func NewConfig(values Source, defaults Source) Provider {
	config := NewRecord(values, nil)
	if defaults == nil {
		return config
	}
	return NewComposite(config, NewRecord(defaults, nil))
}

func kindOf(v any) string {
	switch v.(type) {
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
