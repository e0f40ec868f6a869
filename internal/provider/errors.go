package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is returned when a value exists but cannot be read as the requested type.
	ErrTypeMismatch = errors.New("configuration type mismatch")
	// ErrMissingRequiredKey is returned when a required key has no value in any source.
	ErrMissingRequiredKey = errors.New("configuration key is required")
)

// TypeMismatchError describes a value that was found under Key but is not of the Expected kind.
type TypeMismatchError struct {
	Key      string
	Expected string
	Actual   string
	Value    any
}

func (e *TypeMismatchError) Error() string {
	if e.Expected == KindNumber {
		return fmt.Sprintf("configuration: config %q should be a number, got %s (%v) instead", e.Key, e.Actual, e.Value)
	}
	return fmt.Sprintf("configuration: config %q should be a %s, got %s instead", e.Key, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// MissingKeyError reports a required lookup that found nothing.
type MissingKeyError struct {
	Key  string
	Kind string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("configuration: %s %s is required", e.Kind, e.Key)
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingRequiredKey }

func typeMismatch(key, expected string, value any) error {
	return &TypeMismatchError{
		Key:      key,
		Expected: expected,
		Actual:   kindOf(value),
		Value:    value,
	}
}

func missingKey(key, kind string) error {
	return &MissingKeyError{Key: key, Kind: kind}
}
