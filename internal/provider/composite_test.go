package provider

import (
	"context"
	"errors"
	"testing"
)

// countingProvider records calls so tests can assert cascade order.
type countingProvider struct {
	Provider
	getCalls     int
	requireCalls int
}

func (c *countingProvider) GetString(ctx context.Context, key string) (string, bool, error) {
	c.getCalls++
	return c.Provider.GetString(ctx, key)
}

func (c *countingProvider) GetNumber(ctx context.Context, key string) (float64, bool, error) {
	c.getCalls++
	return c.Provider.GetNumber(ctx, key)
}

func (c *countingProvider) RequireString(ctx context.Context, key string) (string, error) {
	c.requireCalls++
	return c.Provider.RequireString(ctx, key)
}

func (c *countingProvider) RequireNumber(ctx context.Context, key string) (float64, error) {
	c.requireCalls++
	return c.Provider.RequireNumber(ctx, key)
}

func TestCompositeFallsThroughToLaterProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	composite := NewComposite(
		NewRecord(StringMapping{}, nil),
		NewRecord(StringMapping{"x": "1"}, nil),
	)

	got, ok, err := composite.GetString(ctx, "x")
	if err != nil || !ok || got != "1" {
		t.Fatalf("expected 1, got %q ok=%v err=%v", got, ok, err)
	}

	n, ok, err := composite.GetNumber(ctx, "x")
	if err != nil || !ok || n != 1 {
		t.Fatalf("expected 1, got %v ok=%v err=%v", n, ok, err)
	}
}

func TestCompositeFirstProviderWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	second := &countingProvider{Provider: NewRecord(StringMapping{"x": "2"}, nil)}
	composite := NewComposite(NewRecord(StringMapping{"x": "1"}, nil), second)

	got, err := composite.RequireString(ctx, "x")
	if err != nil || got != "1" {
		t.Fatalf("expected 1, got %q err=%v", got, err)
	}
	if second.getCalls != 0 {
		t.Fatalf("expected cascade to stop at the first provider, second was called %d times", second.getCalls)
	}
}

func TestCompositeAllMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	composite := NewComposite(NewRecord(StringMapping{}, nil), NewRecord(StringMapping{}, nil))

	if _, ok, err := composite.GetString(ctx, "x"); ok || err != nil {
		t.Fatalf("expected no value, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := composite.GetNumber(ctx, "x"); ok || err != nil {
		t.Fatalf("expected no value, got ok=%v err=%v", ok, err)
	}

	var missing *MissingKeyError
	if _, err := composite.RequireString(ctx, "x"); !errors.As(err, &missing) || missing.Kind != KindString {
		t.Fatalf("expected string MissingKeyError, got %v", err)
	}
	if _, err := composite.RequireNumber(ctx, "x"); !errors.As(err, &missing) || missing.Kind != KindNumber {
		t.Fatalf("expected number MissingKeyError, got %v", err)
	}
}

func TestCompositeRequireCascadesOverGetters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := &countingProvider{Provider: NewRecord(StringMapping{}, nil)}
	second := &countingProvider{Provider: NewRecord(StringMapping{"n": "7"}, nil)}
	composite := NewComposite(first, second)

	got, err := composite.RequireNumber(ctx, "n")
	if err != nil || got != 7 {
		t.Fatalf("expected 7, got %v err=%v", got, err)
	}
	if first.requireCalls != 0 || second.requireCalls != 0 {
		t.Fatalf("expected members' Require* never to be called")
	}
	if first.getCalls != 1 || second.getCalls != 1 {
		t.Fatalf("expected one getter call per member, got %d and %d", first.getCalls, second.getCalls)
	}
}

func TestCompositeTypeErrorAbortsCascade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	second := &countingProvider{Provider: NewRecord(StringMapping{"x": "5"}, nil)}
	composite := NewComposite(NewRecord(StringMapping{"x": "xyz"}, nil), second)

	if _, _, err := composite.GetNumber(ctx, "x"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := composite.RequireNumber(ctx, "x"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch from RequireNumber, got %v", err)
	}
	if second.getCalls != 0 {
		t.Fatalf("expected later providers to be skipped after an error")
	}
}

func TestCompositeNested(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := NewComposite(NewRecord(StringMapping{}, nil), NewRecord(StringMapping{"deep": "yes"}, nil))
	outer := NewComposite(NewRecord(StringMapping{}, nil), inner)

	got, err := outer.RequireString(ctx, "deep")
	if err != nil || got != "yes" {
		t.Fatalf("expected yes, got %q err=%v", got, err)
	}
}

func TestCompositeSkipsNilProviders(t *testing.T) {
	t.Parallel()

	composite := NewComposite(nil, NewRecord(StringMapping{"x": "1"}, nil))
	if got, err := composite.RequireString(context.Background(), "x"); err != nil || got != "1" {
		t.Fatalf("expected 1, got %q err=%v", got, err)
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg := NewConfig(StringMapping{"abc": "123"}, StringMapping{"xyz": "asd"})
	if got, err := cfg.RequireString(ctx, "xyz"); err != nil || got != "asd" {
		t.Fatalf("expected asd, got %q err=%v", got, err)
	}
	if got, err := cfg.RequireNumber(ctx, "abc"); err != nil || got != 123 {
		t.Fatalf("expected 123, got %v err=%v", got, err)
	}

	plain := NewConfig(StringMapping{"abc": "1"}, nil)
	if _, ok := plain.(*Record); !ok {
		t.Fatalf("expected a plain Record without defaults, got %T", plain)
	}
}

func TestLookupOr(t *testing.T) {
	t.Parallel()

	src := StringMapping{"a": "1"}
	if v, ok := LookupOr(src, "a", nil); !ok || v != "1" {
		t.Fatalf("expected 1, got %v ok=%v", v, ok)
	}

	called := false
	v, ok := LookupOr(src, "b", func() (any, bool) {
		called = true
		return "fallback", true
	})
	if !called || !ok || v != "fallback" {
		t.Fatalf("expected fallback, got %v ok=%v called=%v", v, ok, called)
	}

	if _, ok := LookupOr(nil, "a", nil); ok {
		t.Fatalf("expected nil source without fallback to miss")
	}
}
