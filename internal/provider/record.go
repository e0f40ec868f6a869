package provider

import "context"

// Record reads values from a primary source, then from an optional default source.
type Record struct {
	values   Source
	defaults Source
}

// NewRecord constructs a Record. defaults may be nil.
func NewRecord(values Source, defaults Source) *Record {
	return &Record{values: values, defaults: defaults}
}

// GetString returns the string stored under key.
func (r *Record) GetString(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	value, ok := r.lookup(key)
	if !ok {
		return "", false, nil
	}

	s, isString := value.(string)
	if !isString {
		return "", false, typeMismatch(key, KindString, value)
	}
	return s, true, nil
}

// GetNumber returns the number stored under key. String values are parsed
// leniently: the longest numeric prefix is used, so "12px" reads as 12.
func (r *Record) GetNumber(ctx context.Context, key string) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	value, ok := r.lookup(key)
	if !ok {
		return 0, false, nil
	}

	n, valid := toNumber(value)
	if !valid {
		return 0, false, typeMismatch(key, KindNumber, value)
	}
	return n, true, nil
}

// RequireString is GetString with a MissingKeyError when nothing is found.
func (r *Record) RequireString(ctx context.Context, key string) (string, error) {
	s, ok, err := r.GetString(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", missingKey(key, KindString)
	}
	return s, nil
}

// RequireNumber is GetNumber with a MissingKeyError when nothing is found.
func (r *Record) RequireNumber(ctx context.Context, key string) (float64, error) {
	n, ok, err := r.GetNumber(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, missingKey(key, KindNumber)
	}
	return n, nil
}

func (r *Record) lookup(key string) (any, bool) {
	return LookupOr(r.values, key, func() (any, bool) {
		return LookupOr(r.defaults, key, nil)
	})
}
