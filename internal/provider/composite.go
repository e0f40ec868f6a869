package provider

import "context"

// Composite forwards lookups to its providers in order. The first provider
// that returns a value wins; an error from any provider stops the search.
type Composite struct {
	providers []Provider
}

// NewComposite chains providers, highest priority first.
func NewComposite(providers ...Provider) *Composite {
	chain := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &Composite{providers: chain}
}

// GetString returns the first string value any provider holds for key.
func (c *Composite) GetString(ctx context.Context, key string) (string, bool, error) {
	for _, p := range c.providers {
		s, ok, err := p.GetString(ctx, key)
		if err != nil {
			return "", false, err
		}
		if ok {
			return s, true, nil
		}
	}
	return "", false, nil
}

// GetNumber returns the first number value any provider holds for key.
func (c *Composite) GetNumber(ctx context.Context, key string) (float64, bool, error) {
	for _, p := range c.providers {
		n, ok, err := p.GetNumber(ctx, key)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return n, true, nil
		}
	}
	return 0, false, nil
}

// RequireString searches every provider's GetString before reporting the
// key as missing. Members' own RequireString is never called, so a miss in
// one provider still falls through to the next.
func (c *Composite) RequireString(ctx context.Context, key string) (string, error) {
	s, ok, err := c.GetString(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", missingKey(key, KindString)
	}
	return s, nil
}

// RequireNumber is the numeric counterpart of RequireString.
func (c *Composite) RequireNumber(ctx context.Context, key string) (float64, error) {
	n, ok, err := c.GetNumber(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, missingKey(key, KindNumber)
	}
	return n, nil
}
