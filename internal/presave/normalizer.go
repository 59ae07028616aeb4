package presave

import (
	"errors"
	"fmt"
	"time"
)

// ErrNormalizationFailed aborts a write whose derived fields could not be produced.
var ErrNormalizationFailed = errors.New("normalization failed")

// timestampResolution is the smallest step Postgres timestamptz can represent.
const timestampResolution = time.Microsecond

// TokenGenerator issues globally unique secret tokens.
// Implementations must be safe for concurrent use.
type TokenGenerator interface {
	Generate() (string, error)
}

// Normalizer derives timestamps and credential tokens on every write.
// It holds no per-write state and may be shared across goroutines.
type Normalizer struct {
	tokens TokenGenerator
	now    func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New creates a Normalizer that issues credential tokens from tokens.
func New(tokens TokenGenerator, opts ...Option) *Normalizer {
	n := &Normalizer{
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize applies the insert or update derivations to e in place.
func (n *Normalizer) Normalize(e Entity, insert bool) error {
	if insert {
		return n.beforeInsert(e)
	}
	n.beforeUpdate(e)
	return nil
}

func (n *Normalizer) beforeInsert(e Entity) error {
	if c, ok := e.(Credential); ok {
		if n.tokens == nil {
			return fmt.Errorf("%w: no token generator configured", ErrNormalizationFailed)
		}
		token, err := n.tokens.Generate()
		if err != nil {
			return fmt.Errorf("%w: generate secret token: %w", ErrNormalizationFailed, err)
		}
		if token == "" {
			return fmt.Errorf("%w: token generator returned an empty token", ErrNormalizationFailed)
		}
		c.PreSaveToken().Set(token)
	}

	now := n.now().UTC().Truncate(timestampResolution)
	stamps := e.PreSaveStamps()
	if !stamps.CreatedAt.IsSet() {
		stamps.CreatedAt.Set(now)
	}
	if !stamps.UpdatedAt.IsSet() {
		// A future created_at would otherwise leave updated_at behind it.
		if created := stamps.CreatedAt.Value(); created.After(now) {
			now = created
		}
		stamps.UpdatedAt.Set(now)
	}
	return nil
}

func (n *Normalizer) beforeUpdate(e Entity) {
	stamps := e.PreSaveStamps()
	stamps.CreatedAt.Reset()

	if c, ok := e.(Credential); ok {
		c.PreSaveToken().Reset()
	}

	if stamps.UpdatedAt.IsSet() {
		return
	}

	now := n.now().UTC().Truncate(timestampResolution)
	if prev := stamps.UpdatedAt.Value(); !prev.IsZero() && !now.After(prev) {
		now = prev.Add(timestampResolution)
	}
	stamps.UpdatedAt.Set(now)
}
