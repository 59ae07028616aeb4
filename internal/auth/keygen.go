// Package auth provides credential utilities: API tokens, password hashing and session tokens.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultTokenPrefix is the human-readable marker on every issued API key.
const DefaultTokenPrefix = "lo-"

var (
	// ErrInvalidTokenFormat indicates the token does not match prefix + UUID.
	ErrInvalidTokenFormat = errors.New("invalid API key format")

	prefixPattern = regexp.MustCompile(`^[a-z0-9_]{1,16}-$`)
)

// TokenGenerator issues API keys of the form <prefix><uuid v4>.
// It is safe for concurrent use when its reader is.
type TokenGenerator struct {
	prefix string
	random io.Reader
}

// NewTokenGenerator creates a generator backed by crypto/rand.
// An empty prefix selects DefaultTokenPrefix.
func NewTokenGenerator(prefix string) (*TokenGenerator, error) {
	return NewTokenGeneratorFromReader(prefix, rand.Reader)
}

// NewTokenGeneratorFromReader creates a generator that draws randomness from r.
func NewTokenGeneratorFromReader(prefix string, r io.Reader) (*TokenGenerator, error) {
	if prefix == "" {
		prefix = DefaultTokenPrefix
	}
	if !prefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("invalid token prefix %q: must be lowercase alphanumeric ending in '-'", prefix)
	}
	if r == nil {
		return nil, errors.New("token generator requires a random source")
	}
	return &TokenGenerator{prefix: prefix, random: r}, nil
}

// Generate returns a fresh token.
// It fails only when the random source cannot supply 16 bytes.
func (g *TokenGenerator) Generate() (string, error) {
	id, err := uuid.NewRandomFromReader(g.random)
	if err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}
	return g.prefix + id.String(), nil
}

// ParsedToken contains the parts of an API key.
type ParsedToken struct {
	Prefix string
	ID     uuid.UUID
}

// ParseToken splits a token into its prefix and UUID.
func (g *TokenGenerator) ParseToken(token string) (*ParsedToken, error) {
	rest, ok := strings.CutPrefix(token, g.prefix)
	if !ok || len(rest) != 36 {
		return nil, ErrInvalidTokenFormat
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return nil, ErrInvalidTokenFormat
	}
	return &ParsedToken{Prefix: g.prefix, ID: id}, nil
}

// ValidateTokenFormat checks if the token matches the generator's format.
func (g *TokenGenerator) ValidateTokenFormat(token string) bool {
	_, err := g.ParseToken(token)
	return err == nil
}
