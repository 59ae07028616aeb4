package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dsgallups/rust-atlanta/internal/auth"
	"github.com/dsgallups/rust-atlanta/internal/model"
)

const (
	// principalCachePrefix is the Redis key prefix for principals resolved from API keys.
	principalCachePrefix = "principal:apikey:"
	// principalCacheTTL is the time-to-live for cached principals.
	principalCacheTTL = 5 * time.Minute
)

// cachedPrincipal is the JSON form stored in Redis.
type cachedPrincipal struct {
	UserID string `json:"user_id"`
	PID    string `json:"pid"`
	Email  string `json:"email"`
}

// principalKey never embeds the raw API key.
func principalKey(apiKey string) string {
	return principalCachePrefix + auth.QuickHash(apiKey)
}

// GetPrincipal returns the principal cached for apiKey.
// A miss or a corrupted entry reports ok == false with a nil error.
func (c *Cache) GetPrincipal(ctx context.Context, apiKey string) (*model.Principal, bool, error) {
	data, err := c.client.Get(ctx, principalKey(apiKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached principal: %w", err)
	}

	p, ok := decodePrincipal(data)
	return p, ok, nil
}

// SetPrincipal caches the principal resolved for apiKey.
func (c *Cache) SetPrincipal(ctx context.Context, apiKey string, p *model.Principal) error {
	data, err := encodePrincipal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, principalKey(apiKey), data, principalCacheTTL).Err()
}

// DeletePrincipal drops the cached principal for apiKey.
func (c *Cache) DeletePrincipal(ctx context.Context, apiKey string) error {
	return c.client.Del(ctx, principalKey(apiKey)).Err()
}

func encodePrincipal(p *model.Principal) ([]byte, error) {
	data, err := json.Marshal(cachedPrincipal{UserID: p.UserID, PID: p.PID, Email: p.Email})
	if err != nil {
		return nil, fmt.Errorf("marshal principal: %w", err)
	}
	return data, nil
}

func decodePrincipal(data []byte) (*model.Principal, bool) {
	var cached cachedPrincipal
	if err := json.Unmarshal(data, &cached); err != nil || cached.UserID == "" {
		return nil, false
	}
	return &model.Principal{
		UserID: cached.UserID,
		PID:    cached.PID,
		Email:  cached.Email,
		Method: model.AuthMethodAPIKey,
	}, true
}
