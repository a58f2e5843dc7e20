package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mineralchain/roles-admin/internal/api/metrics"
	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

const defaultNameTTL = 5 * time.Minute

// NameCache wraps a NameResolver and caches successful resolutions.
// Unregistered names are never cached so a new registration is seen at once.
// Key format: names:<lower-cased name>
type NameCache struct {
	client *redis.Client
	next   ports.NameResolver
	ttl    time.Duration
	logger zerolog.Logger
}

func NewNameCache(client *redis.Client, next ports.NameResolver, ttl time.Duration, logger zerolog.Logger) *NameCache {
	if ttl <= 0 {
		ttl = defaultNameTTL
	}
	return &NameCache{client: client, next: next, ttl: ttl, logger: logger}
}

// ResolveName serves from the cache when possible and falls through to the
// wrapped resolver otherwise. Cache failures never fail a resolution.
func (c *NameCache) ResolveName(ctx context.Context, name string) (string, error) {
	key := c.key(name)

	addr, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.NameResolutionsTotal.WithLabelValues("cache_hit").Inc()
		return addr, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("name", name).Msg("name cache read failed")
	}

	addr, err = c.next.ResolveName(ctx, name)
	if err != nil {
		return "", err
	}
	if domain.IsAddress(addr) && !domain.IsZeroAddress(addr) {
		if err := c.client.Set(ctx, key, addr, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("name", name).Msg("name cache write failed")
		}
	}
	return addr, nil
}

func (c *NameCache) key(name string) string {
	return fmt.Sprintf("names:%s", strings.ToLower(name))
}
