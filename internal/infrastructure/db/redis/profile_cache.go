package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/credgate/auth-api/internal/core/domain"
)

const defaultProfileTTL = 5 * time.Minute

// ProfileCache caches user profiles by identity key.
// Key format: profile:<user_id>
//
// Stored users are never updated, so entries cannot go stale; the TTL only
// bounds memory. Every Redis failure is logged and treated as a miss.
type ProfileCache struct {
	client  *redis.Client
	ttl     time.Duration
	lookups *prometheus.CounterVec
	log     zerolog.Logger
}

// NewProfileCache wraps client. lookups may be nil; when set it receives a
// "result" label of hit, miss or error.
func NewProfileCache(client *redis.Client, ttl time.Duration, lookups *prometheus.CounterVec, log zerolog.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{client: client, ttl: ttl, lookups: lookups, log: log}
}

func (c *ProfileCache) Get(ctx context.Context, id string) (*domain.Profile, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.record("miss")
			return nil, false
		}
		c.record("error")
		c.log.Warn().Err(err).Str("user_id", id).Msg("profile cache read failed")
		return nil, false
	}

	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		c.record("error")
		c.log.Warn().Err(err).Str("user_id", id).Msg("profile cache entry corrupt")
		return nil, false
	}

	c.record("hit")
	return &p, true
}

func (c *ProfileCache) Set(ctx context.Context, p *domain.Profile) {
	payload, err := json.Marshal(p)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", p.ID).Msg("profile cache encode failed")
		return
	}
	if err := c.client.Set(ctx, c.key(p.ID), payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", p.ID).Msg("profile cache write failed")
	}
}

func (c *ProfileCache) key(id string) string {
	return fmt.Sprintf("profile:%s", id)
}

func (c *ProfileCache) record(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}
