package routing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "itinerary:"

// CachedPlanner is cache-aside over Redis. Concurrent misses for the same
// stops share one upstream call, and Redis failures fall through to the
// wrapped planner.
type CachedPlanner struct {
	next  Planner
	redis *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
	group singleflight.Group
}

func NewCachedPlanner(next Planner, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedPlanner {
	return &CachedPlanner{
		next:  next,
		redis: client,
		ttl:   ttl,
		log:   log.WithField("component", "itinerary-cache"),
	}
}

// CacheKey is stable for the same stops in the same order.
func CacheKey(stops []string) string {
	sum := sha256.Sum256([]byte(strings.Join(stops, "\n")))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedPlanner) Plan(ctx context.Context, stops []string) (*Itinerary, error) {
	key := CacheKey(stops)

	if cached, ok := c.get(ctx, key); ok {
		return cached, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, ok := c.get(ctx, key); ok {
			return cached, nil
		}
		fresh, err := c.next.Plan(ctx, stops)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Itinerary), nil
}

func (c *CachedPlanner) get(ctx context.Context, key string) (*Itinerary, bool) {
	value, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("Itinerary cache read failed")
		return nil, false
	}

	var itinerary Itinerary
	if err := json.Unmarshal([]byte(value), &itinerary); err != nil {
		c.log.WithError(err).Warn("Itinerary cache entry is corrupt")
		return nil, false
	}
	return &itinerary, true
}

func (c *CachedPlanner) set(ctx context.Context, key string, itinerary *Itinerary) {
	payload, err := json.Marshal(itinerary)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Itinerary cache write failed")
	}
}
