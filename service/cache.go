package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trackify/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// StatsCache is an optional redis read-through cache for per-user transaction
// statistics. When redis is disabled in config every method is a no-op, so
// callers never need to branch. Cache failures degrade to database reads and
// are logged, never surfaced.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache builds a cache from config. Returns a disabled (nil-client)
// cache when redis is turned off or unreachable.
func NewStatsCache(cfg *config.RedisConfig) *StatsCache {
	sc := &StatsCache{ttl: time.Duration(cfg.StatsTTLMinutes) * time.Minute}
	if !cfg.Enabled {
		return sc
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.Warnf("redis unreachable, stats cache disabled: %v", err)
		return sc
	}
	sc.rdb = rdb
	return sc
}

// Enabled reports whether a redis client is wired up.
func (s *StatsCache) Enabled() bool {
	return s != nil && s.rdb != nil
}

// Key returns the cache key for a user's stats.
func (s *StatsCache) Key(userID uint) string {
	return fmt.Sprintf("trackify:stats:%d", userID)
}

// Get loads cached stats into dest. Returns false on miss, disabled cache or
// error.
func (s *StatsCache) Get(ctx context.Context, userID uint, dest any) bool {
	if !s.Enabled() {
		return false
	}
	val, err := s.rdb.Get(ctx, s.Key(userID)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logrus.Warnf("stats cache get: %v", err)
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		logrus.Warnf("stats cache decode: %v", err)
		return false
	}
	return true
}

// Set stores stats for a user with the configured TTL.
func (s *StatsCache) Set(ctx context.Context, userID uint, value any) {
	if !s.Enabled() {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		logrus.Warnf("stats cache encode: %v", err)
		return
	}
	if err := s.rdb.Set(ctx, s.Key(userID), b, s.ttl).Err(); err != nil {
		logrus.Warnf("stats cache set: %v", err)
	}
}

// Invalidate drops a user's cached stats. Called after every transaction
// mutation.
func (s *StatsCache) Invalidate(ctx context.Context, userID uint) {
	if !s.Enabled() {
		return
	}
	if err := s.rdb.Del(ctx, s.Key(userID)).Err(); err != nil {
		logrus.Warnf("stats cache invalidate: %v", err)
	}
}
