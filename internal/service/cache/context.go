package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	"ArenaPull/pkg/cache"
	"ArenaPull/pkg/logger"
)

// ContextCache shares one context-data fetch per challenge across the models
// processed in the same cycle. Entries are stored as JSON strings so every
// backend (memory, redis, layered) round-trips them identically. Misses and
// backend errors are treated the same: the caller re-fetches from the arena
// API.
type ContextCache struct {
	logger *logger.Logger
	store  cache.Service
	ttl    time.Duration
}

// NewContextCache wraps a cache backend.
func NewContextCache(lgr *logger.Logger, store cache.Service, ttl time.Duration) drepo.ContextCache {
	return &ContextCache{logger: lgr, store: store, ttl: ttl}
}

func contextKey(challengeID int64) string {
	return cache.GenerateKey("context", strconv.FormatInt(challengeID, 10))
}

// GetContext returns the cached context series for a challenge, if present.
func (c *ContextCache) GetContext(ctx context.Context, challengeID int64) ([]models.ContextSeries, bool) {
	var raw string
	err := c.store.Get(ctx, contextKey(challengeID), &raw)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("context cache get failed",
				logger.Int("challenge_id", int(challengeID)),
				logger.Error(err))
		}
		return nil, false
	}

	var series []models.ContextSeries
	if err := json.Unmarshal([]byte(raw), &series); err != nil {
		c.logger.Warn("context cache entry corrupt",
			logger.Int("challenge_id", int(challengeID)),
			logger.Error(err))
		return nil, false
	}
	return series, true
}

// SetContext stores the context series for a challenge with the cache TTL.
func (c *ContextCache) SetContext(ctx context.Context, challengeID int64, series []models.ContextSeries) {
	raw, err := json.Marshal(series)
	if err != nil {
		c.logger.Warn("context cache marshal failed",
			logger.Int("challenge_id", int(challengeID)),
			logger.Error(err))
		return
	}
	if err := c.store.Set(ctx, contextKey(challengeID), string(raw), c.ttl); err != nil {
		c.logger.Warn("context cache set failed",
			logger.Int("challenge_id", int(challengeID)),
			logger.Error(err))
	}
}
