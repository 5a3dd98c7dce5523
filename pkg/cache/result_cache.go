package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// ResultCache stores simulation results keyed by pool-snapshot fingerprint
// and lineup ID, so results are invalidated automatically when the pool
// changes. A nil client disables caching; every method becomes a no-op.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewResultCache creates a simulation result cache. client may be nil.
func NewResultCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *ResultCache {
	return &ResultCache{client: client, ttl: ttl, logger: logger}
}

// Enabled reports whether a backing store is configured.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil
}

func simulationKey(poolFingerprint string, lineupID uuid.UUID) string {
	return fmt.Sprintf("simulation:%s:%s", poolFingerprint, lineupID)
}

// SetSimulationResult stores a simulation result.
func (c *ResultCache) SetSimulationResult(ctx context.Context, poolFingerprint string, result *types.SimulationResult) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal simulation result: %w", err)
	}

	key := simulationKey(poolFingerprint, result.LineupID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set simulation result in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": key,
		"ttl":       c.ttl,
		"draws":     result.Draws,
	}).Debug("Cached simulation result")

	return nil
}

// GetSimulationResult retrieves a simulation result. A cache miss returns
// (nil, nil).
func (c *ResultCache) GetSimulationResult(ctx context.Context, poolFingerprint string, lineupID uuid.UUID) (*types.SimulationResult, error) {
	if !c.Enabled() {
		return nil, nil
	}
	key := simulationKey(poolFingerprint, lineupID)
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get simulation result from cache: %w", err)
	}

	var result types.SimulationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation result: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": key,
		"draws":     result.Draws,
	}).Debug("Retrieved simulation result from cache")

	return &result, nil
}

// FlushPool removes all cached results for one pool snapshot.
func (c *ResultCache) FlushPool(ctx context.Context, poolFingerprint string) error {
	if !c.Enabled() {
		return nil
	}
	keys, err := c.client.Keys(ctx, fmt.Sprintf("simulation:%s:*", poolFingerprint)).Result()
	if err != nil {
		return fmt.Errorf("failed to list simulation keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete simulation keys: %w", err)
		}
	}
	c.logger.WithFields(logrus.Fields{
		"pool_fingerprint": poolFingerprint,
		"deleted_keys":     len(keys),
	}).Info("Flushed simulation cache for pool snapshot")
	return nil
}
