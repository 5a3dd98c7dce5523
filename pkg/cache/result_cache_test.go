package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := NewResultCache(nil, time.Minute, logrus.New())
	require.False(t, c.Enabled())

	ctx := context.Background()
	result := &types.SimulationResult{LineupID: uuid.New(), Draws: 100}

	assert.NoError(t, c.SetSimulationResult(ctx, "abc", result))

	got, err := c.GetSimulationResult(ctx, "abc", result.LineupID)
	assert.NoError(t, err)
	assert.Nil(t, got, "disabled cache always misses")

	assert.NoError(t, c.FlushPool(ctx, "abc"))
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *ResultCache
	assert.False(t, c.Enabled())
}

func TestSimulationKeyScopesByPoolAndLineup(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "simulation:pool1:"+id.String(), simulationKey("pool1", id))
	assert.NotEqual(t, simulationKey("pool1", id), simulationKey("pool2", id))
}
