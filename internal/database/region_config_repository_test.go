package database

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

func TestRegionConfigRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)

	cfg, err := db.RegionConfigs.GetConfiguration(t.Context(), "VirtualKeys")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestRegionConfigRepository_UpsertAndAudit(t *testing.T) {
	db := newTestDB(t)
	repo := db.RegionConfigs
	ctx := t.Context()

	first := cachemgmt.RegionConfiguration{
		Enabled:        true,
		DefaultTTL:     10 * time.Minute,
		MaxEntries:     500,
		EvictionPolicy: "LRU",
	}
	require.NoError(t, repo.UpdateConfiguration(ctx, "ModelCosts", first, "alice", "initial"))

	got, err := repo.GetConfiguration(ctx, "ModelCosts")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	second := first
	second.DefaultTTL = time.Minute
	second.CompressionEnabled = true
	second.UseDistributedCache = true
	require.NoError(t, repo.UpdateConfiguration(ctx, "ModelCosts", second, "bob", "shorter ttl"))

	got, err = repo.GetConfiguration(ctx, "ModelCosts")
	require.NoError(t, err)
	assert.Equal(t, second, *got)

	audit, err := repo.ListAudit(ctx, "ModelCosts", 10)
	require.NoError(t, err)
	require.Len(t, audit, 2)

	latest := audit[0]
	assert.Equal(t, "bob", latest.ChangedBy)
	assert.Equal(t, "shorter ttl", latest.Reason)
	require.NotNil(t, latest.OldValue)

	var oldValue, newValue auditValue
	require.NoError(t, json.Unmarshal([]byte(*latest.OldValue), &oldValue))
	require.NoError(t, json.Unmarshal([]byte(latest.NewValue), &newValue))
	assert.Equal(t, int64(600), oldValue.DefaultTTLSeconds)
	assert.Equal(t, int64(60), newValue.DefaultTTLSeconds)
	assert.True(t, newValue.CompressionEnabled)

	assert.Equal(t, "alice", audit[1].ChangedBy)
	assert.Nil(t, audit[1].OldValue)
}

func TestRegionConfigRepository_ListConfigurations(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	require.NoError(t, db.RegionConfigs.UpdateConfiguration(ctx, "Embeddings", cachemgmt.RegionConfiguration{Enabled: true, MaxEntries: 1}, "a", "r"))
	require.NoError(t, db.RegionConfigs.UpdateConfiguration(ctx, "AuthTokens", cachemgmt.RegionConfiguration{Enabled: false}, "a", "r"))

	configs, err := db.RegionConfigs.ListConfigurations(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, int64(1), configs["Embeddings"].MaxEntries)
	assert.False(t, configs["AuthTokens"].Enabled)
}

func TestRegionConfigRepository_ConcurrentUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := cachemgmt.RegionConfiguration{Enabled: true, DefaultTTL: time.Duration(i+1) * time.Second}
			errs <- db.RegionConfigs.UpdateConfiguration(ctx, "RateLimits", cfg, "worker", "load")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	audit, err := db.RegionConfigs.ListAudit(ctx, "RateLimits", 100)
	require.NoError(t, err)
	assert.Len(t, audit, 16)
}

func TestRegionConfigRepository_CancelledContext(t *testing.T) {
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := db.RegionConfigs.UpdateConfiguration(ctx, "VirtualKeys", cachemgmt.RegionConfiguration{}, "a", "r")
	assert.Error(t, err)
}
