package cachemgmt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	adminErrors "github.com/conduitllm/admin/internal/errors"
	"github.com/conduitllm/admin/internal/region"
)

func ptr[T any](v T) *T { return &v }

func TestGetConfiguration(t *testing.T) {
	f := newFixture(t)
	f.expectIdleEngine(map[region.Region]RegionStatistics{
		region.VirtualKeys: {HitCount: 3, MissCount: 1, TotalSizeBytes: 2048, EntryCount: 2},
	})
	f.expectTTLPolicies()
	f.store.EXPECT().GetConfiguration(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string) (*RegionConfiguration, error) {
			if name == "ModelCosts" {
				return &RegionConfiguration{
					Enabled:             false,
					DefaultTTL:          5 * time.Minute,
					MaxEntries:          250,
					EvictionPolicy:      "LFU",
					UseDistributedCache: true,
				}, nil
			}
			return nil, nil
		}).Times(len(region.All()))

	snap, err := f.svc.GetConfiguration(t.Context())
	require.NoError(t, err)

	require.Len(t, snap.Regions, len(region.All()))
	require.Len(t, snap.Policies, len(region.All()))
	for i, r := range region.All() {
		assert.Equal(t, r.String(), snap.Regions[i].ID)
	}

	vk := snap.Regions[region.VirtualKeys]
	assert.Equal(t, RegionStatusHealthy, vk.Status)
	assert.Equal(t, RegionTypeMemory, vk.Type)
	assert.True(t, vk.Enabled)
	assert.InDelta(t, 75.0, vk.HitRate, 0.0001)
	assert.Equal(t, "2 KB", vk.MemoryUsage)
	assert.Equal(t, int64(3600), vk.DefaultTTLSeconds)

	costs := snap.Regions[region.ModelCosts]
	assert.Equal(t, RegionStatusIdle, costs.Status)
	assert.Equal(t, RegionTypeDistributed, costs.Type)
	assert.False(t, costs.Enabled)
	assert.Equal(t, int64(300), costs.DefaultTTLSeconds)

	costPolicy := snap.Policies[region.ModelCosts]
	assert.Equal(t, "ModelCosts", costPolicy.Region)
	assert.Equal(t, int64(300), costPolicy.TTLSeconds)
	assert.Equal(t, int64(250), costPolicy.MaxSize)
	assert.Equal(t, "LFU", costPolicy.Strategy)
	assert.Equal(t, "TTL policy for Model Costs", costPolicy.Description)

	assert.True(t, snap.Regions[region.AuthTokens].Sensitive)

	require.NotNil(t, snap.Statistics)
	assert.Equal(t, GlobalRegion, snap.Statistics.Region)
	assert.Equal(t, fixedNow, snap.Timestamp)
}

func TestGetConfiguration_RedactsConnections(t *testing.T) {
	f := newFixture(t)
	f.expectIdleEngine(nil)
	f.expectTTLPolicies()
	f.store.EXPECT().GetConfiguration(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	snap, err := f.svc.GetConfiguration(t.Context())
	require.NoError(t, err)

	assert.Equal(t, RedactedValue, snap.Global.RedisConnection)
	assert.Equal(t, RedactedValue, snap.Global.DatabaseConnection)
	assert.NotContains(t, snap.Global.RedisConnection, "hunter2")
	assert.Equal(t, "redis", snap.Global.DistributedBackend)
	assert.Equal(t, "1 GB", snap.Global.MaxMemory)
}

func TestGetConfiguration_DownstreamFailure(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("store offline")
	f.expectIdleEngine(nil)
	f.policies.EXPECT().GetPoliciesForRegion(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().GetConfiguration(gomock.Any(), gomock.Any()).Return(nil, storeErr).MinTimes(1)

	snap, err := f.svc.GetConfiguration(t.Context())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, storeErr)
}

func TestUpdateConfiguration_Global(t *testing.T) {
	f, store := newFixtureWithStore(t)

	var published []ConfigurationChangeEvent
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e ConfigurationChangeEvent) error {
			published = append(published, e)
			return nil
		}).Times(1)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		ApplyGlobally:     true,
		DefaultTTLSeconds: ptr(int64(120)),
		ChangedBy:         "ops@example.com",
	})
	require.NoError(t, err)

	require.Len(t, store.configs, len(region.All()))
	for _, r := range region.All() {
		cfg := store.configs[r.String()]
		assert.Equal(t, 120*time.Second, cfg.DefaultTTL, r.String())
		assert.True(t, cfg.Enabled, r.String())
		assert.Equal(t, "LRU", cfg.EvictionPolicy, r.String())
	}
	for _, u := range store.updates {
		assert.Equal(t, "ops@example.com", u.changedBy)
		assert.NotEmpty(t, u.reason)
	}

	require.Len(t, published, 1)
	assert.Equal(t, GlobalRegion, published[0].Region)
	assert.Equal(t, "ops@example.com", published[0].ChangedBy)
	assert.NotEmpty(t, published[0].ID)
}

func TestUpdateConfiguration_UnknownRegion(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		RegionID:          "bogus",
		DefaultTTLSeconds: ptr(int64(120)),
	})
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "bogus")
}

func TestUpdateConfiguration_RequiresRegion(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{})
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
}

func TestUpdateConfiguration_NegativeTTL(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		ApplyGlobally:     true,
		DefaultTTLSeconds: ptr(int64(-1)),
	})
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
}

func TestUpdateConfiguration_TTLOverflow(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		RegionID:          "VirtualKeys",
		DefaultTTLSeconds: ptr(int64(10_000_000_000)),
	})
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
}

func TestUpdateConfiguration_PartialOverlay(t *testing.T) {
	f, store := newFixtureWithStore(t)
	store.configs["Embeddings"] = RegionConfiguration{
		Enabled:            true,
		DefaultTTL:         time.Hour,
		MaxEntries:         42,
		EvictionPolicy:     "LFU",
		CompressionEnabled: true,
	}
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		RegionID:          "embeddings",
		DefaultTTLSeconds: ptr(int64(30)),
	})
	require.NoError(t, err)

	cfg := store.configs["Embeddings"]
	assert.Equal(t, 30*time.Second, cfg.DefaultTTL)
	assert.Equal(t, int64(42), cfg.MaxEntries)
	assert.Equal(t, "LFU", cfg.EvictionPolicy)
	assert.True(t, cfg.CompressionEnabled)
	require.Len(t, store.updates, 1)
	assert.Equal(t, defaultChangedBy, store.updates[0].changedBy)
}

func TestUpdateConfiguration_ClearsAffectedRegionBeforePublishing(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.store.EXPECT().GetConfiguration(gomock.Any(), "RateLimits").Return(nil, nil),
		f.store.EXPECT().UpdateConfiguration(gomock.Any(), "RateLimits", gomock.Any(), "admin", gomock.Any()).Return(nil),
		f.engine.EXPECT().ClearRegion(gomock.Any(), region.RateLimits).Return(nil),
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e ConfigurationChangeEvent) error {
				assert.Equal(t, "RateLimits", e.Region)
				return nil
			}),
	)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		RegionID:            "RateLimits",
		EvictionPolicy:      ptr("FIFO"),
		ClearAffectedCaches: true,
		ChangedBy:           "admin",
	})
	require.NoError(t, err)
}

func TestUpdateConfiguration_GlobalStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("disk full")
	failing := region.ModelMetadata

	f.store.EXPECT().GetConfiguration(gomock.Any(), gomock.Any()).Return(nil, nil).Times(int(failing) + 1)
	f.store.EXPECT().UpdateConfiguration(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, _ RegionConfiguration, _, _ string) error {
			if name == failing.String() {
				return storeErr
			}
			return nil
		}).Times(int(failing) + 1)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{
		ApplyGlobally:     true,
		DefaultTTLSeconds: ptr(int64(10)),
	})
	require.Error(t, err)
	assert.Same(t, storeErr, err)
}

func TestUpdateConfiguration_CancelledBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := f.svc.UpdateConfiguration(ctx, UpdateConfigurationRequest{ApplyGlobally: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdateConfiguration_PublishFailure(t *testing.T) {
	f, _ := newFixtureWithStore(t)
	busErr := errors.New("bus closed")
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(busErr)

	err := f.svc.UpdateConfiguration(t.Context(), UpdateConfigurationRequest{RegionID: "Monitoring"})
	require.Error(t, err)
	assert.Same(t, busErr, err)
}

func TestUpdatePolicy_RoundTrip(t *testing.T) {
	f, store := newFixtureWithStore(t)
	f.expectIdleEngine(nil)
	f.expectTTLPolicies()
	// No Publish expectation: policy updates are not broadcast.

	err := f.svc.UpdatePolicy(t.Context(), "ModelCosts", PolicyUpdate{
		TTLSeconds: ptr(int64(60)),
		Reason:     "cost table refresh cadence",
		ChangedBy:  "finops",
	})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	assert.Equal(t, "cost table refresh cadence", store.updates[0].reason)
	assert.Equal(t, "finops", store.updates[0].changedBy)

	snap, err := f.svc.GetConfiguration(t.Context())
	require.NoError(t, err)

	var found bool
	for _, p := range snap.Policies {
		if p.Region == "ModelCosts" {
			found = true
			assert.Equal(t, int64(60), p.TTLSeconds)
		}
	}
	assert.True(t, found)
}

func TestUpdatePolicy_AppliesOnlyPresentFields(t *testing.T) {
	f, store := newFixtureWithStore(t)

	require.NoError(t, f.svc.UpdatePolicy(t.Context(), "Embeddings", PolicyUpdate{
		MaxSize:  ptr(int64(5000)),
		Strategy: ptr("LFU"),
	}))

	cfg := store.configs["Embeddings"]
	assert.Equal(t, int64(5000), cfg.MaxEntries)
	assert.Equal(t, "LFU", cfg.EvictionPolicy)
	assert.Equal(t, time.Hour, cfg.DefaultTTL)
	assert.Contains(t, store.updates[0].reason, "Embeddings")
}

func TestUpdatePolicy_Validation(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdatePolicy(t.Context(), "bogus", PolicyUpdate{TTLSeconds: ptr(int64(60))})
	assert.True(t, adminErrors.IsInvalidArgument(err))

	err = f.svc.UpdatePolicy(t.Context(), "Embeddings", PolicyUpdate{MaxSize: ptr(int64(-1))})
	assert.True(t, adminErrors.IsInvalidArgument(err))
}

func TestUpdatePolicy_TTLBounds(t *testing.T) {
	f, store := newFixtureWithStore(t)

	err := f.svc.UpdatePolicy(t.Context(), "VirtualKeys", PolicyUpdate{TTLSeconds: ptr(int64(10_000_000_000))})
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
	assert.Empty(t, store.configs)

	require.NoError(t, f.svc.UpdatePolicy(t.Context(), "VirtualKeys", PolicyUpdate{TTLSeconds: ptr(maxTTLSeconds)}))
	saved, ok := store.configs[region.VirtualKeys.String()]
	require.True(t, ok)
	assert.Positive(t, saved.DefaultTTL)
	assert.Equal(t, maxTTLSeconds, int64(saved.DefaultTTL/time.Second))
}
