package cachemgmt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	adminErrors "github.com/conduitllm/admin/internal/errors"
	"github.com/conduitllm/admin/internal/region"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2304, "2.25 KB"},
		{1048576, "1 MB"},
		{1073741824, "1 GB"},
		{1099511627776, "1 TB"},
		{5 * 1099511627776 * 1024, "5120 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestGetStatistics_RegionWithoutTraffic(t *testing.T) {
	for _, r := range region.All() {
		t.Run(r.String(), func(t *testing.T) {
			f := newFixture(t)
			f.engine.EXPECT().GetRegionStatistics(gomock.Any(), r).Return(RegionStatistics{}, nil)

			snap, err := f.svc.GetStatistics(t.Context(), r.String())
			require.NoError(t, err)

			assert.Equal(t, 0.0, snap.HitRate)
			assert.Equal(t, 0.0, snap.EvictionRate)
			assert.Equal(t, "0 B", snap.Memory.Current)
			assert.Equal(t, "N/A", snap.Memory.Limit)
			assert.Equal(t, r.DisplayName(), snap.DisplayName)
		})
	}
}

func TestGetStatistics_HitRate(t *testing.T) {
	f := newFixture(t)
	f.engine.EXPECT().GetRegionStatistics(gomock.Any(), region.VirtualKeys).Return(RegionStatistics{
		HitCount:       30,
		MissCount:      70,
		SetCount:       100,
		EvictionCount:  20,
		AverageGetTime: 2 * time.Millisecond,
		AverageSetTime: 3 * time.Millisecond,
		TotalSizeBytes: 1024,
		EntryCount:     4,
	}, nil)

	snap, err := f.svc.GetStatistics(t.Context(), "virtual_keys")
	require.NoError(t, err)

	assert.Equal(t, "VirtualKeys", snap.Region)
	assert.InDelta(t, 30.0, snap.HitRate, 0.0001)
	assert.InDelta(t, 10.0, snap.EvictionRate, 0.0001)
	assert.InDelta(t, 2.0, snap.AverageGetLatencyMs, 0.0001)
	assert.InDelta(t, 3.0, snap.AverageSetLatencyMs, 0.0001)
	assert.InDelta(t, 40.0, snap.EstimatedLatencyWithoutCacheMs, 0.0001)
	assert.Equal(t, "1 KB", snap.Memory.Current)
	assert.Equal(t, "1.5 KB", snap.Memory.Peak)
	assert.Equal(t, fixedNow, snap.CapturedAt)
}

func TestGetStatistics_GlobalRollup(t *testing.T) {
	f := newFixture(t)
	f.engine.EXPECT().GetAllStatistics(gomock.Any()).Return(map[region.Region]RegionStatistics{
		region.VirtualKeys: {
			HitCount: 60, MissCount: 20, SetCount: 20,
			AverageGetTime: 2 * time.Millisecond, AverageSetTime: 4 * time.Millisecond,
			TotalSizeBytes: 1024, EntryCount: 2,
		},
		region.ModelCosts: {
			HitCount: 20, MissCount: 0, EvictionCount: 5,
			AverageGetTime: 4 * time.Millisecond,
			TotalSizeBytes: 512, EntryCount: 1,
		},
		// No traffic: excluded from latency means.
		region.AudioStreams: {},
	}, nil)

	snap, err := f.svc.GetStatistics(t.Context(), "")
	require.NoError(t, err)

	assert.Equal(t, GlobalRegion, snap.Region)
	assert.Equal(t, int64(80), snap.TotalHits)
	assert.Equal(t, int64(20), snap.TotalMisses)
	assert.Equal(t, int64(20), snap.TotalSets)
	assert.Equal(t, int64(5), snap.TotalEvictions)
	assert.Equal(t, int64(3), snap.EntryCount)
	assert.InDelta(t, 80.0, snap.HitRate, 0.0001)
	assert.InDelta(t, 5.0/120.0*100, snap.EvictionRate, 0.0001)
	assert.InDelta(t, 3.0, snap.AverageGetLatencyMs, 0.0001)
	assert.InDelta(t, 4.0, snap.AverageSetLatencyMs, 0.0001)
	assert.InDelta(t, 60.0, snap.EstimatedLatencyWithoutCacheMs, 0.0001)
	assert.Equal(t, "1.5 KB", snap.Memory.Current)
	assert.Equal(t, "2.25 KB", snap.Memory.Peak)
	assert.Equal(t, "1 GB", snap.Memory.Limit)
}

func TestGetStatistics_GlobalWithoutTraffic(t *testing.T) {
	f := newFixture(t)
	f.engine.EXPECT().GetAllStatistics(gomock.Any()).Return(map[region.Region]RegionStatistics{}, nil)

	snap, err := f.svc.GetStatistics(t.Context(), "")
	require.NoError(t, err)

	assert.Equal(t, 0.0, snap.HitRate)
	assert.Equal(t, 0.0, snap.AverageGetLatencyMs)
	assert.Equal(t, 0.0, snap.EstimatedLatencyWithoutCacheMs)
}

func TestGetStatistics_UnknownRegion(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetStatistics(t.Context(), "bogus")
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
}

func TestGetStatistics_EngineFailure(t *testing.T) {
	f := newFixture(t)
	engineErr := errors.New("engine unavailable")
	f.engine.EXPECT().GetAllStatistics(gomock.Any()).Return(nil, engineErr)

	_, err := f.svc.GetStatistics(t.Context(), "")
	require.Error(t, err)
	assert.Same(t, engineErr, err)
}

func TestGetStatistics_PeakRoundsUp(t *testing.T) {
	f := newFixture(t)
	f.engine.EXPECT().GetRegionStatistics(gomock.Any(), region.ModelCosts).Return(RegionStatistics{TotalSizeBytes: 1}, nil)

	snap, err := f.svc.GetStatistics(t.Context(), "ModelCosts")
	require.NoError(t, err)
	assert.Equal(t, "1 B", snap.Memory.Current)
	assert.Equal(t, "2 B", snap.Memory.Peak)
}

func TestGetTopCachedItems(t *testing.T) {
	f := newFixture(t)
	f.engine.EXPECT().GetAllStatistics(gomock.Any()).Return(map[region.Region]RegionStatistics{
		region.VirtualKeys:       {HitCount: 10, TotalSizeBytes: 2048, EntryCount: 2},
		region.ModelCosts:        {HitCount: 500, TotalSizeBytes: 3072, EntryCount: 3},
		region.Embeddings:        {HitCount: 50, TotalSizeBytes: 700, EntryCount: 0},
		region.AuthTokens:        {HitCount: 9999},
		region.ProviderResponses: {HitCount: 50},
	}, nil)

	items, err := f.svc.GetTopCachedItems(t.Context())
	require.NoError(t, err)
	require.Len(t, items, len(topItemRegions))

	assert.Equal(t, "cost:*", items[0].KeyPattern)
	assert.Equal(t, int64(500), items[0].HitCount)
	assert.Equal(t, "1 KB", items[0].AverageItemSize)

	// Ties keep catalog order.
	assert.Equal(t, "ProviderResponses", items[1].Region)
	assert.Equal(t, "Embeddings", items[2].Region)
	assert.Equal(t, int64(700), items[2].AverageItemSizeBytes)

	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].HitCount, items[i].HitCount)
	}
	for _, item := range items {
		assert.NotEqual(t, "AuthTokens", item.Region)
	}
}
