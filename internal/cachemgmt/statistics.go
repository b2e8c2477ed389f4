package cachemgmt

import (
	"context"
	"math"
	"sort"

	"github.com/conduitllm/admin/internal/region"
)

const maxTopItems = 10

// topItemRegions are the non-sensitive regions whose key families are worth
// surfacing as top cached items.
var topItemRegions = []region.Region{
	region.VirtualKeys,
	region.ModelMetadata,
	region.ModelCosts,
	region.ProviderResponses,
	region.Embeddings,
}

// GetStatistics returns the statistics of a single region, or of all regions
// combined when regionID is empty.
func (s *Service) GetStatistics(ctx context.Context, regionID string) (*StatisticsSnapshot, error) {
	if regionID == "" {
		return s.globalStatistics(ctx)
	}

	r, err := region.Parse(regionID)
	if err != nil {
		return nil, err
	}

	stats, err := s.engine.GetRegionStatistics(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get region statistics", "region", r.String(), "err", err)
		return nil, err
	}

	return s.regionSnapshot(r, stats), nil
}

func (s *Service) regionSnapshot(r region.Region, stats RegionStatistics) *StatisticsSnapshot {
	getMs := milliseconds(stats.AverageGetTime)

	return &StatisticsSnapshot{
		Region:                         r.String(),
		DisplayName:                    r.DisplayName(),
		TotalHits:                      stats.HitCount,
		TotalMisses:                    stats.MissCount,
		TotalSets:                      stats.SetCount,
		TotalEvictions:                 stats.EvictionCount,
		EntryCount:                     stats.EntryCount,
		HitRate:                        stats.HitRate(),
		EvictionRate:                   stats.EvictionRate(),
		AverageGetLatencyMs:            getMs,
		AverageSetLatencyMs:            milliseconds(stats.AverageSetTime),
		EstimatedLatencyWithoutCacheMs: getMs * latencyWithoutCacheFactor,
		Memory: MemoryUsage{
			Current:      FormatSize(stats.TotalSizeBytes),
			Peak:         FormatSize(peakBytes(stats.TotalSizeBytes)),
			Limit:        "N/A",
			CurrentBytes: stats.TotalSizeBytes,
		},
		CapturedAt: s.now().UTC(),
	}
}

func (s *Service) globalStatistics(ctx context.Context) (*StatisticsSnapshot, error) {
	all, err := s.engine.GetAllStatistics(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get cache statistics", "err", err)
		return nil, err
	}

	var totals RegionStatistics
	var getSum, setSum float64
	var getCount, setCount int

	for _, r := range sortedRegions(all) {
		stats := all[r]
		totals.HitCount += stats.HitCount
		totals.MissCount += stats.MissCount
		totals.SetCount += stats.SetCount
		totals.EvictionCount += stats.EvictionCount
		totals.EntryCount += stats.EntryCount
		totals.TotalSizeBytes += stats.TotalSizeBytes

		// Regions that never served a request do not drag the mean towards zero.
		if stats.AverageGetTime > 0 {
			getSum += milliseconds(stats.AverageGetTime)
			getCount++
		}
		if stats.AverageSetTime > 0 {
			setSum += milliseconds(stats.AverageSetTime)
			setCount++
		}
	}

	var getMs, setMs float64
	if getCount > 0 {
		getMs = getSum / float64(getCount)
	}
	if setCount > 0 {
		setMs = setSum / float64(setCount)
	}

	limit := "N/A"
	if s.opts.MemoryLimitBytes > 0 {
		limit = FormatSize(s.opts.MemoryLimitBytes)
	}

	return &StatisticsSnapshot{
		Region:                         GlobalRegion,
		DisplayName:                    "All Regions",
		TotalHits:                      totals.HitCount,
		TotalMisses:                    totals.MissCount,
		TotalSets:                      totals.SetCount,
		TotalEvictions:                 totals.EvictionCount,
		EntryCount:                     totals.EntryCount,
		HitRate:                        totals.HitRate(),
		EvictionRate:                   totals.EvictionRate(),
		AverageGetLatencyMs:            getMs,
		AverageSetLatencyMs:            setMs,
		EstimatedLatencyWithoutCacheMs: getMs * latencyWithoutCacheFactor,
		Memory: MemoryUsage{
			Current:      FormatSize(totals.TotalSizeBytes),
			Peak:         FormatSize(peakBytes(totals.TotalSizeBytes)),
			Limit:        limit,
			CurrentBytes: totals.TotalSizeBytes,
		},
		CapturedAt: s.now().UTC(),
	}, nil
}

// GetTopCachedItems ranks the key families of the interesting regions by hit
// count. Figures are region-level approximations.
func (s *Service) GetTopCachedItems(ctx context.Context) ([]TopCachedItem, error) {
	all, err := s.engine.GetAllStatistics(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get top cached items", "err", err)
		return nil, err
	}

	items := make([]TopCachedItem, 0, len(topItemRegions))
	for _, r := range topItemRegions {
		stats := all[r]

		avg := stats.TotalSizeBytes / max(stats.EntryCount, 1)

		items = append(items, TopCachedItem{
			KeyPattern:           r.KeyPattern(),
			Region:               r.String(),
			HitCount:             stats.HitCount,
			AverageItemSize:      FormatSize(avg),
			AverageItemSizeBytes: avg,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].HitCount > items[j].HitCount
	})

	if len(items) > maxTopItems {
		items = items[:maxTopItems]
	}
	return items, nil
}

func peakBytes(current int64) int64 {
	return int64(math.Round(float64(current) * peakMemoryFactor))
}

func sortedRegions(m map[region.Region]RegionStatistics) []region.Region {
	regions := make([]region.Region, 0, len(m))
	for r := range m {
		regions = append(regions, r)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}
