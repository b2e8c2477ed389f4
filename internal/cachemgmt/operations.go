package cachemgmt

import (
	"context"
	"fmt"
	"strings"

	adminErrors "github.com/conduitllm/admin/internal/errors"
	"github.com/conduitllm/admin/internal/region"
)

// AllCaches is the cache id that addresses every region at once.
const AllCaches = "all"

// Entry paging bounds.
const (
	DefaultEntriesTake = 50
	MaxEntriesTake     = 1000
)

// ClearCache clears every region when cacheID is "all" (any case), otherwise
// the single region it names.
func (s *Service) ClearCache(ctx context.Context, cacheID string) error {
	if strings.EqualFold(strings.TrimSpace(cacheID), AllCaches) {
		if err := s.engine.ClearAll(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to clear all caches", "err", err)
			return err
		}
		s.logger.InfoContext(ctx, "All caches cleared")
		return nil
	}

	r, err := region.Parse(cacheID)
	if err != nil {
		return err
	}

	if err := s.engine.ClearRegion(ctx, r); err != nil {
		s.logger.ErrorContext(ctx, "Failed to clear cache region", "region", r.String(), "err", err)
		return err
	}

	s.logger.InfoContext(ctx, "Cache region cleared", "region", r.String())
	return nil
}

// GetEntries returns one page of a region's entries. Sensitive regions always
// yield an empty page with an explanatory message and the engine is not asked.
func (s *Service) GetEntries(ctx context.Context, regionID string, skip, take int) (*EntriesPage, error) {
	r, err := region.Parse(regionID)
	if err != nil {
		return nil, err
	}

	skip, take = normalizePaging(skip, take)

	if r.Sensitive() {
		s.logger.WarnContext(ctx, "Refused to list entries of a sensitive region", "region", r.String())
		return &EntriesPage{
			Region:  r.String(),
			Entries: []EntryView{},
			Skip:    skip,
			Take:    take,
			Message: fmt.Sprintf("Entries of %s cannot be viewed because the region holds sensitive data", r.DisplayName()),
		}, nil
	}

	raw, err := s.engine.GetEntries(ctx, r, skip, take)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get cache entries", "region", r.String(), "err", err)
		return nil, err
	}

	stats, err := s.engine.GetRegionStatistics(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get region statistics", "region", r.String(), "err", err)
		return nil, err
	}

	entries := make([]EntryView, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, EntryView{
			Key:            e.Key,
			Size:           FormatSize(e.SizeBytes),
			SizeBytes:      e.SizeBytes,
			CreatedAt:      e.CreatedAt,
			LastAccessedAt: e.LastAccessedAt,
			ExpiresAt:      e.ExpiresAt,
			AccessCount:    e.AccessCount,
			Priority:       e.Priority,
		})
	}

	return &EntriesPage{
		Region:     r.String(),
		Entries:    entries,
		TotalCount: stats.EntryCount,
		Skip:       skip,
		Take:       take,
	}, nil
}

// RefreshCache refreshes a single key, or the whole region when key is empty.
// A whole-region refresh clears the region; cached data is lost.
func (s *Service) RefreshCache(ctx context.Context, regionID, key string) error {
	r, err := region.Parse(regionID)
	if err != nil {
		return err
	}

	if key == "" {
		if err := s.engine.ClearRegion(ctx, r); err != nil {
			s.logger.ErrorContext(ctx, "Failed to refresh cache region", "region", r.String(), "err", err)
			return err
		}
		s.logger.InfoContext(ctx, "Cache region refreshed", "region", r.String())
		return nil
	}

	found, err := s.engine.Refresh(ctx, key, r, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to refresh cache entry", "region", r.String(), "key", key, "err", err)
		return err
	}
	if !found {
		return adminErrors.NewNotFound("cache entry", key)
	}

	return nil
}

func normalizePaging(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = DefaultEntriesTake
	}
	if take > MaxEntriesTake {
		take = MaxEntriesTake
	}
	return skip, take
}
