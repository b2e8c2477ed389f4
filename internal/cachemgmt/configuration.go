package cachemgmt

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	concpool "github.com/sourcegraph/conc/pool"

	adminErrors "github.com/conduitllm/admin/internal/errors"
	"github.com/conduitllm/admin/internal/region"
)

const defaultChangedBy = "system"

// regionAssembly is the per-region part of a configuration snapshot.
type regionAssembly struct {
	region   region.Region
	view     RegionView
	policies []PolicyView
}

// GetConfiguration assembles the unified view of every region's configuration,
// its policies and live statistics, plus the redacted global settings.
func (s *Service) GetConfiguration(ctx context.Context) (*ConfigurationSnapshot, error) {
	pl := concpool.NewWithResults[regionAssembly]().
		WithMaxGoroutines(s.opts.MaxConcurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, r := range region.All() {
		pl.Go(func(ctx context.Context) (regionAssembly, error) {
			return s.assembleRegion(ctx, r)
		})
	}

	assembled, err := pl.Wait()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to assemble cache configuration", "err", err)
		return nil, err
	}

	sort.Slice(assembled, func(i, j int) bool {
		return assembled[i].region < assembled[j].region
	})

	stats, err := s.GetStatistics(ctx, "")
	if err != nil {
		return nil, err
	}

	snapshot := &ConfigurationSnapshot{
		Regions:    make([]RegionView, 0, len(assembled)),
		Policies:   []PolicyView{},
		Statistics: stats,
		Global:     s.globalConfiguration(),
		Timestamp:  s.now().UTC(),
	}
	for _, a := range assembled {
		snapshot.Regions = append(snapshot.Regions, a.view)
		snapshot.Policies = append(snapshot.Policies, a.policies...)
	}

	return snapshot, nil
}

func (s *Service) assembleRegion(ctx context.Context, r region.Region) (regionAssembly, error) {
	cfg, err := s.loadRegionConfiguration(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load region configuration", "region", r.String(), "err", err)
		return regionAssembly{}, err
	}

	policies, err := s.policies.GetPoliciesForRegion(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load region policies", "region", r.String(), "err", err)
		return regionAssembly{}, err
	}

	stats, err := s.engine.GetRegionStatistics(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get region statistics", "region", r.String(), "err", err)
		return regionAssembly{}, err
	}

	status := RegionStatusIdle
	if stats.HasTraffic() {
		status = RegionStatusHealthy
	}
	regionType := RegionTypeMemory
	if cfg.UseDistributedCache {
		regionType = RegionTypeDistributed
	}

	views := make([]PolicyView, 0, len(policies))
	for _, p := range policies {
		description := p.Description
		if description == "" {
			description = fmt.Sprintf("%s policy for %s", p.Kind, r.DisplayName())
		}
		views = append(views, PolicyView{
			Name:        p.Name,
			Region:      r.String(),
			Kind:        p.Kind,
			TTLSeconds:  int64(cfg.DefaultTTL / time.Second),
			MaxSize:     cfg.MaxEntries,
			Strategy:    cfg.EvictionPolicy,
			Enabled:     p.Enabled,
			Description: description,
		})
	}

	return regionAssembly{
		region: r,
		view: RegionView{
			ID:                 r.String(),
			DisplayName:        r.DisplayName(),
			Status:             status,
			Type:               regionType,
			Enabled:            cfg.Enabled,
			Sensitive:          r.Sensitive(),
			DefaultTTLSeconds:  int64(cfg.DefaultTTL / time.Second),
			MaxEntries:         cfg.MaxEntries,
			EvictionPolicy:     cfg.EvictionPolicy,
			CompressionEnabled: cfg.CompressionEnabled,
			EntryCount:         stats.EntryCount,
			HitRate:            stats.HitRate(),
			MemoryUsage:        FormatSize(stats.TotalSizeBytes),
		},
		policies: views,
	}, nil
}

func (s *Service) globalConfiguration() GlobalConfiguration {
	maxMemory := "N/A"
	if s.opts.MemoryLimitBytes > 0 {
		maxMemory = FormatSize(s.opts.MemoryLimitBytes)
	}

	return GlobalConfiguration{
		Engine:                    s.opts.Global.Engine,
		DistributedBackend:        s.opts.Global.DistributedBackend,
		MaxMemory:                 maxMemory,
		DefaultTTLSeconds:         int64(s.opts.Defaults.DefaultTTL / time.Second),
		DefaultMaxEntries:         s.opts.Defaults.MaxEntries,
		DefaultEvictionPolicy:     s.opts.Defaults.EvictionPolicy,
		DefaultCompressionEnabled: s.opts.Defaults.CompressionEnabled,
		RedisConnection:           redact(s.opts.Global.RedisConnection),
		DatabaseConnection:        redact(s.opts.Global.DatabaseConnection),
	}
}

// redact masks a connection string. Unset values stay empty so callers can
// tell that nothing is configured.
func redact(value string) string {
	if value == "" {
		return ""
	}
	return RedactedValue
}

// UpdateConfiguration applies a configuration update to one region, or to every
// region when ApplyGlobally is set. A global update stops at the first failing
// region; regions updated before it keep their new configuration. Exactly one
// change event is published after all side effects succeed.
func (s *Service) UpdateConfiguration(ctx context.Context, req UpdateConfigurationRequest) error {
	if req.DefaultTTLSeconds != nil {
		if err := validateTTL("default ttl", *req.DefaultTTLSeconds); err != nil {
			return err
		}
	}

	var targets []region.Region
	var label, reason string

	switch {
	case req.ApplyGlobally:
		targets = region.All()
		label = GlobalRegion
		reason = "Global cache configuration update"
	case strings.TrimSpace(req.RegionID) == "":
		return adminErrors.NewInvalidArgument("region", req.RegionID, "a region is required unless the update applies globally")
	default:
		r, err := region.Parse(req.RegionID)
		if err != nil {
			return err
		}
		targets = []region.Region{r}
		label = r.String()
		reason = fmt.Sprintf("Cache configuration update for region %s", r)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	changedBy := req.ChangedBy
	if changedBy == "" {
		changedBy = defaultChangedBy
	}

	// Once started the pass runs to completion or to the first failure.
	runCtx := context.WithoutCancel(ctx)
	for _, r := range targets {
		if err := s.applyRegionUpdate(runCtx, r, req, changedBy, reason); err != nil {
			s.logger.ErrorContext(ctx, "Failed to update cache configuration",
				"region", r.String(),
				"apply_globally", req.ApplyGlobally,
				"err", err)
			return err
		}
	}

	s.logger.InfoContext(ctx, "Cache configuration updated",
		"region", label,
		"changed_by", changedBy,
		"clear_affected_caches", req.ClearAffectedCaches)

	return s.publish(runCtx, label, changedBy, reason)
}

func (s *Service) applyRegionUpdate(ctx context.Context, r region.Region, req UpdateConfigurationRequest, changedBy, reason string) error {
	cfg, err := s.loadRegionConfiguration(ctx, r)
	if err != nil {
		return err
	}

	if req.DefaultTTLSeconds != nil {
		cfg.DefaultTTL = time.Duration(*req.DefaultTTLSeconds) * time.Second
	}
	if req.EvictionPolicy != nil {
		cfg.EvictionPolicy = *req.EvictionPolicy
	}
	if req.CompressionEnabled != nil {
		cfg.CompressionEnabled = *req.CompressionEnabled
	}

	if err := s.store.UpdateConfiguration(ctx, r.String(), cfg, changedBy, reason); err != nil {
		return err
	}

	if req.ClearAffectedCaches {
		if err := s.engine.ClearRegion(ctx, r); err != nil {
			return err
		}
	}

	return nil
}

// UpdatePolicy persists a policy-level change as a region configuration
// update. It publishes no change event; the engine picks the new settings up
// on its next settings sync.
func (s *Service) UpdatePolicy(ctx context.Context, regionID string, update PolicyUpdate) error {
	r, err := region.Parse(regionID)
	if err != nil {
		return err
	}
	if update.TTLSeconds != nil {
		if err := validateTTL("ttl", *update.TTLSeconds); err != nil {
			return err
		}
	}
	if update.MaxSize != nil && *update.MaxSize < 0 {
		return adminErrors.NewInvalidArgument("max size", fmt.Sprint(*update.MaxSize), "must not be negative")
	}

	cfg, err := s.loadRegionConfiguration(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load region configuration", "region", r.String(), "err", err)
		return err
	}

	if update.TTLSeconds != nil {
		cfg.DefaultTTL = time.Duration(*update.TTLSeconds) * time.Second
	}
	if update.MaxSize != nil {
		cfg.MaxEntries = *update.MaxSize
	}
	if update.Strategy != nil {
		cfg.EvictionPolicy = *update.Strategy
	}

	changedBy := update.ChangedBy
	if changedBy == "" {
		changedBy = defaultChangedBy
	}
	reason := update.Reason
	if reason == "" {
		reason = fmt.Sprintf("Policy update for region %s", r)
	}

	if err := s.store.UpdateConfiguration(ctx, r.String(), cfg, changedBy, reason); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update cache policy", "region", r.String(), "err", err)
		return err
	}

	s.logger.InfoContext(ctx, "Cache policy updated", "region", r.String(), "changed_by", changedBy)
	return nil
}

// maxTTLSeconds is the largest TTL that still fits in a time.Duration.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

func validateTTL(field string, seconds int64) error {
	switch {
	case seconds < 0:
		return adminErrors.NewInvalidArgument(field, fmt.Sprint(seconds), "must not be negative")
	case seconds > maxTTLSeconds:
		return adminErrors.NewInvalidArgument(field, fmt.Sprint(seconds), fmt.Sprintf("must not exceed %d seconds", maxTTLSeconds))
	}
	return nil
}

func (s *Service) publish(ctx context.Context, regionLabel, changedBy, reason string) error {
	event := ConfigurationChangeEvent{
		ID:        uuid.NewString(),
		Region:    regionLabel,
		ChangedBy: changedBy,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish configuration change", "region", regionLabel, "err", err)
		return err
	}
	return nil
}
