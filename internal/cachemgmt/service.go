// Package cachemgmt is the cache management facade of the admin control plane.
// It aggregates engine statistics, assembles the unified configuration view,
// applies configuration updates and runs operational commands. It keeps no
// cache state of its own; everything flows through its collaborators.
package cachemgmt

import (
	"context"
	"log/slog"
	"time"

	"github.com/conduitllm/admin/internal/region"
)

// Heuristics used to estimate figures the engine does not measure. The derived
// values are rough presentation estimates, never measurements.
const (
	latencyWithoutCacheFactor = 20
	peakMemoryFactor          = 1.5
)

// Options configures a Service.
type Options struct {
	// Defaults is the configuration used for regions that were never configured.
	Defaults RegionConfiguration
	// MemoryLimitBytes is the global memory limit reported in statistics. Zero
	// or less reports the limit as unavailable.
	MemoryLimitBytes int64
	// Global holds engine-wide settings; connection strings are redacted on output.
	Global GlobalSettings
	// MaxConcurrency bounds the per-region fan-out when assembling configuration.
	MaxConcurrency int
	Logger         *slog.Logger
	Now            func() time.Time
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Defaults: RegionConfiguration{
			Enabled:        true,
			DefaultTTL:     time.Hour,
			MaxEntries:     10000,
			EvictionPolicy: "LRU",
		},
		MemoryLimitBytes: 1 << 30,
		Global: GlobalSettings{
			Engine: "memory",
		},
		MaxConcurrency: 4,
	}
}

// Service implements the cache management operations.
type Service struct {
	engine    CacheEngine
	policies  PolicyEngine
	store     ConfigurationStore
	publisher EventPublisher
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a cache management service over the given collaborators.
func NewService(engine CacheEngine, policies PolicyEngine, store ConfigurationStore, publisher EventPublisher, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	if opts.Defaults == (RegionConfiguration{}) {
		opts.Defaults = DefaultOptions().Defaults
	}

	return &Service{
		engine:    engine,
		policies:  policies,
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger.With("component", "cache-management"),
		now:       now,
	}
}

// loadRegionConfiguration returns the persisted configuration of a region, or
// a copy of the defaults when the region has never been configured.
func (s *Service) loadRegionConfiguration(ctx context.Context, r region.Region) (RegionConfiguration, error) {
	cfg, err := s.store.GetConfiguration(ctx, r.String())
	if err != nil {
		return RegionConfiguration{}, err
	}
	if cfg == nil {
		defaults := s.opts.Defaults
		defaults.Enabled = true
		return defaults, nil
	}
	return *cfg, nil
}
