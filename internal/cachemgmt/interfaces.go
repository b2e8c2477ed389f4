//go:generate mockgen -source=./interfaces.go -destination=./interfaces_mock.go -package=cachemgmt

package cachemgmt

import (
	"context"
	"time"

	"github.com/conduitllm/admin/internal/region"
)

// CacheEngine performs the actual cache work and reports raw per-region
// counters. Eviction, TTL enforcement and cross-node coherence belong to the
// engine; this package only orchestrates it.
type CacheEngine interface {
	GetRegionStatistics(ctx context.Context, r region.Region) (RegionStatistics, error)
	GetAllStatistics(ctx context.Context) (map[region.Region]RegionStatistics, error)
	ClearRegion(ctx context.Context, r region.Region) error
	ClearAll(ctx context.Context) error
	GetEntries(ctx context.Context, r region.Region, skip, take int) ([]RawEntry, error)
	// Refresh extends the lifetime of a single entry. A nil ttl keeps the
	// region's configured TTL. It returns false when the key is not present.
	Refresh(ctx context.Context, key string, r region.Region, ttl *time.Duration) (bool, error)
}

// PolicyEngine supplies the named policies applicable to a region.
type PolicyEngine interface {
	GetPoliciesForRegion(ctx context.Context, r region.Region) ([]Policy, error)
}

// ConfigurationStore persists per-region configuration keyed by region name,
// keeping an audit trail of who changed it and why.
type ConfigurationStore interface {
	// GetConfiguration returns nil, nil when the region has never been configured.
	GetConfiguration(ctx context.Context, regionName string) (*RegionConfiguration, error)
	UpdateConfiguration(ctx context.Context, regionName string, cfg RegionConfiguration, changedBy, reason string) error
}

// EventPublisher broadcasts configuration changes.
type EventPublisher interface {
	Publish(ctx context.Context, event ConfigurationChangeEvent) error
}
