package cachemgmt

import (
	"time"
)

// RegionStatistics holds the raw counters the engine keeps for one region.
type RegionStatistics struct {
	HitCount       int64         `json:"hit_count"`
	MissCount      int64         `json:"miss_count"`
	SetCount       int64         `json:"set_count"`
	EvictionCount  int64         `json:"eviction_count"`
	AverageGetTime time.Duration `json:"average_get_time"`
	AverageSetTime time.Duration `json:"average_set_time"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	EntryCount     int64         `json:"entry_count"`
}

// HasTraffic reports whether the region has served any lookup.
func (s RegionStatistics) HasTraffic() bool {
	return s.HitCount+s.MissCount > 0
}

// HitRate returns hits/(hits+misses) as a percentage, 0 without traffic.
func (s RegionStatistics) HitRate() float64 {
	return percentage(s.HitCount, s.HitCount+s.MissCount)
}

// EvictionRate returns evictions/(hits+misses+sets) as a percentage.
func (s RegionStatistics) EvictionRate() float64 {
	return percentage(s.EvictionCount, s.HitCount+s.MissCount+s.SetCount)
}

// RawEntry describes one cached entry as reported by the engine.
type RawEntry struct {
	Key            string     `json:"key"`
	SizeBytes      int64      `json:"size_bytes"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	AccessCount    int64      `json:"access_count"`
	Priority       int        `json:"priority"`
}

// PolicyKind classifies a cache policy.
type PolicyKind string

const (
	PolicyKindTTL      PolicyKind = "TTL"
	PolicyKindSize     PolicyKind = "Size"
	PolicyKindEviction PolicyKind = "Eviction"
	PolicyKindCustom   PolicyKind = "Custom"
)

// Policy is a named rule attached to a region. It is read-only here; policy
// changes are expressed as region configuration updates.
type Policy struct {
	Name        string     `json:"name"`
	Kind        PolicyKind `json:"kind"`
	Enabled     bool       `json:"enabled"`
	Description string     `json:"description,omitempty"`
}

// RegionConfiguration is the persisted per-region configuration.
type RegionConfiguration struct {
	Enabled             bool          `json:"enabled"`
	DefaultTTL          time.Duration `json:"default_ttl"`
	MaxEntries          int64         `json:"max_entries"`
	EvictionPolicy      string        `json:"eviction_policy"`
	CompressionEnabled  bool          `json:"compression_enabled"`
	UseDistributedCache bool          `json:"use_distributed_cache"`
}

// ConfigurationChangeEvent is published once per successful configuration update.
type ConfigurationChangeEvent struct {
	ID        string    `json:"id"`
	Region    string    `json:"region"`
	ChangedBy string    `json:"changed_by"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GlobalRegion is the region label used for global updates and rollups.
const GlobalRegion = "global"

// MemoryUsage is the display form of memory consumption.
type MemoryUsage struct {
	Current      string `json:"current"`
	Peak         string `json:"peak"`
	Limit        string `json:"limit"`
	CurrentBytes int64  `json:"current_bytes"`
}

// StatisticsSnapshot is the display-ready statistics of one region or of all
// regions combined.
type StatisticsSnapshot struct {
	Region         string  `json:"region"`
	DisplayName    string  `json:"display_name"`
	TotalHits      int64   `json:"total_hits"`
	TotalMisses    int64   `json:"total_misses"`
	TotalSets      int64   `json:"total_sets"`
	TotalEvictions int64   `json:"total_evictions"`
	EntryCount     int64   `json:"entry_count"`
	HitRate        float64 `json:"hit_rate"`
	EvictionRate   float64 `json:"eviction_rate"`

	AverageGetLatencyMs float64 `json:"average_get_latency_ms"`
	AverageSetLatencyMs float64 `json:"average_set_latency_ms"`
	// EstimatedLatencyWithoutCacheMs is a rough estimate, not a measurement.
	EstimatedLatencyWithoutCacheMs float64 `json:"estimated_latency_without_cache_ms"`

	Memory     MemoryUsage `json:"memory"`
	CapturedAt time.Time   `json:"captured_at"`
}

// TopCachedItem approximates a frequently used key family. Per-key statistics
// are not tracked, so the values are region-level.
type TopCachedItem struct {
	KeyPattern           string `json:"key_pattern"`
	Region               string `json:"region"`
	HitCount             int64  `json:"hit_count"`
	AverageItemSize      string `json:"average_item_size"`
	AverageItemSizeBytes int64  `json:"average_item_size_bytes"`
}

// PolicyView is one policy joined with the region configuration it governs.
type PolicyView struct {
	Name        string     `json:"name"`
	Region      string     `json:"region"`
	Kind        PolicyKind `json:"kind"`
	TTLSeconds  int64      `json:"ttl_seconds"`
	MaxSize     int64      `json:"max_size"`
	Strategy    string     `json:"strategy"`
	Enabled     bool       `json:"enabled"`
	Description string     `json:"description"`
}

// Region status and type labels.
const (
	RegionStatusHealthy = "healthy"
	RegionStatusIdle    = "idle"

	RegionTypeDistributed = "distributed"
	RegionTypeMemory      = "memory"
)

// RegionView summarizes one region's configuration and live state.
type RegionView struct {
	ID                 string  `json:"id"`
	DisplayName        string  `json:"display_name"`
	Status             string  `json:"status"`
	Type               string  `json:"type"`
	Enabled            bool    `json:"enabled"`
	Sensitive          bool    `json:"sensitive"`
	DefaultTTLSeconds  int64   `json:"default_ttl_seconds"`
	MaxEntries         int64   `json:"max_entries"`
	EvictionPolicy     string  `json:"eviction_policy"`
	CompressionEnabled bool    `json:"compression_enabled"`
	EntryCount         int64   `json:"entry_count"`
	HitRate            float64 `json:"hit_rate"`
	MemoryUsage        string  `json:"memory_usage"`
}

// RedactedValue replaces every connection-string-like value returned to callers.
const RedactedValue = "[REDACTED]"

// GlobalSettings is the raw, unredacted engine-wide configuration.
type GlobalSettings struct {
	Engine             string
	DistributedBackend string
	RedisConnection    string
	DatabaseConnection string
}

// GlobalConfiguration is the redacted global block of a configuration snapshot.
type GlobalConfiguration struct {
	Engine                    string `json:"engine"`
	DistributedBackend        string `json:"distributed_backend"`
	MaxMemory                 string `json:"max_memory"`
	DefaultTTLSeconds         int64  `json:"default_ttl_seconds"`
	DefaultMaxEntries         int64  `json:"default_max_entries"`
	DefaultEvictionPolicy     string `json:"default_eviction_policy"`
	DefaultCompressionEnabled bool   `json:"default_compression_enabled"`
	RedisConnection           string `json:"redis_connection"`
	DatabaseConnection        string `json:"database_connection"`
}

// ConfigurationSnapshot is the unified regions x policies x statistics view.
type ConfigurationSnapshot struct {
	Regions    []RegionView        `json:"regions"`
	Policies   []PolicyView        `json:"policies"`
	Statistics *StatisticsSnapshot `json:"statistics"`
	Global     GlobalConfiguration `json:"global"`
	Timestamp  time.Time           `json:"timestamp"`
}

// UpdateConfigurationRequest carries a region or global configuration update.
// Nil fields are left untouched.
type UpdateConfigurationRequest struct {
	ApplyGlobally       bool
	RegionID            string
	DefaultTTLSeconds   *int64
	EvictionPolicy      *string
	CompressionEnabled  *bool
	ClearAffectedCaches bool
	ChangedBy           string
}

// PolicyUpdate carries a policy-level change for one region. Nil fields are
// left untouched.
type PolicyUpdate struct {
	TTLSeconds *int64
	MaxSize    *int64
	Strategy   *string
	Reason     string
	ChangedBy  string
}

// EntryView is a display-ready cache entry.
type EntryView struct {
	Key            string     `json:"key"`
	Size           string     `json:"size"`
	SizeBytes      int64      `json:"size_bytes"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	AccessCount    int64      `json:"access_count"`
	Priority       int        `json:"priority"`
}

// EntriesPage is one page of entries of a region.
type EntriesPage struct {
	Region     string      `json:"region"`
	Entries    []EntryView `json:"entries"`
	TotalCount int64       `json:"total_count"`
	Skip       int         `json:"skip"`
	Take       int         `json:"take"`
	Message    string      `json:"message,omitempty"`
}
