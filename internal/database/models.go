package database

import (
	"time"
)

// RegionConfigRecord is a persisted region configuration row
type RegionConfigRecord struct {
	Region              string    `db:"region"`
	Enabled             bool      `db:"enabled"`
	DefaultTTLSeconds   int64     `db:"default_ttl_seconds"`
	MaxEntries          int64     `db:"max_entries"`
	EvictionPolicy      string    `db:"eviction_policy"`
	CompressionEnabled  bool      `db:"compression_enabled"`
	UseDistributedCache bool      `db:"use_distributed_cache"`
	UpdatedBy           string    `db:"updated_by"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// ConfigAuditEntry records one change of a region configuration.
// OldValue and NewValue hold the JSON-encoded configuration.
type ConfigAuditEntry struct {
	ID        int64     `db:"id" json:"id"`
	Region    string    `db:"region" json:"region"`
	ChangedBy string    `db:"changed_by" json:"changed_by"`
	Reason    string    `db:"reason" json:"reason"`
	OldValue  *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue  string    `db:"new_value" json:"new_value"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
}

// StatisticsSnapshot is a point-in-time copy of one region's counters
type StatisticsSnapshot struct {
	ID             int64     `db:"id" json:"id"`
	Region         string    `db:"region" json:"region"`
	HitCount       int64     `db:"hit_count" json:"hit_count"`
	MissCount      int64     `db:"miss_count" json:"miss_count"`
	SetCount       int64     `db:"set_count" json:"set_count"`
	EvictionCount  int64     `db:"eviction_count" json:"eviction_count"`
	EntryCount     int64     `db:"entry_count" json:"entry_count"`
	TotalSizeBytes int64     `db:"total_size_bytes" json:"total_size_bytes"`
	AvgGetMicros   int64     `db:"avg_get_micros" json:"avg_get_micros"`
	AvgSetMicros   int64     `db:"avg_set_micros" json:"avg_set_micros"`
	CapturedAt     time.Time `db:"captured_at" json:"captured_at"`
}
