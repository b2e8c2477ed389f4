package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

const defaultAuditLimit = 50

// RegionConfigRepository persists region configuration with an audit trail.
// It implements cachemgmt.ConfigurationStore.
type RegionConfigRepository struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// NewRegionConfigRepository creates a new region configuration repository
func NewRegionConfigRepository(db *sql.DB, dialect string) *RegionConfigRepository {
	return &RegionConfigRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *RegionConfigRepository) q(query string) string {
	return rebind(r.dialect, query)
}

// GetConfiguration returns the configuration of a region, or nil when the
// region has never been configured
func (r *RegionConfigRepository) GetConfiguration(ctx context.Context, regionName string) (*cachemgmt.RegionConfiguration, error) {
	record, err := r.getRecord(ctx, r.db, regionName)
	if err != nil || record == nil {
		return nil, err
	}

	cfg := record.configuration()
	return &cfg, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *RegionConfigRepository) getRecord(ctx context.Context, db queryRower, regionName string) (*RegionConfigRecord, error) {
	query := `
		SELECT region, enabled, default_ttl_seconds, max_entries, eviction_policy,
		       compression_enabled, use_distributed_cache, updated_by, created_at, updated_at
		FROM cache_region_configs
		WHERE region = ?
	`

	var rec RegionConfigRecord
	err := db.QueryRowContext(ctx, r.q(query), regionName).Scan(
		&rec.Region, &rec.Enabled, &rec.DefaultTTLSeconds, &rec.MaxEntries, &rec.EvictionPolicy,
		&rec.CompressionEnabled, &rec.UseDistributedCache, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get region configuration: %w", err)
	}

	return &rec, nil
}

// UpdateConfiguration upserts the configuration of a region and records an
// audit entry in the same transaction. Lock contention is retried.
func (r *RegionConfigRepository) UpdateConfiguration(ctx context.Context, regionName string, cfg cachemgmt.RegionConfiguration, changedBy, reason string) error {
	return withContentionRetry(ctx, func() error {
		return r.update(ctx, regionName, cfg, changedBy, reason)
	})
}

func (r *RegionConfigRepository) update(ctx context.Context, regionName string, cfg cachemgmt.RegionConfiguration, changedBy, reason string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	previous, err := r.getRecord(ctx, tx, regionName)
	if err != nil {
		return err
	}

	var oldValue *string
	if previous != nil {
		encoded, err := encodeConfiguration(previous.configuration())
		if err != nil {
			return err
		}
		oldValue = &encoded
	}

	newValue, err := encodeConfiguration(cfg)
	if err != nil {
		return err
	}

	now := r.now().UTC()

	upsert := `
		INSERT INTO cache_region_configs (
			region, enabled, default_ttl_seconds, max_entries, eviction_policy,
			compression_enabled, use_distributed_cache, updated_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(region) DO UPDATE SET
			enabled = excluded.enabled,
			default_ttl_seconds = excluded.default_ttl_seconds,
			max_entries = excluded.max_entries,
			eviction_policy = excluded.eviction_policy,
			compression_enabled = excluded.compression_enabled,
			use_distributed_cache = excluded.use_distributed_cache,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, r.q(upsert),
		regionName, cfg.Enabled, int64(cfg.DefaultTTL/time.Second), cfg.MaxEntries, cfg.EvictionPolicy,
		cfg.CompressionEnabled, cfg.UseDistributedCache, changedBy, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save region configuration: %w", err)
	}

	audit := `
		INSERT INTO cache_config_audit (region, changed_by, reason, old_value, new_value, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, r.q(audit), regionName, changedBy, reason, oldValue, newValue, now); err != nil {
		return fmt.Errorf("failed to record configuration audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit region configuration: %w", err)
	}
	return nil
}

// ListConfigurations returns every persisted configuration keyed by region name
func (r *RegionConfigRepository) ListConfigurations(ctx context.Context) (map[string]cachemgmt.RegionConfiguration, error) {
	query := `
		SELECT region, enabled, default_ttl_seconds, max_entries, eviction_policy,
		       compression_enabled, use_distributed_cache, updated_by, created_at, updated_at
		FROM cache_region_configs
		ORDER BY region
	`

	rows, err := r.db.QueryContext(ctx, r.q(query))
	if err != nil {
		return nil, fmt.Errorf("failed to list region configurations: %w", err)
	}
	defer rows.Close()

	configs := make(map[string]cachemgmt.RegionConfiguration)
	for rows.Next() {
		var rec RegionConfigRecord
		if err := rows.Scan(
			&rec.Region, &rec.Enabled, &rec.DefaultTTLSeconds, &rec.MaxEntries, &rec.EvictionPolicy,
			&rec.CompressionEnabled, &rec.UseDistributedCache, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan region configuration: %w", err)
		}
		configs[rec.Region] = rec.configuration()
	}

	return configs, rows.Err()
}

// ListAudit returns the most recent audit entries of a region, newest first
func (r *RegionConfigRepository) ListAudit(ctx context.Context, regionName string, limit int) ([]*ConfigAuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	query := `
		SELECT id, region, changed_by, reason, old_value, new_value, changed_at
		FROM cache_config_audit
		WHERE region = ?
		ORDER BY changed_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), regionName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list configuration audit: %w", err)
	}
	defer rows.Close()

	entries := []*ConfigAuditEntry{}
	for rows.Next() {
		var e ConfigAuditEntry
		if err := rows.Scan(&e.ID, &e.Region, &e.ChangedBy, &e.Reason, &e.OldValue, &e.NewValue, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan configuration audit: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func (rec *RegionConfigRecord) configuration() cachemgmt.RegionConfiguration {
	return cachemgmt.RegionConfiguration{
		Enabled:             rec.Enabled,
		DefaultTTL:          time.Duration(rec.DefaultTTLSeconds) * time.Second,
		MaxEntries:          rec.MaxEntries,
		EvictionPolicy:      rec.EvictionPolicy,
		CompressionEnabled:  rec.CompressionEnabled,
		UseDistributedCache: rec.UseDistributedCache,
	}
}

// auditValue is the JSON form stored in the audit trail.
type auditValue struct {
	Enabled             bool   `json:"enabled"`
	DefaultTTLSeconds   int64  `json:"default_ttl_seconds"`
	MaxEntries          int64  `json:"max_entries"`
	EvictionPolicy      string `json:"eviction_policy"`
	CompressionEnabled  bool   `json:"compression_enabled"`
	UseDistributedCache bool   `json:"use_distributed_cache"`
}

func encodeConfiguration(cfg cachemgmt.RegionConfiguration) (string, error) {
	data, err := json.Marshal(auditValue{
		Enabled:             cfg.Enabled,
		DefaultTTLSeconds:   int64(cfg.DefaultTTL / time.Second),
		MaxEntries:          cfg.MaxEntries,
		EvictionPolicy:      cfg.EvictionPolicy,
		CompressionEnabled:  cfg.CompressionEnabled,
		UseDistributedCache: cfg.UseDistributedCache,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	return string(data), nil
}

var _ cachemgmt.ConfigurationStore = (*RegionConfigRepository)(nil)
