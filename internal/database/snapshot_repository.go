package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultSnapshotLimit = 288

// SnapshotRepository stores periodic statistics snapshots
type SnapshotRepository struct {
	db      *sql.DB
	dialect string
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, dialect string) *SnapshotRepository {
	return &SnapshotRepository{db: db, dialect: dialect}
}

// InsertSnapshots stores a batch of snapshots atomically
func (r *SnapshotRepository) InsertSnapshots(ctx context.Context, snapshots []*StatisticsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	return withContentionRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, rebind(r.dialect, `
			INSERT INTO cache_statistics_snapshots (
				region, hit_count, miss_count, set_count, eviction_count,
				entry_count, total_size_bytes, avg_get_micros, avg_set_micros, captured_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`))
		if err != nil {
			return fmt.Errorf("failed to prepare snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range snapshots {
			if _, err := stmt.ExecContext(ctx,
				s.Region, s.HitCount, s.MissCount, s.SetCount, s.EvictionCount,
				s.EntryCount, s.TotalSizeBytes, s.AvgGetMicros, s.AvgSetMicros, s.CapturedAt.UTC(),
			); err != nil {
				return fmt.Errorf("failed to insert snapshot for %s: %w", s.Region, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit snapshots: %w", err)
		}
		return nil
	})
}

// ListSnapshots returns snapshots captured at or after since, newest first.
// An empty region lists every region.
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, regionName string, since time.Time, limit int) ([]*StatisticsSnapshot, error) {
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}

	query := `
		SELECT id, region, hit_count, miss_count, set_count, eviction_count,
		       entry_count, total_size_bytes, avg_get_micros, avg_set_micros, captured_at
		FROM cache_statistics_snapshots
		WHERE captured_at >= ?
	`
	args := []any{since.UTC()}
	if regionName != "" {
		query += " AND region = ?"
		args = append(args, regionName)
	}
	query += " ORDER BY captured_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, rebind(r.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*StatisticsSnapshot{}
	for rows.Next() {
		var s StatisticsSnapshot
		if err := rows.Scan(
			&s.ID, &s.Region, &s.HitCount, &s.MissCount, &s.SetCount, &s.EvictionCount,
			&s.EntryCount, &s.TotalSizeBytes, &s.AvgGetMicros, &s.AvgSetMicros, &s.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, &s)
	}

	return snapshots, rows.Err()
}

// DeleteSnapshotsBefore removes snapshots captured before cutoff and returns
// how many were removed
func (r *SnapshotRepository) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := withContentionRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, rebind(r.dialect,
			"DELETE FROM cache_statistics_snapshots WHERE captured_at < ?"), cutoff.UTC())
		if err != nil {
			return fmt.Errorf("failed to delete snapshots: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}
