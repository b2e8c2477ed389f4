// Package snapshot periodically records region statistics and keeps the
// engine in sync with persisted region settings.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/database"
	"github.com/conduitllm/admin/internal/region"
)

// StatisticsSource supplies the statistics to record.
type StatisticsSource interface {
	GetAllStatistics(ctx context.Context) (map[region.Region]cachemgmt.RegionStatistics, error)
}

// Store persists snapshots.
type Store interface {
	InsertSnapshots(ctx context.Context, snapshots []*database.StatisticsSnapshot) error
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Reloader applies persisted region configuration to the engine.
type Reloader interface {
	Reload(ctx context.Context, store cachemgmt.ConfigurationStore, regions ...region.Region) error
}

// Config configures a Recorder.
type Config struct {
	// Schedule is a cron spec for statistics capture. Empty disables capture.
	Schedule string
	// Retention is how long snapshots are kept. Zero keeps them forever.
	Retention time.Duration
	// SettingsSync is a cron spec for reloading region settings. Empty disables it.
	SettingsSync string
}

// Recorder runs the snapshot and settings sync jobs.
type Recorder struct {
	source   StatisticsSource
	store    Store
	engine   Reloader
	configs  cachemgmt.ConfigurationStore
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	captures int64
}

// NewRecorder creates a recorder. engine and configs may be nil when
// settings sync is disabled.
func NewRecorder(source StatisticsSource, store Store, engine Reloader, configs cachemgmt.ConfigurationStore, cfg Config, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "snapshot-recorder")

	return &Recorder{
		source:  source,
		store:   store,
		engine:  engine,
		configs: configs,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		cron: cron.New(
			cron.WithLogger(cronLogger{logger}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
	}
}

// Start schedules the configured jobs. It returns an error for an invalid
// cron spec.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("snapshot recorder already running")
	}

	if r.cfg.Schedule != "" {
		if _, err := r.cron.AddFunc(r.cfg.Schedule, func() {
			if err := r.Capture(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Statistics snapshot failed", "err", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid snapshot schedule %q: %w", r.cfg.Schedule, err)
		}
	}

	if r.cfg.SettingsSync != "" && r.engine != nil && r.configs != nil {
		if _, err := r.cron.AddFunc(r.cfg.SettingsSync, func() {
			if err := r.SyncSettings(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Settings sync failed", "err", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid settings sync schedule %q: %w", r.cfg.SettingsSync, err)
		}
	}

	r.cron.Start()
	r.running = true
	r.logger.InfoContext(ctx, "Snapshot recorder started",
		"schedule", r.cfg.Schedule,
		"settings_sync", r.cfg.SettingsSync,
		"retention", r.cfg.Retention)
	return nil
}

// Stop stops scheduling and waits for running jobs to finish or ctx to end.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Capture records the current statistics of every region and prunes
// snapshots older than the retention.
func (r *Recorder) Capture(ctx context.Context) error {
	all, err := r.source.GetAllStatistics(ctx)
	if err != nil {
		return fmt.Errorf("read statistics: %w", err)
	}

	now := r.now().UTC()
	snapshots := make([]*database.StatisticsSnapshot, 0, len(all))
	for reg, stats := range all {
		snapshots = append(snapshots, &database.StatisticsSnapshot{
			Region:         reg.String(),
			HitCount:       stats.HitCount,
			MissCount:      stats.MissCount,
			SetCount:       stats.SetCount,
			EvictionCount:  stats.EvictionCount,
			EntryCount:     stats.EntryCount,
			TotalSizeBytes: stats.TotalSizeBytes,
			AvgGetMicros:   stats.AverageGetTime.Microseconds(),
			AvgSetMicros:   stats.AverageSetTime.Microseconds(),
			CapturedAt:     now,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Region < snapshots[j].Region })

	if err := r.store.InsertSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}

	r.mu.Lock()
	r.captures++
	r.mu.Unlock()

	if r.cfg.Retention > 0 {
		deleted, err := r.store.DeleteSnapshotsBefore(ctx, now.Add(-r.cfg.Retention))
		if err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
		if deleted > 0 {
			r.logger.DebugContext(ctx, "Pruned statistics snapshots", "deleted", deleted)
		}
	}

	return nil
}

// SyncSettings reloads every region's persisted configuration into the engine.
func (r *Recorder) SyncSettings(ctx context.Context) error {
	if r.engine == nil || r.configs == nil {
		return nil
	}
	return r.engine.Reload(ctx, r.configs)
}

// Captures returns how many snapshot batches were stored.
func (r *Recorder) Captures() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.captures
}

// cronLogger adapts slog to the cron logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
