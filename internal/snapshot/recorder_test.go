package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/database"
	"github.com/conduitllm/admin/internal/region"
)

type fixedSource map[region.Region]cachemgmt.RegionStatistics

func (s fixedSource) GetAllStatistics(context.Context) (map[region.Region]cachemgmt.RegionStatistics, error) {
	return s, nil
}

type failingSource struct{ err error }

func (s failingSource) GetAllStatistics(context.Context) (map[region.Region]cachemgmt.RegionStatistics, error) {
	return nil, s.err
}

type memoryStore struct {
	inserted [][]*database.StatisticsSnapshot
	cutoffs  []time.Time
}

func (m *memoryStore) InsertSnapshots(_ context.Context, s []*database.StatisticsSnapshot) error {
	m.inserted = append(m.inserted, s)
	return nil
}

func (m *memoryStore) DeleteSnapshotsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.cutoffs = append(m.cutoffs, cutoff)
	return 0, nil
}

type countingReloader struct{ calls int }

func (c *countingReloader) Reload(context.Context, cachemgmt.ConfigurationStore, ...region.Region) error {
	c.calls++
	return nil
}

var capturedAt = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

func TestRecorder_Capture(t *testing.T) {
	source := fixedSource{
		region.ModelCosts:  {HitCount: 9, MissCount: 1, EntryCount: 3, TotalSizeBytes: 300, AverageGetTime: 250 * time.Microsecond},
		region.VirtualKeys: {HitCount: 4, SetCount: 2},
	}
	store := &memoryStore{}

	rec := NewRecorder(source, store, nil, nil, Config{Retention: 24 * time.Hour}, nil)
	rec.now = func() time.Time { return capturedAt }

	require.NoError(t, rec.Capture(t.Context()))

	require.Len(t, store.inserted, 1)
	batch := store.inserted[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "ModelCosts", batch[0].Region)
	assert.Equal(t, int64(9), batch[0].HitCount)
	assert.Equal(t, int64(250), batch[0].AvgGetMicros)
	assert.Equal(t, capturedAt, batch[0].CapturedAt)
	assert.Equal(t, "VirtualKeys", batch[1].Region)

	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, capturedAt.Add(-24*time.Hour), store.cutoffs[0])
	assert.Equal(t, int64(1), rec.Captures())
}

func TestRecorder_CaptureWithoutRetentionKeepsEverything(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(fixedSource{}, store, nil, nil, Config{}, nil)

	require.NoError(t, rec.Capture(t.Context()))
	assert.Empty(t, store.cutoffs)
}

func TestRecorder_CaptureSourceError(t *testing.T) {
	boom := errors.New("engine unavailable")
	store := &memoryStore{}
	rec := NewRecorder(failingSource{err: boom}, store, nil, nil, Config{}, nil)

	err := rec.Capture(t.Context())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.inserted)
}

func TestRecorder_SyncSettings(t *testing.T) {
	reloader := &countingReloader{}
	db := openDB(t)

	rec := NewRecorder(fixedSource{}, db.Snapshots, reloader, db.RegionConfigs, Config{}, nil)
	require.NoError(t, rec.SyncSettings(t.Context()))
	assert.Equal(t, 1, reloader.calls)

	// Without an engine the sync is a no-op.
	noop := NewRecorder(fixedSource{}, db.Snapshots, nil, nil, Config{}, nil)
	assert.NoError(t, noop.SyncSettings(t.Context()))
}

func TestRecorder_StartRejectsInvalidSchedule(t *testing.T) {
	rec := NewRecorder(fixedSource{}, &memoryStore{}, nil, nil, Config{Schedule: "not a schedule"}, nil)
	assert.Error(t, rec.Start(t.Context()))
}

func TestRecorder_StartStop(t *testing.T) {
	rec := NewRecorder(fixedSource{}, &memoryStore{}, &countingReloader{}, nil, Config{
		Schedule:     "@every 1h",
		SettingsSync: "@every 5m",
	}, nil)

	require.NoError(t, rec.Start(t.Context()))
	assert.Error(t, rec.Start(t.Context()), "second start should fail")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rec.Stop(ctx))
	assert.NoError(t, rec.Stop(ctx))
}

func TestRecorder_CaptureIntoDatabase(t *testing.T) {
	db := openDB(t)
	source := fixedSource{region.Embeddings: {HitCount: 7, EntryCount: 2, TotalSizeBytes: 2048}}

	rec := NewRecorder(source, db.Snapshots, nil, nil, Config{Retention: time.Hour}, nil)
	rec.now = func() time.Time { return capturedAt }
	require.NoError(t, rec.Capture(t.Context()))

	rows, err := db.Snapshots.ListSnapshots(t.Context(), "Embeddings", capturedAt.Add(-time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].HitCount)
	assert.Equal(t, int64(2048), rows[0].TotalSizeBytes)
}

func openDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(t.Context(), database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "snapshots.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
