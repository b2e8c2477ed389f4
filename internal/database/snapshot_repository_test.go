package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository(t *testing.T) {
	db := newTestDB(t)
	repo := db.Snapshots
	ctx := t.Context()

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	var batch []*StatisticsSnapshot
	for i := range 3 {
		at := base.Add(time.Duration(i) * time.Hour)
		batch = append(batch,
			&StatisticsSnapshot{Region: "VirtualKeys", HitCount: int64(10 * i), CapturedAt: at},
			&StatisticsSnapshot{Region: "ModelCosts", MissCount: int64(i), CapturedAt: at},
		)
	}
	require.NoError(t, repo.InsertSnapshots(ctx, batch))
	require.NoError(t, repo.InsertSnapshots(ctx, nil))

	all, err := repo.ListSnapshots(ctx, "", base, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	vk, err := repo.ListSnapshots(ctx, "VirtualKeys", base.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, vk, 2)
	assert.Equal(t, int64(20), vk[0].HitCount)
	assert.True(t, vk[0].CapturedAt.Equal(base.Add(2*time.Hour)))
	assert.Equal(t, int64(10), vk[1].HitCount)

	limited, err := repo.ListSnapshots(ctx, "", base, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	deleted, err := repo.DeleteSnapshotsBefore(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	remaining, err := repo.ListSnapshots(ctx, "", base, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
