package engine

import (
	"context"
	"time"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

// record is a stored cache value with its bookkeeping.
type record struct {
	Value          []byte    `json:"value"`
	Compressed     bool      `json:"compressed"`
	Size           int64     `json:"size"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	AccessCount    int64     `json:"access_count"`
	Priority       int       `json:"priority"`
}

func (r *record) expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

func (r *record) rawEntry(key string) cachemgmt.RawEntry {
	entry := cachemgmt.RawEntry{
		Key:            key,
		SizeBytes:      r.Size,
		CreatedAt:      r.CreatedAt,
		LastAccessedAt: r.LastAccessedAt,
		AccessCount:    r.AccessCount,
		Priority:       r.Priority,
	}
	if !r.ExpiresAt.IsZero() {
		expiresAt := r.ExpiresAt
		entry.ExpiresAt = &expiresAt
	}
	return entry
}

// store holds the entries of one region.
type store interface {
	// get returns nil when the key is absent. expired reports that the key was
	// present but past its expiry and has been dropped.
	get(ctx context.Context, key string, now time.Time) (rec *record, expired bool, err error)
	// put returns the number of entries evicted to make room.
	put(ctx context.Context, key string, rec *record) (evicted int, err error)
	remove(ctx context.Context, key string) (bool, error)
	touch(ctx context.Context, key string, expiresAt, now time.Time) (bool, error)
	clear(ctx context.Context) error
	entries(ctx context.Context, skip, take int, now time.Time) ([]cachemgmt.RawEntry, error)
	usage(ctx context.Context, now time.Time) (count, bytes int64, err error)
	// resize changes the capacity and returns the number of entries evicted.
	resize(size int) int
	kind() string
}
