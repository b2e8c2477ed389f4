package slogutil

import (
	"log/slog"
	"sync/atomic"
)

// DynamicLeveler is a slog.Leveler whose level can change while loggers use it.
type DynamicLeveler struct {
	level atomic.Int64
}

// NewDynamicLeveler creates a leveler starting at level.
func NewDynamicLeveler(level slog.Level) *DynamicLeveler {
	dl := &DynamicLeveler{}
	dl.SetLevel(level)
	return dl
}

// Level returns the current logging level.
func (dl *DynamicLeveler) Level() slog.Level {
	return slog.Level(dl.level.Load())
}

// SetLevel updates the logging level.
func (dl *DynamicLeveler) SetLevel(level slog.Level) {
	dl.level.Store(int64(level))
}
