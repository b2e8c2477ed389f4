package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/region"
)

// partition is one region's store together with its settings and counters.
// Counters are cumulative and survive clears and reconfiguration.
type partition struct {
	region region.Region

	mu       sync.RWMutex
	settings Settings
	store    store

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64

	getNanos atomic.Int64
	getOps   atomic.Int64
	setNanos atomic.Int64
	setOps   atomic.Int64
}

func (p *partition) current() (Settings, store) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings, p.store
}

func (p *partition) observeGet(elapsed time.Duration) {
	p.getNanos.Add(int64(elapsed))
	p.getOps.Add(1)
}

func (p *partition) observeSet(elapsed time.Duration) {
	p.setNanos.Add(int64(elapsed))
	p.setOps.Add(1)
}

func (p *partition) counters() cachemgmt.RegionStatistics {
	stats := cachemgmt.RegionStatistics{
		HitCount:      p.hits.Load(),
		MissCount:     p.misses.Load(),
		SetCount:      p.sets.Load(),
		EvictionCount: p.evictions.Load(),
	}
	if n := p.getOps.Load(); n > 0 {
		stats.AverageGetTime = time.Duration(p.getNanos.Load() / n)
	}
	if n := p.setOps.Load(); n > 0 {
		stats.AverageSetTime = time.Duration(p.setNanos.Load() / n)
	}
	return stats
}
