// Package engine is the in-process cache engine behind the admin control
// plane. Every region is an LRU partition with per-entry expiry; regions
// configured as distributed live in Redis when a Redis backend is available.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/region"
)

const defaultMaxEntries = 10000

// Settings is the live configuration of one region.
type Settings struct {
	Enabled     bool
	TTL         time.Duration
	MaxEntries  int
	Compression bool
	Distributed bool
}

// SettingsFromConfiguration converts a persisted region configuration.
func SettingsFromConfiguration(cfg cachemgmt.RegionConfiguration) Settings {
	return Settings{
		Enabled:     cfg.Enabled,
		TTL:         cfg.DefaultTTL,
		MaxEntries:  int(cfg.MaxEntries),
		Compression: cfg.CompressionEnabled,
		Distributed: cfg.UseDistributedCache,
	}
}

func (s Settings) capacity() int {
	if s.MaxEntries <= 0 {
		return defaultMaxEntries
	}
	return s.MaxEntries
}

// Config configures an Engine.
type Config struct {
	Defaults Settings
	// Redis is optional; without it distributed regions stay in memory.
	Redis     *redis.Client
	KeyPrefix string
	Logger    *slog.Logger
	Now       func() time.Time
}

// SetOptions overrides per-entry settings on Set.
type SetOptions struct {
	// TTL overrides the region TTL when positive.
	TTL      time.Duration
	Priority int
}

// Engine implements cachemgmt.CacheEngine.
type Engine struct {
	partitions []*partition
	redis      *redis.Client
	keyPrefix  string
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an engine with every region configured with cfg.Defaults.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "conduit:cache:"
	}

	e := &Engine{
		redis:     cfg.Redis,
		keyPrefix: prefix,
		logger:    logger.With("component", "cache-engine"),
		now:       now,
	}

	for _, r := range region.All() {
		p := &partition{region: r, settings: cfg.Defaults}
		st, err := e.newStore(r, cfg.Defaults)
		if err != nil {
			return nil, fmt.Errorf("create store for region %s: %w", r, err)
		}
		p.store = st
		e.partitions = append(e.partitions, p)
	}

	return e, nil
}

func (e *Engine) newStore(r region.Region, s Settings) (store, error) {
	if s.Distributed {
		if e.redis != nil {
			return newRedisStore(e.redis, e.keyPrefix+r.String()+":"), nil
		}
		e.logger.Warn("Distributed cache requested without a Redis backend, using memory", "region", r.String())
	}
	return newMemoryStore(s.capacity())
}

func (e *Engine) partition(r region.Region) (*partition, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown cache region %d", int(r))
	}
	return e.partitions[r], nil
}

// Get returns the value stored under key in region r.
func (e *Engine) Get(ctx context.Context, r region.Region, key string) ([]byte, bool, error) {
	p, err := e.partition(r)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	defer func() { p.observeGet(time.Since(start)) }()

	settings, st := p.current()
	if !settings.Enabled {
		p.misses.Add(1)
		return nil, false, nil
	}

	rec, expired, err := st.get(ctx, key, e.now())
	if err != nil {
		return nil, false, err
	}
	if expired {
		p.evictions.Add(1)
	}
	if rec == nil {
		p.misses.Add(1)
		return nil, false, nil
	}
	p.hits.Add(1)

	if !rec.Compressed {
		return rec.Value, true, nil
	}
	value, err := decompress(rec.Value)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key in region r. Writes to a disabled region are
// dropped.
func (e *Engine) Set(ctx context.Context, r region.Region, key string, value []byte, opts SetOptions) error {
	p, err := e.partition(r)
	if err != nil {
		return err
	}

	settings, st := p.current()
	if !settings.Enabled {
		return nil
	}

	start := time.Now()
	defer func() { p.observeSet(time.Since(start)) }()

	now := e.now()
	rec := &record{
		Value:          value,
		CreatedAt:      now,
		LastAccessedAt: now,
		Priority:       opts.Priority,
	}
	if settings.Compression {
		rec.Value = compress(value)
		rec.Compressed = true
	}
	rec.Size = int64(len(rec.Value))

	ttl := settings.TTL
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	}

	evicted, err := st.put(ctx, key, rec)
	if err != nil {
		return err
	}
	p.sets.Add(1)
	p.evictions.Add(int64(evicted))
	return nil
}

// Remove deletes key from region r and reports whether it was present.
func (e *Engine) Remove(ctx context.Context, r region.Region, key string) (bool, error) {
	p, err := e.partition(r)
	if err != nil {
		return false, err
	}
	_, st := p.current()
	return st.remove(ctx, key)
}

// Settings returns the live settings of region r.
func (e *Engine) Settings(r region.Region) Settings {
	p, err := e.partition(r)
	if err != nil {
		return Settings{}
	}
	settings, _ := p.current()
	return settings
}

// Reconfigure applies new settings to region r. Switching between memory and
// distributed storage starts the region empty; shrinking a memory region
// evicts its least recently used entries.
func (e *Engine) Reconfigure(r region.Region, s Settings) error {
	p, err := e.partition(r)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	wantKind := cachemgmt.RegionTypeMemory
	if s.Distributed && e.redis != nil {
		wantKind = cachemgmt.RegionTypeDistributed
	}

	if p.store.kind() != wantKind {
		st, err := e.newStore(r, s)
		if err != nil {
			return fmt.Errorf("create store for region %s: %w", r, err)
		}
		p.store = st
	} else if s.capacity() != p.settings.capacity() {
		p.evictions.Add(int64(p.store.resize(s.capacity())))
	}

	p.settings = s
	return nil
}

// configurationLister is implemented by stores that can load every region's
// configuration in one query.
type configurationLister interface {
	ListConfigurations(ctx context.Context) (map[string]cachemgmt.RegionConfiguration, error)
}

// Reload reads the persisted configuration of the given regions, or of every
// region when none are given, and applies it. Regions without persisted
// configuration keep their current settings.
func (e *Engine) Reload(ctx context.Context, configs cachemgmt.ConfigurationStore, regions ...region.Region) error {
	if len(regions) == 0 {
		regions = region.All()
	}

	load := configs.GetConfiguration
	if lister, ok := configs.(configurationLister); ok && len(regions) > 1 {
		all, err := lister.ListConfigurations(ctx)
		if err != nil {
			return fmt.Errorf("list region configurations: %w", err)
		}
		load = func(_ context.Context, name string) (*cachemgmt.RegionConfiguration, error) {
			cfg, ok := all[name]
			if !ok {
				return nil, nil
			}
			return &cfg, nil
		}
	}

	var errs []error
	for _, r := range regions {
		cfg, err := load(ctx, r.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("load configuration for region %s: %w", r, err))
			continue
		}
		if cfg == nil {
			continue
		}
		if err := e.Reconfigure(r, SettingsFromConfiguration(*cfg)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetRegionStatistics implements cachemgmt.CacheEngine.
func (e *Engine) GetRegionStatistics(ctx context.Context, r region.Region) (cachemgmt.RegionStatistics, error) {
	p, err := e.partition(r)
	if err != nil {
		return cachemgmt.RegionStatistics{}, err
	}

	_, st := p.current()
	count, bytes, err := st.usage(ctx, e.now())
	if err != nil {
		return cachemgmt.RegionStatistics{}, fmt.Errorf("measure region %s: %w", r, err)
	}

	stats := p.counters()
	stats.EntryCount = count
	stats.TotalSizeBytes = bytes
	return stats, nil
}

// GetAllStatistics implements cachemgmt.CacheEngine.
func (e *Engine) GetAllStatistics(ctx context.Context) (map[region.Region]cachemgmt.RegionStatistics, error) {
	all := make(map[region.Region]cachemgmt.RegionStatistics, len(e.partitions))
	for _, p := range e.partitions {
		stats, err := e.GetRegionStatistics(ctx, p.region)
		if err != nil {
			return nil, err
		}
		all[p.region] = stats
	}
	return all, nil
}

// ClearRegion implements cachemgmt.CacheEngine.
func (e *Engine) ClearRegion(ctx context.Context, r region.Region) error {
	p, err := e.partition(r)
	if err != nil {
		return err
	}
	_, st := p.current()
	if err := st.clear(ctx); err != nil {
		return fmt.Errorf("clear region %s: %w", r, err)
	}
	e.logger.DebugContext(ctx, "Region cleared", "region", r.String())
	return nil
}

// ClearAll implements cachemgmt.CacheEngine. Every region is attempted even
// when one fails.
func (e *Engine) ClearAll(ctx context.Context) error {
	var errs []error
	for _, p := range e.partitions {
		if err := e.ClearRegion(ctx, p.region); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetEntries implements cachemgmt.CacheEngine.
func (e *Engine) GetEntries(ctx context.Context, r region.Region, skip, take int) ([]cachemgmt.RawEntry, error) {
	p, err := e.partition(r)
	if err != nil {
		return nil, err
	}
	_, st := p.current()
	return st.entries(ctx, max(skip, 0), max(take, 0), e.now())
}

// Refresh implements cachemgmt.CacheEngine. A nil ttl uses the region TTL; a
// zero TTL removes the expiry.
func (e *Engine) Refresh(ctx context.Context, key string, r region.Region, ttl *time.Duration) (bool, error) {
	p, err := e.partition(r)
	if err != nil {
		return false, err
	}
	settings, st := p.current()

	lifetime := settings.TTL
	if ttl != nil {
		lifetime = *ttl
	}

	now := e.now()
	var expiresAt time.Time
	if lifetime > 0 {
		expiresAt = now.Add(lifetime)
	}
	return st.touch(ctx, key, expiresAt, now)
}

// Close releases the Redis connection, if any.
func (e *Engine) Close() error {
	if e.redis == nil {
		return nil
	}
	return e.redis.Close()
}

var _ cachemgmt.CacheEngine = (*Engine)(nil)
