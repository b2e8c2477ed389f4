package config

import (
	"fmt"
	"time"
)

// Cache config accessor methods with default fallbacks.

// GetMaxConcurrency returns the configuration fan-out bound with a default fallback.
func (c *Config) GetMaxConcurrency() int {
	if c.Cache.MaxConcurrency <= 0 {
		return 4 // Default: 4 regions at a time
	}
	return c.Cache.MaxConcurrency
}

// GetRedisKeyPrefix returns the key prefix of the distributed backend.
func (c *Config) GetRedisKeyPrefix() string {
	if c.Cache.Redis.KeyPrefix == "" {
		return "conduit:cache:"
	}
	return c.Cache.Redis.KeyPrefix
}

// RedisEnabled reports whether a distributed backend is configured.
func (c *Config) RedisEnabled() bool {
	return c.Cache.Redis.Addr != ""
}

// DistributedBackend names the distributed backend for display.
func (c *Config) DistributedBackend() string {
	if c.RedisEnabled() {
		return "redis"
	}
	return "none"
}

// RedisConnectionString is the raw connection string of the distributed
// backend. It may hold credentials.
func (c *Config) RedisConnectionString() string {
	if !c.RedisEnabled() {
		return ""
	}
	if c.Cache.Redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s/%d", c.Cache.Redis.Password, c.Cache.Redis.Addr, c.Cache.Redis.DB)
	}
	return fmt.Sprintf("redis://%s/%d", c.Cache.Redis.Addr, c.Cache.Redis.DB)
}

// DatabaseConnectionString is the raw connection string of the configuration
// database. It may hold credentials.
func (c *Config) DatabaseConnectionString() string {
	if c.Database.Driver == "postgres" {
		return c.Database.DSN
	}
	return c.Database.Path
}

// Snapshot config accessor methods.

// GetSnapshotsEnabled returns whether statistics history is recorded.
func (c *Config) GetSnapshotsEnabled() bool {
	if c.Snapshots.Enabled == nil {
		return true // Default: enabled
	}
	return *c.Snapshots.Enabled
}

// GetSnapshotRetention returns how long snapshots are kept with a default fallback.
func (c *Config) GetSnapshotRetention() time.Duration {
	if c.Snapshots.Retention <= 0 {
		return 24 * time.Hour // Default: one day
	}
	return c.Snapshots.Retention
}

// GetListenAddress returns the host:port the API listens on.
func (c *Config) GetListenAddress() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// PolicyEnabled reports whether a configured policy is enabled. Policies are
// enabled unless set otherwise.
func (p PolicyConfig) PolicyEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}
