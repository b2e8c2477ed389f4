package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. CONDUIT_ADMIN_API_PORT.
const EnvPrefix = "CONDUIT_ADMIN"

// Config represents the complete application configuration
type Config struct {
	API       APIConfig      `yaml:"api" mapstructure:"api"`
	Database  DatabaseConfig `yaml:"database" mapstructure:"database"`
	Cache     CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Snapshots SnapshotConfig `yaml:"snapshots" mapstructure:"snapshots"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
}

// APIConfig represents REST API configuration
type APIConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Prefix       string        `yaml:"prefix" mapstructure:"prefix"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite3 or postgres
	Path   string `yaml:"path" mapstructure:"path"`     // sqlite file
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // postgres connection string
}

// CacheConfig holds the engine-wide cache settings and the defaults used for
// regions that were never configured.
type CacheConfig struct {
	Engine             string         `yaml:"engine" mapstructure:"engine"`
	DefaultTTL         time.Duration  `yaml:"default_ttl" mapstructure:"default_ttl"`
	MaxEntries         int64          `yaml:"max_entries" mapstructure:"max_entries"`
	EvictionPolicy     string         `yaml:"eviction_policy" mapstructure:"eviction_policy"`
	CompressionEnabled bool           `yaml:"compression_enabled" mapstructure:"compression_enabled"`
	MaxMemoryBytes     int64          `yaml:"max_memory_bytes" mapstructure:"max_memory_bytes"`
	MaxConcurrency     int            `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	Redis              RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Policies           []PolicyConfig `yaml:"policies" mapstructure:"policies"`
}

// RedisConfig represents the distributed backend. An empty address keeps
// distributed regions in memory.
type RedisConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	Password  string `yaml:"password" mapstructure:"password"`
	DB        int    `yaml:"db" mapstructure:"db"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// PolicyConfig is one named cache policy. A policy without regions applies to
// every region.
type PolicyConfig struct {
	Name        string   `yaml:"name" mapstructure:"name"`
	Kind        string   `yaml:"kind" mapstructure:"kind"`
	Regions     []string `yaml:"regions" mapstructure:"regions"`
	Enabled     *bool    `yaml:"enabled" mapstructure:"enabled"`
	Description string   `yaml:"description" mapstructure:"description"`
}

// SnapshotConfig controls statistics history and settings sync.
type SnapshotConfig struct {
	Enabled      *bool         `yaml:"enabled" mapstructure:"enabled"`
	Schedule     string        `yaml:"schedule" mapstructure:"schedule"`
	Retention    time.Duration `yaml:"retention" mapstructure:"retention"`
	SettingsSync string        `yaml:"settings_sync" mapstructure:"settings_sync"`
}

// LogConfig represents logging configuration with rotation support
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`               // Log file path (empty = console only)
	Level      string `yaml:"level" mapstructure:"level"`             // Log level (debug, info, warn, error)
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // Max size in MB before rotation
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // Max age in days to keep files
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // Max number of old files to keep
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // Compress old log files
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validEngines   = []string{"memory", "redis"}
	validDrivers   = []string{"sqlite3", "postgres"}
)

// DeepCopy returns a deep copy of the configuration
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	var copyCfg Config
	if err := copier.CopyWithOption(&copyCfg, c, copier.Option{DeepCopy: true}); err != nil {
		shallow := *c
		return &shallow
	}
	return &copyCfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api port must be between 1 and 65535")
	}

	if c.API.Prefix != "" && !strings.HasPrefix(c.API.Prefix, "/") {
		return fmt.Errorf("api prefix must start with '/'")
	}

	if c.API.ReadTimeout < 0 || c.API.WriteTimeout < 0 {
		return fmt.Errorf("api timeouts must be non-negative")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("database driver must be one of: %s", strings.Join(validDrivers, ", "))
	}

	if c.Database.Driver == "sqlite3" && c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty for sqlite3")
	}

	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database dsn cannot be empty for postgres")
	}

	if !slices.Contains(validEngines, c.Cache.Engine) {
		return fmt.Errorf("cache engine must be one of: %s", strings.Join(validEngines, ", "))
	}

	if c.Cache.Engine == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache redis addr cannot be empty when engine is redis")
	}

	if c.Cache.DefaultTTL < 0 {
		return fmt.Errorf("cache default_ttl must be non-negative")
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max_entries must be non-negative")
	}

	if c.Cache.EvictionPolicy == "" {
		return fmt.Errorf("cache eviction_policy cannot be empty")
	}

	if c.Cache.MaxConcurrency < 0 {
		return fmt.Errorf("cache max_concurrency must be non-negative")
	}

	names := make(map[string]bool, len(c.Cache.Policies))
	for i, p := range c.Cache.Policies {
		if p.Name == "" {
			return fmt.Errorf("policy %d: name cannot be empty", i)
		}
		if names[p.Name] {
			return fmt.Errorf("policy %d: duplicate name %q", i, p.Name)
		}
		names[p.Name] = true
		if p.Kind == "" {
			return fmt.Errorf("policy %s: kind cannot be empty", p.Name)
		}
	}

	if c.Snapshots.Retention < 0 {
		return fmt.Errorf("snapshots retention must be non-negative")
	}

	if c.Log.Level != "" && !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSize < 0 {
		return fmt.Errorf("log.max_size must be non-negative")
	}

	if c.Log.MaxAge < 0 {
		return fmt.Errorf("log.max_age must be non-negative")
	}

	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be non-negative")
	}

	return nil
}

// ChangeCallback represents a function called when configuration changes
type ChangeCallback func(oldConfig, newConfig *Config)

// ConfigGetter represents a function that returns the current configuration
type ConfigGetter func() *Config

// Manager manages configuration state and persistence
type Manager struct {
	current    *Config
	configFile string
	fs         afero.Fs
	mutex      sync.RWMutex
	callbacks  []ChangeCallback
}

// NewManager creates a new configuration manager. A nil fs uses the OS
// filesystem.
func NewManager(config *Config, configFile string, fs afero.Fs) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Manager{
		current:    config,
		configFile: configFile,
		fs:         fs,
	}
}

// GetConfig returns the current configuration (thread-safe)
func (m *Manager) GetConfig() *Config {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

// GetConfigGetter returns a function that provides the current configuration
func (m *Manager) GetConfigGetter() ConfigGetter {
	return m.GetConfig
}

// UpdateConfig updates the current configuration (thread-safe)
func (m *Manager) UpdateConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	m.mutex.Lock()
	// Callbacks get an immutable snapshot of the old config
	var oldConfig *Config
	if m.current != nil {
		oldConfig = m.current.DeepCopy()
	}
	m.current = config
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mutex.Unlock()

	for _, callback := range callbacks {
		callback(oldConfig, config)
	}
	return nil
}

// OnConfigChange registers a callback to be called when configuration changes
func (m *Manager) OnConfigChange(callback ChangeCallback) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ValidateConfigUpdate validates a runtime update. Settings that require a
// restart cannot change.
func (m *Manager) ValidateConfigUpdate(newConfig *Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}

	m.mutex.RLock()
	currentConfig := m.current
	m.mutex.RUnlock()

	if currentConfig == nil {
		return nil
	}

	if newConfig.API.Port != currentConfig.API.Port || newConfig.API.Host != currentConfig.API.Host {
		return fmt.Errorf("api listen address cannot be changed at runtime - requires server restart")
	}

	if newConfig.Database != currentConfig.Database {
		return fmt.Errorf("database settings cannot be changed at runtime - requires server restart")
	}

	if newConfig.Cache.Redis != currentConfig.Cache.Redis {
		return fmt.Errorf("redis settings cannot be changed at runtime - requires server restart")
	}

	return nil
}

// ReloadConfig reloads configuration from file and notifies callbacks
func (m *Manager) ReloadConfig() error {
	if m.configFile == "" {
		return fmt.Errorf("no config file path provided")
	}

	config, err := LoadConfig(m.fs, m.configFile)
	if err != nil {
		return err
	}

	if err := m.ValidateConfigUpdate(config); err != nil {
		return err
	}

	return m.UpdateConfig(config)
}

// SaveConfig saves the current configuration to file
func (m *Manager) SaveConfig() error {
	m.mutex.RLock()
	config := m.current
	m.mutex.RUnlock()

	if config == nil {
		return fmt.Errorf("no configuration to save")
	}

	return SaveToFile(m.fs, config, m.configFile)
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	snapshotsEnabled := true

	return &Config{
		API: APIConfig{
			Host:         "0.0.0.0",
			Port:         8090,
			Prefix:       "/api/admin",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Path:   "conduit-admin.db",
		},
		Cache: CacheConfig{
			Engine:         "memory",
			DefaultTTL:     time.Hour,
			MaxEntries:     10000,
			EvictionPolicy: "LRU",
			MaxMemoryBytes: 1 << 30, // 1GB
			MaxConcurrency: 4,
			Redis: RedisConfig{
				KeyPrefix: "conduit:cache:",
			},
			Policies: []PolicyConfig{},
		},
		Snapshots: SnapshotConfig{
			Enabled:      &snapshotsEnabled,
			Schedule:     "*/5 * * * *",
			Retention:    24 * time.Hour,
			SettingsSync: "@every 1m",
		},
		Log: LogConfig{
			File:       "",     // Empty = console only
			Level:      "info", // Default log level
			MaxSize:    100,    // 100MB max size
			MaxAge:     30,     // Keep for 30 days
			MaxBackups: 10,     // Keep 10 old files
			Compress:   true,   // Compress old files
		},
	}
}

// SaveToFile saves a configuration to a YAML file
func SaveToFile(fs afero.Fs, config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("no config file path provided")
	}

	dir := filepath.Dir(filename)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(fs, filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfig loads configuration from file and merges it over the defaults.
// Environment variables prefixed with CONDUIT_ADMIN_ override both. With no
// file given, config.yaml is searched in the working directory and
// /etc/conduit-admin; finding none leaves the defaults in place.
func LoadConfig(fs afero.Fs, configFile string) (*Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	v, err := newViper(fs)
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/conduit-admin")
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// newViper returns a viper instance seeded with the defaults so every key is
// known for environment overrides.
func newViper(fs afero.Fs) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return v, nil
}
