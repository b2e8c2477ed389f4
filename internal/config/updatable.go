package config

import (
	"log/slog"
	"slices"
)

// LoggingUpdater defines interface for components that can update logging levels
type LoggingUpdater interface {
	UpdateLevel(level string) error
}

// PolicyUpdater defines interface for components that can replace their policy set
type PolicyUpdater interface {
	UpdatePolicies(policies []PolicyConfig) error
}

// ComponentRegistry holds references to updatable components
type ComponentRegistry struct {
	Logging  LoggingUpdater
	Policies PolicyUpdater
	logger   *slog.Logger
}

// NewComponentRegistry creates a new component registry
func NewComponentRegistry(logger *slog.Logger) *ComponentRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	return &ComponentRegistry{
		logger: logger.With("component", "config-registry"),
	}
}

// RegisterLogging registers a logging level updater
func (r *ComponentRegistry) RegisterLogging(updater LoggingUpdater) {
	r.Logging = updater
}

// RegisterPolicies registers a policy set updater
func (r *ComponentRegistry) RegisterPolicies(updater PolicyUpdater) {
	r.Policies = updater
}

// ApplyChanges pushes the settings that can change at runtime to the
// registered components. It has the signature of a ChangeCallback.
func (r *ComponentRegistry) ApplyChanges(oldConfig, newConfig *Config) {
	if newConfig == nil {
		return
	}

	if r.Logging != nil && (oldConfig == nil || oldConfig.Log.Level != newConfig.Log.Level) {
		if err := r.Logging.UpdateLevel(newConfig.Log.Level); err != nil {
			r.logger.Error("Failed to update log level", "level", newConfig.Log.Level, "err", err)
		} else {
			r.logger.Info("Log level updated", "level", newConfig.Log.Level)
		}
	}

	if r.Policies != nil && (oldConfig == nil || !policiesEqual(oldConfig.Cache.Policies, newConfig.Cache.Policies)) {
		if err := r.Policies.UpdatePolicies(newConfig.Cache.Policies); err != nil {
			r.logger.Error("Failed to update cache policies", "err", err)
		} else {
			r.logger.Info("Cache policies updated", "count", len(newConfig.Cache.Policies))
		}
	}
}

func policiesEqual(a, b []PolicyConfig) bool {
	return slices.EqualFunc(a, b, func(x, y PolicyConfig) bool {
		return x.Name == y.Name &&
			x.Kind == y.Kind &&
			x.Description == y.Description &&
			x.PolicyEnabled() == y.PolicyEnabled() &&
			slices.Equal(x.Regions, y.Regions)
	})
}
