package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// LevelSetter is the part of a dynamic slog leveler the updater drives.
type LevelSetter interface {
	SetLevel(level slog.Level)
}

// DefaultLoggingUpdater manages dynamic logging level updates
type DefaultLoggingUpdater struct {
	leveler LevelSetter
	current string
	mutex   sync.Mutex
}

// NewLoggingUpdater creates a new logging updater
func NewLoggingUpdater(leveler LevelSetter, initialLevel string) *DefaultLoggingUpdater {
	return &DefaultLoggingUpdater{
		leveler: leveler,
		current: initialLevel,
	}
}

// UpdateLevel changes the level of the shared leveler
func (u *DefaultLoggingUpdater) UpdateLevel(level string) error {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if u.current == level {
		return nil
	}

	parsed, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	u.leveler.SetLevel(parsed)
	u.current = level
	return nil
}

// GetLevel returns the current level name
func (u *DefaultLoggingUpdater) GetLevel() string {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.current
}

// ParseLogLevel converts a configured level name. Empty means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
