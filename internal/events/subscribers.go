package events

import (
	"context"
	"log/slog"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/region"
)

// Reloader applies persisted region configuration to a running engine.
type Reloader interface {
	Reload(ctx context.Context, store cachemgmt.ConfigurationStore, regions ...region.Region) error
}

// LogHandler logs every event at info level.
func LogHandler(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "config-audit")
	return func(ctx context.Context, event cachemgmt.ConfigurationChangeEvent) error {
		logger.InfoContext(ctx, "Cache configuration changed",
			"event_id", event.ID,
			"region", event.Region,
			"changed_by", event.ChangedBy,
			"reason", event.Reason)
		return nil
	}
}

// ReloadHandler reloads the regions an event touches. Global events reload
// every region.
func ReloadHandler(engine Reloader, store cachemgmt.ConfigurationStore) Handler {
	return func(ctx context.Context, event cachemgmt.ConfigurationChangeEvent) error {
		if event.Region == cachemgmt.GlobalRegion {
			return engine.Reload(ctx, store)
		}
		r, ok := region.Lookup(event.Region)
		if !ok {
			return nil
		}
		return engine.Reload(ctx, store, r)
	}
}
