package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

// Metrics holds the counters updated outside of scrapes.
type Metrics struct {
	ConfigChanges *prometheus.CounterVec
}

// NewMetrics creates and registers the cache collector and counters with reg.
func NewMetrics(reg prometheus.Registerer, collector *Collector) *Metrics {
	configChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_changes_total",
		Help:      "Configuration change events per region",
	}, []string{"region"})

	reg.MustRegister(configChanges)
	if collector != nil {
		reg.MustRegister(collector)
	}

	return &Metrics{ConfigChanges: configChanges}
}

// ConfigChangeHandler counts published configuration change events. It has
// the signature of an event bus handler.
func (m *Metrics) ConfigChangeHandler(_ context.Context, event cachemgmt.ConfigurationChangeEvent) error {
	m.ConfigChanges.WithLabelValues(event.Region).Inc()
	return nil
}
