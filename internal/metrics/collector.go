// Package metrics exposes cache statistics to Prometheus.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/region"
)

const namespace = "conduit_cache"

const scrapeTimeout = 5 * time.Second

// StatisticsSource supplies region statistics at scrape time.
type StatisticsSource interface {
	GetAllStatistics(ctx context.Context) (map[region.Region]cachemgmt.RegionStatistics, error)
}

// Collector reads engine statistics on every scrape.
type Collector struct {
	source StatisticsSource
	logger *slog.Logger

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	sets        *prometheus.Desc
	evictions   *prometheus.Desc
	entries     *prometheus.Desc
	sizeBytes   *prometheus.Desc
	getLatency  *prometheus.Desc
	setLatency  *prometheus.Desc
	scrapeError *prometheus.Desc
}

// NewCollector creates a collector over source.
func NewCollector(source StatisticsSource, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	labels := []string{"region"}
	desc := func(name, help string, labels []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}

	return &Collector{
		source:      source,
		logger:      logger.With("component", "metrics-collector"),
		hits:        desc("hits_total", "Cache hits per region", labels),
		misses:      desc("misses_total", "Cache misses per region", labels),
		sets:        desc("sets_total", "Cache writes per region", labels),
		evictions:   desc("evictions_total", "Entries evicted per region", labels),
		entries:     desc("entries", "Live entries per region", labels),
		sizeBytes:   desc("size_bytes", "Bytes held per region", labels),
		getLatency:  desc("get_latency_seconds", "Average get latency per region", labels),
		setLatency:  desc("set_latency_seconds", "Average set latency per region", labels),
		scrapeError: desc("scrape_error", "1 when reading engine statistics failed", nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.hits, c.misses, c.sets, c.evictions, c.entries, c.sizeBytes, c.getLatency, c.setLatency, c.scrapeError,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	all, err := c.source.GetAllStatistics(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to read cache statistics", "err", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeError, prometheus.GaugeValue, 1)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeError, prometheus.GaugeValue, 0)

	for r, s := range all {
		name := r.String()
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.HitCount), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.MissCount), name)
		ch <- prometheus.MustNewConstMetric(c.sets, prometheus.CounterValue, float64(s.SetCount), name)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.EvictionCount), name)
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.EntryCount), name)
		ch <- prometheus.MustNewConstMetric(c.sizeBytes, prometheus.GaugeValue, float64(s.TotalSizeBytes), name)
		ch <- prometheus.MustNewConstMetric(c.getLatency, prometheus.GaugeValue, s.AverageGetTime.Seconds(), name)
		ch <- prometheus.MustNewConstMetric(c.setLatency, prometheus.GaugeValue, s.AverageSetTime.Seconds(), name)
	}
}

var _ prometheus.Collector = (*Collector)(nil)
