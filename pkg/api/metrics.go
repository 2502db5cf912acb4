package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/observability"
)

// Metrics implements the observability hooks with Prometheus collectors on
// its own registry.
type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	renamed         *prometheus.CounterVec
	links           prometheus.Counter
	cacheLookups    *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matlayer_commands_total",
			Help: "Layer and mask commands by command and error code",
		}, []string{"command", "code"}),
		commandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matlayer_command_duration_seconds",
			Help:    "Command latency",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"command"}),
		renamed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matlayer_reindex_renamed_total",
			Help: "Nodes renamed by reindex passes",
		}, []string{"change"}),
		links: f.NewCounter(prometheus.CounterOpts{
			Name: "matlayer_relink_links_total",
			Help: "Links created by relink passes",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matlayer_cache_lookups_total",
			Help: "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matlayer_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matlayer_store_operations_total",
			Help: "Document store operations",
		}, []string{"backend", "op", "code"}),
		storeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matlayer_store_duration_seconds",
			Help:    "Document store latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
}

// Install registers m as the global stack, cache, and store hooks.
func (m *Metrics) Install() {
	observability.SetStackHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// outcome labels an error by its code.
func outcome(err error) string {
	if err == nil {
		return "OK"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return string(errors.ErrCodeInternal)
}

func (m *Metrics) OnCommandStart(context.Context, string, string) {}

func (m *Metrics) OnCommandComplete(_ context.Context, _, command string, d time.Duration, err error) {
	m.commands.WithLabelValues(command, outcome(err)).Inc()
	m.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (m *Metrics) OnReindex(_ context.Context, _, change string, renamed int, _ error) {
	m.renamed.WithLabelValues(change).Add(float64(renamed))
}

func (m *Metrics) OnRelink(_ context.Context, _ string, links int, _ error) {
	m.links.Add(float64(links))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnLoad(_ context.Context, backend, _ string, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, "load", outcome(err)).Inc()
	m.storeDuration.WithLabelValues(backend, "load").Observe(d.Seconds())
}

func (m *Metrics) OnSave(_ context.Context, backend, _ string, _ int, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, "save", outcome(err)).Inc()
	m.storeDuration.WithLabelValues(backend, "save").Observe(d.Seconds())
}

var (
	_ observability.StackHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.StoreHooks = (*Metrics)(nil)
)
