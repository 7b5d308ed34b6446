package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// MetricsObserver exports asset lifecycle metrics to Prometheus
type MetricsObserver struct {
	registry        *prometheus.Registry
	events          *prometheus.CounterVec
	downloadedBytes prometheus.Counter
}

// NewMetricsObserver registers the lifecycle metrics on a private registry
// together with the Go and process collectors.
func NewMetricsObserver(namespace string) (*MetricsObserver, error) {
	if namespace == "" {
		namespace = "asset_store"
	}
	reg := prometheus.NewRegistry()

	m := &MetricsObserver{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_events_total",
			Help:      "Count of asset lifecycle events by type and locale.",
		}, []string{"event", "locale"}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Cumulative payload size written to the local store.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.events,
		m.downloadedBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}
	return m, nil
}

// OnStored counts a download
func (m *MetricsObserver) OnStored(ctx context.Context, event domain.AssetEvent) error {
	m.events.WithLabelValues(eventLabel(event.Type), event.Asset.Locale).Inc()
	if event.Bytes > 0 {
		m.downloadedBytes.Add(float64(event.Bytes))
	}
	return nil
}

// OnRemoved counts a delete or unpublish
func (m *MetricsObserver) OnRemoved(ctx context.Context, event domain.AssetEvent) error {
	m.events.WithLabelValues(eventLabel(event.Type), event.Asset.Locale).Inc()
	return nil
}

// Registry returns the registry holding the lifecycle metrics
func (m *MetricsObserver) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsObserver) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func eventLabel(t domain.EventType) string {
	return strings.ToLower(string(t))
}
