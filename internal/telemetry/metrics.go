package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SightingsProcessed counts sightings merged into the registry
	SightingsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blemap",
			Name:      "sightings_processed_total",
			Help:      "Total number of sightings processed by the registry",
		},
		[]string{"listener"},
	)

	// BatchesIngested counts batch ingest requests accepted
	BatchesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blemap",
			Name:      "batches_ingested_total",
			Help:      "Total number of sighting batches ingested",
		},
		[]string{"listener"},
	)

	// DevicesEvicted counts registry entries removed as stale
	DevicesEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blemap",
			Name:      "devices_evicted_total",
			Help:      "Total number of stale devices evicted from the registry",
		},
	)

	// SuspiciousVerdicts counts suspicious classifications
	SuspiciousVerdicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blemap",
			Name:      "suspicious_verdicts_total",
			Help:      "Total number of sightings that produced a suspicious verdict",
		},
	)

	// ResolverFailures counts failed name resolution round trips
	ResolverFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blemap",
			Name:      "resolver_failures_total",
			Help:      "Total number of failed device name resolutions",
		},
	)

	// ActiveDevices tracks the current registry size
	ActiveDevices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blemap",
			Name:      "active_devices",
			Help:      "Number of devices currently tracked in the registry",
		},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent; safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(
			SightingsProcessed,
			BatchesIngested,
			DevicesEvicted,
			SuspiciousVerdicts,
			ResolverFailures,
			ActiveDevices,
		)
	})
}
