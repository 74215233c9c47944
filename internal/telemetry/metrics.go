package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BlocksInstalled counts successful block installations per backend
	BlocksInstalled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ewdefence",
			Name:      "blocks_installed_total",
			Help:      "Total number of successfully installed blocks",
		},
		[]string{"backend"},
	)

	// BlockFailures counts block installations rejected by the platform action
	BlockFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ewdefence",
			Name:      "block_failures_total",
			Help:      "Total number of failed block installations",
		},
		[]string{"backend"},
	)

	// BlocksRemoved counts completed unblocks (timer expiry or explicit)
	BlocksRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ewdefence",
			Name:      "blocks_removed_total",
			Help:      "Total number of removed blocks",
		},
		[]string{"backend"},
	)

	// RemoveFailures counts platform removal actions that did not succeed.
	// The registry entry is dropped anyway, so a non-zero value means a stale
	// rule may be left behind on the host.
	RemoveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ewdefence",
			Name:      "remove_failures_total",
			Help:      "Total number of failed block removals",
		},
		[]string{"backend"},
	)

	// ActiveBlocks tracks the current size of the block registry
	ActiveBlocks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ewdefence",
			Name:      "active_blocks",
			Help:      "Number of addresses currently blocked",
		},
	)

	// AttacksDetected counts detector findings per attack type
	AttacksDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ewdefence",
			Name:      "attacks_detected_total",
			Help:      "Total number of detected attacks",
		},
		[]string{"type"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the default Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			BlocksInstalled,
			BlockFailures,
			BlocksRemoved,
			RemoveFailures,
			ActiveBlocks,
			AttacksDetected,
		)
	})
}
