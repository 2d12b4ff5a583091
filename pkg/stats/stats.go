// Package stats collects prometheus metrics about node requests and the
// state transitions of tracked transactions.
package stats

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tdex-network/tronkit/pkg/tracker"
)

const namespace = "tronkit"

const (
	resultOk    = "ok"
	resultError = "error"
)

// Metrics implements trongrid.RequestObserver and tracker.Observer. Every
// instance has its own registry.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewMetrics returns a new Metrics with all collectors registered.
func NewMetrics() *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_requests_total",
			Help:      "Number of requests sent to the node, by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)
	latency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_request_duration_seconds",
			Help:      "Latency of the requests sent to the node.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_transitions_total",
			Help:      "Number of state transitions of tracked transactions.",
		},
		[]string{"state"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(requests, latency, transitions)

	return &Metrics{registry, requests, latency, transitions}
}

// ObserveRequest ...
func (m *Metrics) ObserveRequest(
	endpoint string, elapsed time.Duration, err error,
) {
	result := resultOk
	if err != nil {
		result = resultError
	}
	m.requests.WithLabelValues(endpoint, result).Inc()
	m.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveTransition ...
func (m *Metrics) ObserveTransition(
	_ context.Context, _ string, state tracker.State,
) {
	m.transitions.WithLabelValues(state.String()).Inc()
}

// Registry returns the registry the collectors are registered to, so that
// it can be served or gathered by the caller.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Dump writes the gathered metric families to w, one per line.
func (m *Metrics) Dump(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(w)
	for _, v := range families {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// DumpToFile appends the gathered metric families to the file at path.
func (m *Metrics) DumpToFile(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return m.Dump(file)
}
