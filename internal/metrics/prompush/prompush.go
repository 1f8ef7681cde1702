// Package prompush implements a Prometheus Pushgateway backend for the
// internal/metrics package.
//
// Batch loads are too short-lived for scrape-based collection, so metrics
// accumulate in a private registry and Flush pushes the whole job state to
// the gateway.
package prompush

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"radioetl/internal/metrics"
)

// pusher is the slice of push.Pusher the backend uses; tests fake it to
// avoid a live gateway.
type pusher interface {
	Add() error
}

// Backend implements metrics.Backend against a Pushgateway.
type Backend struct {
	mu   sync.Mutex
	push pusher

	records     *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
}

// NewBackend registers the radioetl collectors in a fresh registry and
// targets the gateway at url under the given job name.
func NewBackend(job, url string) (*Backend, error) {
	if job == "" {
		return nil, fmt.Errorf("prompush: job name required")
	}
	if url == "" {
		return nil, fmt.Errorf("prompush: gateway url required")
	}

	reg := prometheus.NewRegistry()

	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radioetl_records_total",
		Help: "Records processed, by outcome kind.",
	}, []string{"kind"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "radioetl_run_duration_seconds",
		Help:    "Wall-clock duration of one load run.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"mode"})

	reg.MustRegister(records, runDuration)

	return &Backend{
		push:        push.New(url, job).Gatherer(reg),
		records:     records,
		runDuration: runDuration,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 || name != "radioetl_records_total" {
		return
	}
	kind := labels["kind"]
	if kind == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.records.WithLabelValues(kind).Add(delta)
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 || name != "radioetl_run_duration_seconds" {
		return
	}
	mode := labels["mode"]
	if mode == "" {
		mode = "unknown"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.runDuration.WithLabelValues(mode).Observe(value)
}

// Flush pushes the accumulated job state to the gateway. Add (not Push) so
// repeated runs under one job name do not clobber other instance groups.
func (b *Backend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.push.Add(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}

var _ metrics.Backend = (*Backend)(nil)
