package prompush

import (
	"errors"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"radioetl/internal/metrics"
)

type fakePusher struct {
	adds int
	err  error
}

func (f *fakePusher) Add() error {
	f.adds++
	return f.err
}

func TestNewBackendValidatesArgs(t *testing.T) {
	if _, err := NewBackend("", "http://localhost:9091"); err == nil {
		t.Error("expected error for empty job")
	}
	if _, err := NewBackend("radioetl", ""); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestCountersAccumulate(t *testing.T) {
	b, err := NewBackend("radioetl_test", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("radioetl_records_total", 2, metrics.Labels{"kind": "inserted"})
	b.IncCounter("radioetl_records_total", 1, metrics.Labels{"kind": "inserted"})
	b.IncCounter("radioetl_records_total", 1, metrics.Labels{"kind": "skipped"})
	b.IncCounter("radioetl_records_total", 1, nil) // no kind, dropped
	b.IncCounter("unrelated_total", 5, metrics.Labels{"kind": "inserted"})

	if got := counterValue(t, b, "inserted"); got != 3 {
		t.Errorf("inserted = %v, want 3", got)
	}
	if got := counterValue(t, b, "skipped"); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
}

func TestFlushDelegatesToPusher(t *testing.T) {
	b, err := NewBackend("radioetl_test", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	fp := &fakePusher{}
	b.push = fp

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fp.adds != 1 {
		t.Errorf("adds = %d, want 1", fp.adds)
	}

	fp.err = errors.New("gateway down")
	err = b.Flush()
	if err == nil || !strings.Contains(err.Error(), "gateway down") {
		t.Errorf("Flush error = %v, want wrapped gateway error", err)
	}
}

func counterValue(t *testing.T, b *Backend, kind string) float64 {
	t.Helper()

	m := &dto.Metric{}
	c, err := b.records.GetMetricWithLabelValues(kind)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%q): %v", kind, err)
	}
	if err := c.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}
