package datadog

import (
	"context"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"radioetl/internal/metrics"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// fakeSubmitter captures payloads submitted by Backend.Flush().
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSubmitter) last() (datadogV2.MetricPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return datadogV2.MetricPayload{}, false
	}
	return f.payloads[len(f.payloads)-1], true
}

// newTestBackend builds a backend with a fake submitter and a ticker that
// never fires, so tests control exactly when Flush happens.
func newTestBackend(t *testing.T, sub *fakeSubmitter) *Backend {
	t.Helper()

	b, err := NewBackend(context.Background(), Options{
		JobName: "radioetl_test",
		now:     func() time.Time { return time.Unix(1700000000, 0) },
		newTicker: func(d time.Duration) *time.Ticker {
			return time.NewTicker(24 * time.Hour)
		},
		submitter: sub,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestResolveEnvTag(t *testing.T) {
	oldENV := os.Getenv("ENV")
	oldDDENV := os.Getenv("DD_ENV")
	t.Cleanup(func() {
		_ = os.Setenv("ENV", oldENV)
		_ = os.Setenv("DD_ENV", oldDDENV)
	})

	tests := []struct {
		name string
		env  string
		dd   string
		want string
	}{
		{name: "ENV_wins", env: "prod", dd: "stage", want: "env:prod"},
		{name: "DD_ENV_used_when_ENV_empty", env: "", dd: "stage", want: "env:stage"},
		{name: "default_unknown", env: "", dd: "", want: "env:unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_ = os.Setenv("ENV", tc.env)
			_ = os.Setenv("DD_ENV", tc.dd)
			if got := resolveEnvTag(); got != tc.want {
				t.Fatalf("resolveEnvTag()=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestFlushEmptyDoesNotSubmit(t *testing.T) {
	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sub.count() != 0 {
		t.Fatalf("submitted %d payloads for empty buffers, want 0", sub.count())
	}
}

func TestFlushSubmitsRecordCounters(t *testing.T) {
	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)

	b.IncCounter("radioetl_records_total", 3, metrics.Labels{"kind": "inserted"})
	b.IncCounter("radioetl_records_total", 1, metrics.Labels{"kind": "skipped"})
	b.IncCounter("radioetl_records_total", 1, metrics.Labels{"kind": "inserted"})
	b.IncCounter("some_other_counter", 99, metrics.Labels{"kind": "inserted"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	payload, ok := sub.last()
	if !ok {
		t.Fatal("no payload submitted")
	}

	byKind := map[string]float64{}
	for _, s := range payload.Series {
		if s.Metric != "radioetl.records.total" {
			t.Errorf("unexpected metric %q", s.Metric)
			continue
		}
		kind := ""
		for _, tag := range s.Tags {
			if len(tag) > 5 && tag[:5] == "kind:" {
				kind = tag[5:]
			}
		}
		if len(s.Points) != 1 || s.Points[0].Value == nil {
			t.Fatalf("series %q has no point value", s.Metric)
		}
		byKind[kind] = *s.Points[0].Value
	}

	if byKind["inserted"] != 4 || byKind["skipped"] != 1 {
		t.Errorf("counts by kind = %v, want inserted=4 skipped=1", byKind)
	}
}

func TestFlushSubmitsDurationGauges(t *testing.T) {
	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)

	b.ObserveHistogram("radioetl_run_duration_seconds", 1.0, metrics.Labels{"mode": "bulk"})
	b.ObserveHistogram("radioetl_run_duration_seconds", 3.0, metrics.Labels{"mode": "bulk"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	payload, ok := sub.last()
	if !ok {
		t.Fatal("no payload submitted")
	}

	want := map[string]float64{
		"radioetl.run.duration_seconds.p50":     1.0,
		"radioetl.run.duration_seconds.max":     3.0,
		"radioetl.run.duration_seconds.samples": 2,
	}
	got := map[string]float64{}
	for _, s := range payload.Series {
		if len(s.Points) != 1 || s.Points[0].Value == nil {
			t.Fatalf("series %q has no point value", s.Metric)
		}
		got[s.Metric] = *s.Points[0].Value
	}
	for metric, v := range want {
		if got[metric] != v {
			t.Errorf("%s = %v, want %v", metric, got[metric], v)
		}
	}
}

func TestFlushResetsBuffers(t *testing.T) {
	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)

	b.IncCounter("radioetl_records_total", 1, metrics.Labels{"kind": "inserted"})
	if err := b.Flush(); err != nil {
		t.Fatalf("first Flush: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("submitted %d payloads, want 1 (buffers should reset)", sub.count())
	}
}

func TestPercentileNearestRank(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5}
	if got := percentileNearestRank(s, 0.5); got != 3 {
		t.Errorf("p50 = %v, want 3", got)
	}
	if got := percentileNearestRank(s, 1); got != 5 {
		t.Errorf("p100 = %v, want 5", got)
	}
	if got := percentileNearestRank(nil, 0.5); got != 0 {
		t.Errorf("empty = %v, want 0", got)
	}
}
