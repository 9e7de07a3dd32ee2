package stats

import (
	"testing"
	"time"
)

func TestWindowSnapshotPercentiles(t *testing.T) {
	w := NewWindow(10, time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		w.Record(time.Duration(ms)*time.Millisecond, ms == 500)
	}

	snap := w.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Failed != 1 {
		t.Fatalf("expected failed=1, got %d", snap.Failed)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%f max=%f", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestWindowKeepsMostRecentSamples(t *testing.T) {
	w := NewWindow(3, time.Hour)
	for _, ms := range []int{1, 2, 3, 4, 5} {
		w.Record(time.Duration(ms)*time.Millisecond, false)
	}
	snap := w.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("expected count=3, got %d", snap.Count)
	}
	if snap.MinMs != 3 || snap.MaxMs != 5 {
		t.Fatalf("expected min=3 max=5, got min=%f max=%f", snap.MinMs, snap.MaxMs)
	}
}

func TestWindowPrunesExpiredSamples(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewWindow(10, time.Minute)
	w.now = func() time.Time { return clock }

	w.Record(time.Second, false)
	clock = clock.Add(2 * time.Minute)
	if snap := w.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	w.Record(-time.Second, false)
	snap := w.Snapshot()
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected one clamped sample, got count=%d max=%f", snap.Count, snap.MaxMs)
	}
}
