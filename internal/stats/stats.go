package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	duration time.Duration
	failed   bool
}

// Snapshot aggregates the validation samples currently in the window.
type Snapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Window keeps the most recent validation latencies, bounded both by count
// and by age.
type Window struct {
	mu         sync.Mutex
	samples    []sample
	maxSamples int
	maxAge     time.Duration
	now        func() time.Time
}

func NewWindow(maxSamples int, maxAge time.Duration) *Window {
	if maxSamples <= 0 {
		maxSamples = 100
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples:    make([]sample, 0, maxSamples),
		maxSamples: maxSamples,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Record adds the duration of one file validation.
func (w *Window) Record(d time.Duration, failed bool) {
	if d < 0 {
		d = 0
	}
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)
	if len(w.samples) == w.maxSamples {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:len(w.samples)-1]
	}
	w.samples = append(w.samples, sample{at: now, duration: d, failed: failed})
}

func (w *Window) Snapshot() Snapshot {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)
	if len(w.samples) == 0 {
		return Snapshot{}
	}

	values := make([]float64, 0, len(w.samples))
	var sum float64
	failed := 0
	for _, s := range w.samples {
		ms := float64(s.duration) / float64(time.Millisecond)
		values = append(values, ms)
		sum += ms
		if s.failed {
			failed++
		}
	}
	slices.Sort(values)

	return Snapshot{
		Count:  len(values),
		Failed: failed,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  sum / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	keep := 0
	for _, s := range w.samples {
		if !s.at.Before(cutoff) {
			w.samples[keep] = s
			keep++
		}
	}
	w.samples = w.samples[:keep]
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*weight
}
