// Package timing aggregates per-test durations into a histogram for an
// optional percentile block after the run summary.
package timing

import (
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Tracker collects test durations. The zero value is not usable; construct
// with NewTracker.
type Tracker struct {
	hist *hdrhistogram.Histogram
}

// NewTracker creates a tracker covering 1µs to 10m at 3 significant digits.
func NewTracker() *Tracker {
	return &Tracker{
		hist: hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3),
	}
}

// Record adds one test duration.
func (t *Tracker) Record(d time.Duration) {
	_ = t.hist.RecordValue(int64(d / time.Microsecond))
}

// Count returns how many durations were recorded.
func (t *Tracker) Count() int64 {
	return t.hist.TotalCount()
}

// Summary holds the percentile spread of recorded durations.
type Summary struct {
	Min time.Duration
	P50 time.Duration
	P95 time.Duration
	P99 time.Duration
	Max time.Duration
}

// Summary computes the current percentile spread.
func (t *Tracker) Summary() Summary {
	return Summary{
		Min: time.Duration(t.hist.Min()) * time.Microsecond,
		P50: time.Duration(t.hist.ValueAtQuantile(50)) * time.Microsecond,
		P95: time.Duration(t.hist.ValueAtQuantile(95)) * time.Microsecond,
		P99: time.Duration(t.hist.ValueAtQuantile(99)) * time.Microsecond,
		Max: time.Duration(t.hist.Max()) * time.Microsecond,
	}
}

// WriteTo renders the percentile block. Nothing is written when no
// durations were recorded.
func (t *Tracker) WriteTo(w io.Writer) {
	if t.Count() == 0 {
		return
	}
	s := t.Summary()
	fmt.Fprintf(w, "  Test durations (n=%d):\n", t.Count())
	fmt.Fprintf(w, "    min %s | p50 %s | p95 %s | p99 %s | max %s\n",
		s.Min.Round(time.Microsecond),
		s.P50.Round(time.Microsecond),
		s.P95.Round(time.Microsecond),
		s.P99.Round(time.Microsecond),
		s.Max.Round(time.Microsecond))
}
