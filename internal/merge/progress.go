package merge

import (
	"math"
	"time"
)

// ProgressSample is a read-only snapshot of a running search.
//
// Progress runs from 0 to 1 across all pyramid levels. Window and the
// Current/Best poses are expressed in the pixels of the current level, so
// they grow by a factor of two from one level to the next.
type ProgressSample struct {
	Progress      float64      `json:"progress"`
	FirstScale    int          `json:"first_scale"`
	Scale         int          `json:"scale"`
	Window        SearchWindow `json:"window"`
	CurrentX      int          `json:"current_x"`
	CurrentY      int          `json:"current_y"`
	CurrentAngle  float64      `json:"current_angle"`
	BestX         int          `json:"best_x"`
	BestY         int          `json:"best_y"`
	BestAngle     float64      `json:"best_angle"`
	BestDeviation float64      `json:"best_deviation"`
}

// Reporter receives progress samples from a search.
//
// Update runs synchronously on the searching goroutine; a slow Update stalls
// the search. Samples must not be retained after Update returns if the
// reporter relies on them being current.
type Reporter interface {
	Update(sample ProgressSample)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(sample ProgressSample)

// Update calls f(sample).
func (f ReporterFunc) Update(sample ProgressSample) { f(sample) }

// NopReporter discards every sample.
type NopReporter struct{}

// Update does nothing.
func (NopReporter) Update(ProgressSample) {}

// progressClock throttles mid-level samples to one per interval. It is owned
// by a single search call.
type progressClock struct {
	reporter Reporter
	now      func() time.Time
	interval time.Duration
	last     time.Time
}

func newProgressClock(r Reporter, now func() time.Time) *progressClock {
	if r == nil {
		r = NopReporter{}
	}
	if now == nil {
		now = time.Now
	}
	return &progressClock{reporter: r, now: now, interval: time.Second, last: now()}
}

// due reports whether the interval has elapsed since the last throttled sample.
func (c *progressClock) due() bool {
	return c.now().Sub(c.last) > c.interval
}

// emit sends a throttled sample and restarts the interval.
func (c *progressClock) emit(s ProgressSample) {
	c.reporter.Update(s)
	c.last = c.now()
}

// emitNow sends a sample without touching the throttle.
func (c *progressClock) emitNow(s ProgressSample) {
	c.reporter.Update(s)
}

// scanProgress estimates overall progress while scanning column x, row y of
// the window at the given scale.
func scanProgress(firstScale int, w SearchWindow, x, y int) float64 {
	steps := math.Log2(float64(firstScale)) + 1
	done := (math.Log2(float64(firstScale)) - math.Log2(float64(w.Scale))) / steps
	xSteps := float64(w.XMax - w.XMin)
	ySteps := float64(w.YMax - w.YMin)
	if xSteps <= 0 || ySteps <= 0 {
		return done
	}
	xProgress := float64(x-w.XMin) / xSteps
	yProgress := float64(y-w.YMin) / ySteps
	return done + xProgress/steps + yProgress/xSteps/steps
}

// levelProgress is the overall progress once the level at scale has finished.
func levelProgress(firstScale, scale int) float64 {
	steps := math.Log2(float64(firstScale)) + 1
	return (math.Log2(float64(firstScale)) - math.Log2(float64(scale)) + 1) / steps
}
