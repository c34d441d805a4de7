package merge

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/anthonynsimon/bild/parallel"
)

const (
	// targetLevelHeight is the reference height aimed for at the coarsest level.
	targetLevelHeight = 300
	// minVerticalRange bounds the coarsest vertical window to at least ±100 px.
	minVerticalRange = 100
	// refineRadius is the half-width of the window around the previous best.
	refineRadius = 4
	// deadZoneWidth excludes the reference's own left border from scoring.
	deadZoneWidth = SeamIgnoreWidth
	// minSampleSpan is the minimum side of the sampling rectangle.
	minSampleSpan = 200
	// Rotation trials are shears of -6..6 px in steps of 3 across the
	// candidate height, evaluated only at scale 2 and finer.
	maxShear         = 6
	shearStep        = 3
	rotationMaxScale = 2
	// columnsPerProc sizes a parallel batch of window columns.
	columnsPerProc = 4
)

// SearchOptions configures a search. The zero value is valid: sequential,
// silent, no progress reporting.
type SearchOptions struct {
	// Reporter receives progress samples. Nil means no reporting.
	Reporter Reporter

	// Parallel evaluates window columns on all CPUs. Results are identical
	// to a sequential search.
	Parallel bool

	// Logf, if set, receives one line per pyramid level.
	Logf func(format string, args ...interface{})

	// now overrides the clock used to throttle progress samples.
	now func() time.Time
}

// DefaultSearchOptions returns options with parallel scanning enabled.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Parallel: true}
}

// firstScale picks the power-of-two reduction that brings the reference
// close to targetLevelHeight pixels tall.
func firstScale(refHeight int) int {
	ratio := refHeight / targetLevelHeight
	if ratio < 1 {
		return 1
	}
	return 1 << uint(math.Round(math.Log2(float64(ratio))))
}

// initialWindow is the wide window scanned at the coarsest level.
func initialWindow(refW, refH, scale int) SearchWindow {
	return SearchWindow{
		XMin:  0,
		XMax:  refW / scale,
		YMin:  min(-refH/20/scale, -minVerticalRange),
		YMax:  max(refH/20/scale, minVerticalRange),
		Scale: scale,
	}
}

// columnBatch is the number of window columns scanned between context checks
// and progress samples. It grows linearly with procs so that a coarse level
// still spans many batches on large machines.
func columnBatch(parallel bool, procs int) int {
	if !parallel {
		return 1
	}
	return max(columnsPerProc*procs, 1)
}

// columnBest is the winner of one window column.
type columnBest struct {
	y     int
	angle float64
	dev   float64
	ok    bool
}

// scanColumn evaluates every (y, trial) pair of column x in search order.
func (l *level) scanColumn(x int, w SearchWindow, trials []trial) columnBest {
	best := columnBest{dev: math.MaxFloat64}
	for y := w.YMin; y < w.YMax; y++ {
		for _, t := range trials {
			dev, ok := l.deviation(x, y, t)
			if ok && dev < best.dev {
				best = columnBest{y: y, angle: t.angle, dev: dev, ok: true}
			}
		}
	}
	return best
}

// Search finds the pose of candidate to the right of reference.
//
// The search runs a box-filtered image pyramid from the scale returned by
// firstScale down to full resolution. At each level every (x, y, rotation)
// pose in the window is scored and the first pose reaching the lowest
// deviation wins; the next level scans a ±4 px window around that pose at
// twice the resolution.
//
// The context is checked between batches of columns. Progress samples go to
// opts.Reporter at most once per second while scanning, plus once at the end
// of each level.
//
// Returns ErrInvalidRaster (wrapped) if either raster is empty.
func Search(ctx context.Context, reference, candidate *Raster, opts SearchOptions) (*SearchReport, error) {
	if err := validate("reference", reference); err != nil {
		return nil, err
	}
	if err := validate("candidate", candidate); err != nil {
		return nil, err
	}

	clock := newProgressClock(opts.Reporter, opts.now)
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	s0 := firstScale(reference.Height())
	report := &SearchReport{FirstScale: s0}
	win := initialWindow(reference.Width(), reference.Height(), s0)

	batch := columnBatch(opts.Parallel, runtime.GOMAXPROCS(0))

	var bestX, bestY int
	var bestAngle float64
	var bestDev float64

	for scale := s0; scale >= 1; scale /= 2 {
		win.Scale = scale
		l := newLevel(downscale(reference.pix, scale), downscale(candidate.pix, scale))
		trials := trialsFor(scale, l.candH)

		bestDev = math.MaxFloat64
		found := false
		results := make([]columnBest, batch)

		for start := win.XMin; start < win.XMax; start += batch {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			n := min(batch, win.XMax-start)
			cols := results[:n]
			if opts.Parallel && n > 1 {
				parallel.Line(n, func(from, to int) {
					for i := from; i < to; i++ {
						cols[i] = l.scanColumn(start+i, win, trials)
					}
				})
			} else {
				for i := range cols {
					cols[i] = l.scanColumn(start+i, win, trials)
				}
			}

			for i, c := range cols {
				if c.ok && c.dev < bestDev {
					bestDev = c.dev
					bestX, bestY, bestAngle = start+i, c.y, c.angle
					found = true
				}
			}

			if clock.due() {
				x := start + n - 1
				last := trials[len(trials)-1]
				clock.emit(ProgressSample{
					Progress:      scanProgress(s0, win, x, win.YMax-1),
					FirstScale:    s0,
					Scale:         scale,
					Window:        win,
					CurrentX:      x,
					CurrentY:      win.YMax - 1,
					CurrentAngle:  last.angle,
					BestX:         bestX,
					BestY:         bestY,
					BestAngle:     bestAngle,
					BestDeviation: bestDev,
				})
			}
		}

		logf("scale %d: window x[%d,%d) y[%d,%d), best x=%d y=%d angle=%.5f rad dev=%.8f",
			scale, win.XMin, win.XMax, win.YMin, win.YMax, bestX, bestY, bestAngle, bestDev)

		report.Levels = append(report.Levels, LevelResult{
			Window: win,
			Best:   MergeResult{X: bestX, Y: bestY, Angle: bestAngle, Deviation: bestDev},
			Found:  found,
		})
		clock.emitNow(ProgressSample{
			Progress:      levelProgress(s0, scale),
			FirstScale:    s0,
			Scale:         scale,
			Window:        win,
			CurrentX:      bestX,
			CurrentY:      bestY,
			CurrentAngle:  bestAngle,
			BestX:         bestX,
			BestY:         bestY,
			BestAngle:     bestAngle,
			BestDeviation: bestDev,
		})

		win = SearchWindow{
			XMin: bestX*2 - refineRadius,
			XMax: bestX*2 + refineRadius,
			YMin: bestY*2 - refineRadius,
			YMax: bestY*2 + refineRadius,
		}
		if scale > 1 {
			bestX *= 2
			bestY *= 2
		}
	}

	report.Result = MergeResult{X: bestX, Y: bestY, Angle: bestAngle, Deviation: bestDev}
	return report, nil
}
