package merge

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// level holds the working pair for one pyramid level.
type level struct {
	ref, cand    *image.NRGBA
	refW, refH   int
	candW, candH int
	sampleW      int
	sampleH      int
}

func newLevel(ref, cand *image.NRGBA) *level {
	l := &level{
		ref:   ref,
		cand:  cand,
		refW:  ref.Rect.Dx(),
		refH:  ref.Rect.Dy(),
		candW: cand.Rect.Dx(),
		candH: cand.Rect.Dy(),
	}
	l.sampleW = max(l.refW/10, minSampleSpan)
	l.sampleH = max(l.refH, minSampleSpan)
	return l
}

// downscale shrinks img by an integer factor with a box filter. Dimensions
// that round down to zero give an empty image.
func downscale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	w := img.Rect.Dx() / factor
	h := img.Rect.Dy() / factor
	if w == 0 || h == 0 {
		return &image.NRGBA{}
	}
	return imaging.Resize(img, w, h, imaging.Box)
}

// trial is one rotation candidate: a horizontal shear across the candidate's
// height and the angle it corresponds to.
type trial struct {
	shear int
	angle float64
}

// trialsFor lists the rotation trials evaluated at a scale, in search order.
func trialsFor(scale, candHeight int) []trial {
	var out []trial
	for shear := -maxShear; shear <= maxShear; shear += shearStep {
		if scale > rotationMaxScale && shear != 0 {
			continue
		}
		out = append(out, trial{
			shear: shear,
			angle: math.Atan2(float64(shear), float64(candHeight)),
		})
	}
	return out
}

// deviation returns the mean per-sample sum of absolute RGB differences with
// the candidate placed at (x, y) and rotated by t.angle. ok is false when no
// sample falls inside both images outside the dead zone.
func (l *level) deviation(x, y int, t trial) (dev float64, ok bool) {
	x0 := max(x, deadZoneWidth)
	x1 := min(x+l.sampleW, l.refW)
	y0 := max(y, 0)
	y1 := min(y+l.sampleH, l.refH)

	var sum, count int64
	if t.shear == 0 {
		x1 = min(x1, x+l.candW)
		y1 = min(y1, y+l.candH)
		if x0 >= x1 || y0 >= y1 {
			return 0, false
		}
		rp, cp := l.ref.Pix, l.cand.Pix
		n := x1 - x0
		for yc := y0; yc < y1; yc++ {
			ri := yc*l.ref.Stride + x0*4
			ci := (yc-y)*l.cand.Stride + (x0-x)*4
			for i := 0; i < n; i++ {
				sum += absDiff(rp[ri], cp[ci]) + absDiff(rp[ri+1], cp[ci+1]) + absDiff(rp[ri+2], cp[ci+2])
				ri += 4
				ci += 4
			}
		}
		count = int64(n) * int64(y1-y0)
	} else {
		if x0 >= x1 || y0 >= y1 {
			return 0, false
		}
		sin, cos := math.Sincos(t.angle)
		rp, cp := l.ref.Pix, l.cand.Pix
		for yc := y0; yc < y1; yc++ {
			v := float64(yc - y)
			for xc := x0; xc < x1; xc++ {
				u := float64(xc - x)
				mx := int(u*cos + v*sin)
				my := int(-u*sin + v*cos)
				if mx < 0 || my < 0 || mx >= l.candW || my >= l.candH {
					continue
				}
				ri := yc*l.ref.Stride + xc*4
				ci := my*l.cand.Stride + mx*4
				sum += absDiff(rp[ri], cp[ci]) + absDiff(rp[ri+1], cp[ci+1]) + absDiff(rp[ri+2], cp[ci+2])
				count++
			}
		}
	}
	if count < 1 {
		return 0, false
	}
	return float64(sum) / float64(count), true
}

func absDiff(a, b uint8) int64 {
	if a > b {
		return int64(a - b)
	}
	return int64(b - a)
}

// Deviation scores the candidate at pose against the reference at full
// resolution, using the same sampling rectangle and dead zone as the search.
// ok is false when the pose leaves no valid samples.
func Deviation(reference, candidate *Raster, pose MergeResult) (dev float64, ok bool, err error) {
	if err := validate("reference", reference); err != nil {
		return 0, false, err
	}
	if err := validate("candidate", candidate); err != nil {
		return 0, false, err
	}
	l := newLevel(reference.pix, candidate.pix)
	t := trial{angle: pose.Angle}
	if pose.Angle != 0 {
		// Any non-zero shear selects the rotated sampler.
		t.shear = 1
	}
	dev, ok = l.deviation(pose.X, pose.Y, t)
	return dev, ok, nil
}
