package merge

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	// SeamIgnoreWidth is the width of the candidate's left strip that is
	// replaced by the reference when seam correction is on. The search skips
	// the same strip of the reference.
	SeamIgnoreWidth = 100
	// SeamFeatherWidth is the width of the linear cross-fade after the
	// ignored strip.
	SeamFeatherWidth = 50
)

// ComposeOptions configures Compose.
type ComposeOptions struct {
	// SeamCorrection replaces the candidate's left border with the reference
	// and cross-fades into the candidate.
	SeamCorrection bool

	// Background fills canvas areas covered by neither image. Nil means white.
	// It is always painted opaque.
	Background color.Color
}

// DefaultComposeOptions returns options with seam correction off and a white
// background.
func DefaultComposeOptions() ComposeOptions {
	return ComposeOptions{Background: color.White}
}

// Compose paints reference and candidate onto a new canvas of size
// (pose.X + candidate width) x (pose.Y + candidate height).
//
// The reference is drawn at the origin, then the candidate, rotated by
// pose.Angle about its top-left corner, is drawn at (pose.X, pose.Y).
// Content at negative coordinates is clipped. Inputs are not modified.
//
// Returns ErrInvalidRaster for empty inputs and ErrInvalidPose when the
// canvas would have no pixels.
func Compose(reference, candidate *Raster, pose MergeResult, opts ComposeOptions) (*Raster, error) {
	if err := validate("reference", reference); err != nil {
		return nil, err
	}
	if err := validate("candidate", candidate); err != nil {
		return nil, err
	}

	w := pose.X + candidate.Width()
	h := pose.Y + candidate.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: canvas would be %dx%d", ErrInvalidPose, w, h)
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	c := color.NRGBAModel.Convert(bg).(color.NRGBA)
	c.A = 255

	canvas := imaging.New(w, h, c)
	canvas = imaging.Overlay(canvas, reference.pix, image.Pt(0, 0), 1.0)
	canvas = imaging.Overlay(canvas, rotateCandidate(candidate.pix, pose.Angle), image.Pt(pose.X, pose.Y), 1.0)

	if opts.SeamCorrection {
		blendSeam(canvas, reference.pix, pose.X, pose.Y)
	}
	return wrapRaster(canvas), nil
}

// rotateCandidate rotates src clockwise by angle radians about its top-left
// corner. The result is sized to the largest x and y reached by the rotated
// corners; anything rotated to negative coordinates is lost. Pixels outside
// the rotated source are transparent.
func rotateCandidate(src *image.NRGBA, angle float64) *image.NRGBA {
	if angle == 0 {
		return src
	}
	sin, cos := math.Sincos(angle)
	w := float64(src.Rect.Dx())
	h := float64(src.Rect.Dy())

	// Forward mapping: dst = (u*cos - v*sin, u*sin + v*cos).
	maxX, maxY := 0.0, 0.0
	for _, p := range [][2]float64{{w, 0}, {0, h}, {w, h}} {
		maxX = math.Max(maxX, p[0]*cos-p[1]*sin)
		maxY = math.Max(maxY, p[0]*sin+p[1]*cos)
	}
	dw := int(math.Ceil(maxX))
	dh := int(math.Ceil(maxY))
	if dw <= 0 || dh <= 0 {
		return &image.NRGBA{}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	m := f64.Aff3{
		cos, -sin, 0,
		sin, cos, 0,
	}
	draw.BiLinear.Transform(dst, m, src, src.Rect, draw.Src, nil)
	return dst
}

// blendSeam restores the reference under the candidate's left border and
// feathers it into the candidate. canvas already holds the composite.
func blendSeam(canvas, ref *image.NRGBA, offX, offY int) {
	cw, ch := canvas.Rect.Dx(), canvas.Rect.Dy()
	rw, rh := ref.Rect.Dx(), ref.Rect.Dy()
	for x := 0; x < SeamIgnoreWidth+SeamFeatherWidth; x++ {
		cx := x + offX
		if cx < 0 || cx >= rw || cx >= cw {
			continue
		}
		f := 0.0
		if x >= SeamIgnoreWidth {
			f = float64(x-SeamIgnoreWidth) / SeamFeatherWidth
		}
		for y := 0; y < ch; y++ {
			cy := y + offY
			if cy < 0 || cy >= rh || cy >= ch {
				continue
			}
			ri := cy*ref.Stride + cx*4
			ci := cy*canvas.Stride + cx*4
			rp := ref.Pix[ri : ri+4 : ri+4]
			cp := canvas.Pix[ci : ci+4 : ci+4]
			cp[0] = blendChannel(rp[0], cp[0], f)
			cp[1] = blendChannel(rp[1], cp[1], f)
			cp[2] = blendChannel(rp[2], cp[2], f)
			cp[3] = 255
		}
	}
}

// blendChannel mixes a reference and composite channel value, f being the
// composite's weight.
func blendChannel(ref, comp uint8, f float64) uint8 {
	v := math.Round(float64(ref)*(1-f) + float64(comp)*f)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
