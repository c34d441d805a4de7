package merge

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrInvalidRaster is returned when an input image has no pixels.
var ErrInvalidRaster = errors.New("invalid raster")

// ErrInvalidPose is returned when a pose would produce an empty composite.
var ErrInvalidPose = errors.New("invalid pose")

// Raster is an owned, origin-anchored NRGBA pixel grid.
//
// A Raster never shares its pixel storage: NewRaster copies its input and
// NRGBA returns a copy. Rasters are read-only once built; the compositor
// always allocates a new one for its result.
type Raster struct {
	pix *image.NRGBA
}

// NewRaster copies img into a new Raster with its origin at (0,0).
//
// Returns ErrInvalidRaster (wrapped) if img is nil or has zero width or height.
func NewRaster(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidRaster)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidRaster, b.Dx(), b.Dy())
	}
	return &Raster{pix: imaging.Clone(img)}, nil
}

// wrapRaster takes ownership of pix without copying.
func wrapRaster(pix *image.NRGBA) *Raster {
	return &Raster{pix: pix}
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.pix.Rect.Dx() }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.pix.Rect.Dy() }

// ColorModel implements image.Image.
func (r *Raster) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (r *Raster) Bounds() image.Rectangle { return r.pix.Rect }

// At implements image.Image.
func (r *Raster) At(x, y int) color.Color { return r.pix.NRGBAAt(x, y) }

// NRGBA returns a copy of the pixel data.
func (r *Raster) NRGBA() *image.NRGBA {
	return imaging.Clone(r.pix)
}

func validate(name string, r *Raster) error {
	if r == nil || r.pix == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidRaster, name)
	}
	if r.Width() <= 0 || r.Height() <= 0 {
		return fmt.Errorf("%w: %s is %dx%d", ErrInvalidRaster, name, r.Width(), r.Height())
	}
	return nil
}
