package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// syntheticStroke is the line width of SyntheticPage in pixels.
const syntheticStroke = 2.5

// SyntheticPage renders a white page crossed by black antialiased lines.
// For every i in 0, 10, 20, ... up to width it draws (i,0)→(2i,height) and
// (width-i,0)→(width-2i,height). The result has no repeating structure at
// the scale of a scanner fragment, which makes it a good alignment target.
func SyntheticPage(width, height int) *image.NRGBA {
	img := imaging.New(width, height, color.White)
	if width <= 0 || height <= 0 {
		return img
	}

	z := vector.NewRasterizer(width, height)
	h := float64(height)
	for i := 0; i <= width; i += 10 {
		fi := float64(i)
		fw := float64(width)
		strokeLine(z, fi, 0, 2*fi, h, syntheticStroke)
		strokeLine(z, fw-fi, 0, fw-2*fi, h, syntheticStroke)
	}
	z.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{})
	return img
}

// strokeLine adds a quad of the given width around the segment
// (x0,y0)-(x1,y1). All quads wind the same way so overlaps stay filled.
func strokeLine(z *vector.Rasterizer, x0, y0, x1, y1, width float64) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	if dy < 0 || (dy == 0 && dx < 0) {
		x0, y0, x1, y1 = x1, y1, x0, y0
		dx, dy = -dx, -dy
	}
	nx := -dy / l * width / 2
	ny := dx / l * width / 2
	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x0-nx), float32(y0-ny))
	z.ClosePath()
}
