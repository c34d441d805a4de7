package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DINFragmentWidth is the width of a scanner bed whose long side equals
// pageHeight in the DIN aspect ratio 1:√2 (e.g. an A4 scanner against an A3
// page held landscape).
func DINFragmentWidth(pageHeight int) int {
	return int(float64(pageHeight) / math.Sqrt2)
}

// DINFragmentPositions returns count left edges that spread fragments of
// DINFragmentWidth(height) evenly across a page of the given width. The first
// fragment starts at 0 and the last ends at width.
func DINFragmentPositions(width, height, count int) ([]int, error) {
	if count < 1 {
		return nil, fmt.Errorf("fragment count must be at least 1, got %d", count)
	}
	fw := DINFragmentWidth(height)
	if fw <= 0 || fw > width {
		return nil, fmt.Errorf("fragment width %d does not fit page width %d", fw, width)
	}
	if count == 1 {
		return []int{0}, nil
	}
	positions := make([]int, count)
	for i := range positions {
		positions[i] = i * (width - fw) / (count - 1)
	}
	return positions, nil
}

// SplitFragments cuts full-height vertical strips of the given width out of
// img, one per left edge in positions. Positions are relative to the image's
// left edge. Each fragment is a new image anchored at (0,0).
func SplitFragments(img image.Image, positions []int, width int) ([]*image.NRGBA, error) {
	bounds := img.Bounds()
	if width <= 0 {
		return nil, fmt.Errorf("invalid fragment width: %d", width)
	}
	out := make([]*image.NRGBA, 0, len(positions))
	for i, x := range positions {
		if x < 0 || x+width > bounds.Dx() {
			return nil, fmt.Errorf("fragment %d at x=%d width %d outside image width %d",
				i, x, width, bounds.Dx())
		}
		r := image.Rect(bounds.Min.X+x, bounds.Min.Y, bounds.Min.X+x+width, bounds.Max.Y)
		out = append(out, imaging.Crop(img, r))
	}
	return out, nil
}

// SplitDIN splits img into count evenly spread DIN-width fragments.
func SplitDIN(img image.Image, count int) ([]*image.NRGBA, []int, error) {
	b := img.Bounds()
	positions, err := DINFragmentPositions(b.Dx(), b.Dy(), count)
	if err != nil {
		return nil, nil, err
	}
	frags, err := SplitFragments(img, positions, DINFragmentWidth(b.Dy()))
	if err != nil {
		return nil, nil, err
	}
	return frags, positions, nil
}
