package merge

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	scanimg "github.com/ironsheep/scan-merge-mcp/internal/imaging"
)

// scanFixture is a synthetic page split into three overlapping fragments.
type scanFixture struct {
	page      *Raster
	fragments []*Raster
	positions []int
}

var (
	smallOnce    sync.Once
	smallFixture scanFixture
)

// smallScan returns a 1696x1200 page in three fragments of width 848 at
// x = 0, 424 and 848. Every offset is a multiple of the first pyramid scale,
// so the true poses score exactly zero at every level.
func smallScan(t *testing.T) scanFixture {
	t.Helper()
	smallOnce.Do(func() {
		smallFixture = buildFixture(t, 1696, 1200)
	})
	if smallFixture.page == nil {
		t.Fatal("fixture construction failed")
	}
	return smallFixture
}

func buildFixture(t *testing.T, w, h int) scanFixture {
	t.Helper()
	page := scanimg.SyntheticPage(w, h)
	frags, positions, err := scanimg.SplitDIN(page, 3)
	if err != nil {
		t.Fatalf("SplitDIN failed: %v", err)
	}
	out := scanFixture{page: mustRaster(t, page), positions: positions}
	for _, f := range frags {
		out.fragments = append(out.fragments, mustRaster(t, f))
	}
	return out
}

// texture is a smooth, non-repeating colour field. Channels mix sinusoids of
// incommensurate periods between roughly 100 and 600 px.
func texture(x, y float64) (r, g, b uint8) {
	clamp := func(v float64) uint8 {
		return uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	r = clamp(128 + 55*math.Sin(x/23+y/71) + 55*math.Sin(x/61))
	g = clamp(128 + 55*math.Cos(y/29) + 55*math.Sin((x-y)/47))
	b = clamp(128 + 110*math.Sin(x/17+1)*math.Cos(y/43))
	return r, g, b
}

// texturedPair renders an 848x1200 reference and a candidate of the same size
// whose true pose against it is (x, y) rotated by angle. Both sample the
// texture analytically, so no resampling error is involved.
func texturedPair(t *testing.T, x, y int, angle float64) (ref, cand *Raster) {
	t.Helper()
	const w, h = 848, 1200
	sin, cos := math.Sincos(angle)

	refImg := image.NewNRGBA(image.Rect(0, 0, w, h))
	candImg := image.NewNRGBA(image.Rect(0, 0, w, h))
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			i := py*refImg.Stride + px*4
			r, g, b := texture(float64(px), float64(py))
			refImg.Pix[i], refImg.Pix[i+1], refImg.Pix[i+2], refImg.Pix[i+3] = r, g, b, 255

			u, v := float64(px), float64(py)
			r, g, b = texture(float64(x)+u*cos-v*sin, float64(y)+u*sin+v*cos)
			candImg.Pix[i], candImg.Pix[i+1], candImg.Pix[i+2], candImg.Pix[i+3] = r, g, b, 255
		}
	}
	return mustRaster(t, refImg), mustRaster(t, candImg)
}

func mustRaster(t *testing.T, img image.Image) *Raster {
	t.Helper()
	r, err := NewRaster(img)
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	return r
}

func uniformRaster(t *testing.T, w, h int, c color.NRGBA) *Raster {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return mustRaster(t, img)
}

func samePixels(a, b *Raster) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for i := range a.pix.Pix {
		if a.pix.Pix[i] != b.pix.Pix[i] {
			return false
		}
	}
	return true
}

var (
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	white = color.NRGBA{255, 255, 255, 255}
)
