package imaging

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a background color given as "#RRGGBB", "#RGB" or the
// same without the leading '#'. An empty string yields opaque white.
// The result is always opaque.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexColor formats c as "#rrggbb", ignoring alpha.
func HexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent; report the raw channels.
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return cf.Clamped().Hex()
}
