package marker

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is an opaque RGB fill.
type Color struct {
	R, G, B uint8
}

var Red = Color{R: 255}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	if name := c.Name(); name != "" {
		return name
	}
	return c.Hex()
}

// Name returns the CSS color name for c, or "" when it has none.
func (c Color) Name() string {
	for _, name := range colornames.Names {
		v := colornames.Map[name]
		if v.R == c.R && v.G == c.G && v.B == c.B {
			return name
		}
	}
	return ""
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// ParseColor accepts #rgb, #rrggbb, "r,g,b" and CSS color names.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("invalid color %q: want r,g,b", s)
		}
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
			}
			rgb[i] = uint8(n)
		}
		return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
	}

	if v, ok := colornames.Map[s]; ok {
		return Color{R: v.R, G: v.G, B: v.B}, nil
	}

	return Color{}, fmt.Errorf("unknown color %q", s)
}

func parseHex(h string) (Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color #%s", h)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color #%s: %w", h, err)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}
