package editor

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a pixel color value. Concrete colors are CSS-style hex strings
// ("#rrggbb"); Empty is the transparent sentinel.
type Color = string

// Empty marks a cell with nothing painted in it. It renders as fully
// transparent and compares equal to itself for fill boundary detection.
const Empty Color = "transparent"

// ParseColor converts a Color into an NRGBA value for rasterization.
// Empty and unparseable values decode as fully transparent.
func ParseColor(c Color) color.NRGBA {
	if c == Empty {
		return color.NRGBA{}
	}
	s := strings.TrimPrefix(c, "#")
	if len(s) == 3 {
		// Short form #rgb -> #rrggbb
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}

// HexColor formats RGB components as a Color string.
func HexColor(r, g, b uint8) Color {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
