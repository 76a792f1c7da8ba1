package imaging

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit R-G-B triple. Equality is exact per channel.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// BorderColor marks separator pixels between provinces.
var BorderColor = Color{0, 0, 0}

// IsBorder reports whether c is the reserved separator colour.
func (c Color) IsBorder() bool {
	return c == BorderColor
}

// Hex returns the colour as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Uint32 packs c as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ColorFromUint32 unpacks a 0xRRGGBB value. Bits above 24 are ignored.
func ColorFromUint32(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// ColorOf converts any color.Color to an 8-bit Color, dropping alpha.
func ColorOf(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Colorful returns c as a go-colorful colour for colour-space math.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
}

// Point2D is an unsigned grid coordinate.
type Point2D struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

func (p Point2D) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Pt builds a Point2D from int coordinates. Callers must have checked that
// x and y are non-negative.
func Pt(x, y int) Point2D {
	return Point2D{X: uint32(x), Y: uint32(y)}
}

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult describes the colour of one map pixel.
type ColorResult struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Hex      string   `json:"hex"`       // Hex format "#RRGGBB"
	RGB      RGBColor `json:"rgb"`       // RGB components
	HSL      HSLColor `json:"hsl"`       // HSL representation
	IsBorder bool     `json:"is_border"` // True for the reserved separator colour
}

// SampleColor extracts the colour at (x, y).
//
// Returns an error if the coordinates are outside the grid.
func SampleColor(grid *PixelGrid, x, y int) (*ColorResult, error) {
	if !grid.InBounds(x, y) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, grid.Width(), grid.Height())
	}

	c := grid.ColorAt(x, y)
	h, s, l := c.Colorful().Hsl()

	return &ColorResult{
		X:        x,
		Y:        y,
		Hex:      c.Hex(),
		RGB:      RGBColor{R: c.R, G: c.G, B: c.B},
		HSL:      HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		IsBorder: c.IsBorder(),
	}, nil
}
