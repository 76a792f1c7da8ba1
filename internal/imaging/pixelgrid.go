package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"

	"github.com/ironsheep/map-shapes-mcp/internal/bitmap"
)

// PixelGrid is a read-only view over decoded R-G-B pixel data.
//
// Pixels are stored row-major, top-to-bottom, 3 bytes per pixel. The grid
// never changes after construction.
type PixelGrid struct {
	width  int
	height int
	pix    []byte
}

// NewPixelGrid wraps pix, which must hold exactly width*height R-G-B triples.
// The slice is retained, not copied; callers must not modify it afterwards.
func NewPixelGrid(width, height int, pix []byte) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	if len(pix) != width*height*3 {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d for %dx%d", len(pix), width*height*3, width, height)
	}
	return &PixelGrid{width: width, height: height, pix: pix}, nil
}

// FromBitmap builds a grid over a decoded bitmap's pixels.
func FromBitmap(bm *bitmap.Bitmap) (*PixelGrid, error) {
	return NewPixelGrid(bm.Width, bm.Height, bm.Pix)
}

// FromImage copies any decoded image into a new grid. Alpha is discarded.
func FromImage(img image.Image) (*PixelGrid, error) {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", w, h)
	}

	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		out := pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			out[x*3] = row[x*4]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return &PixelGrid{width: w, height: h, pix: pix}, nil
}

// Width returns the grid width in pixels.
func (g *PixelGrid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *PixelGrid) Height() int { return g.height }

// Len returns the number of pixels.
func (g *PixelGrid) Len() int { return g.width * g.height }

// InBounds reports whether (x, y) addresses a pixel of the grid.
func (g *PixelGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Index returns the row-major index of (x, y). The coordinates must be in
// bounds.
func (g *PixelGrid) Index(x, y int) int {
	return y*g.width + x
}

// ColorAt returns the colour at (x, y), or BorderColor when (x, y) is
// outside the grid.
func (g *PixelGrid) ColorAt(x, y int) Color {
	if !g.InBounds(x, y) {
		return BorderColor
	}
	i := (y*g.width + x) * 3
	return Color{R: g.pix[i], G: g.pix[i+1], B: g.pix[i+2]}
}

// ColorAtIndex returns the colour of the pixel at a row-major index.
func (g *PixelGrid) ColorAtIndex(idx int) Color {
	i := idx * 3
	return Color{R: g.pix[i], G: g.pix[i+1], B: g.pix[i+2]}
}

// Image copies the grid into an *image.RGBA.
func (g *PixelGrid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	for i, j := 0, 0; i < len(g.pix); i, j = i+3, j+4 {
		img.Pix[j] = g.pix[i]
		img.Pix[j+1] = g.pix[i+1]
		img.Pix[j+2] = g.pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}
