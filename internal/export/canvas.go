// Package export turns detection results into files: the recoloured
// province bitmap, optional PNG copies, per-stage debug snapshots, shape
// previews and the province definitions table.
package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/map-shapes-mcp/internal/bitmap"
	"github.com/ironsheep/map-shapes-mcp/internal/detection"
	mapimg "github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

// Canvas is an R-G-B pixel buffer that detection can paint into. It
// implements detection.DebugSink.
type Canvas struct {
	width  int
	height int
	pix    []byte
}

var _ detection.DebugSink = (*Canvas)(nil)

// NewCanvas returns a canvas filled with the border colour.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height, pix: make([]byte, width*height*3)}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// WritePixel sets the pixel at p. Points outside the canvas are ignored.
func (c *Canvas) WritePixel(p mapimg.Point2D, col mapimg.Color) {
	x, y := int(p.X), int(p.Y)
	if x >= c.width || y >= c.height {
		return
	}
	i := (y*c.width + x) * 3
	c.pix[i], c.pix[i+1], c.pix[i+2] = col.R, col.G, col.B
}

// ColorAt returns the pixel at (x, y), or the border colour outside the
// canvas.
func (c *Canvas) ColorAt(x, y int) mapimg.Color {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return mapimg.BorderColor
	}
	i := (y*c.width + x) * 3
	return mapimg.Color{R: c.pix[i], G: c.pix[i+1], B: c.pix[i+2]}
}

// Image returns a copy of the canvas as an RGBA image.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			img.SetRGBA(x, y, c.ColorAt(x, y).RGBA())
		}
	}
	return img
}

// Encode returns the canvas as a 24-bit bitmap.
func (c *Canvas) Encode() ([]byte, error) {
	return bitmap.Encode(c.width, c.height, c.pix)
}

// RenderShapes paints every pixel of every shape in its shape's unique
// colour. Pixels owned by no shape stay the border colour.
func RenderShapes(width, height int, shapes []*detection.Shape) *Canvas {
	c := NewCanvas(width, height)
	for _, s := range shapes {
		for _, px := range s.Pixels {
			c.WritePixel(px.Point, s.UniqueColor)
		}
	}
	return c
}

// WriteBMP writes the canvas to path as a bitmap, creating parent
// directories as needed.
func WriteBMP(path string, c *Canvas) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return bitmap.WriteFile(path, c.width, c.height, c.pix)
}

// WritePNG writes the canvas to path as a PNG.
func WritePNG(path string, c *Canvas) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(c.Image(), path); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
