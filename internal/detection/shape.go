package detection

import (
	"image"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
	"github.com/ironsheep/map-shapes-mcp/internal/palette"
)

// Pixel is a grid position together with its colour in the source image.
type Pixel struct {
	Point imaging.Point2D
	Color imaging.Color
}

// BoundingBox tracks the extent of a shape as pixels are added.
//
// BottomLeft holds the smallest coordinates seen and TopRight the largest.
// Both corners are (0,0) until the first pixel is added; Empty distinguishes
// that state from a genuine one-pixel box at the origin.
type BoundingBox struct {
	BottomLeft imaging.Point2D
	TopRight   imaging.Point2D

	set bool
}

// Empty reports whether no pixel has been added yet.
func (b BoundingBox) Empty() bool { return !b.set }

// Add widens the box to include p.
//
// Each axis is updated on its own: a coordinate past the top-right corner
// moves that corner, otherwise a coordinate before the bottom-left corner
// moves that one. The first pixel seeds both corners, so a shape away from
// the origin reports its real bottom-left corner. Growing from the (0,0)
// default instead would pin BottomLeft at the origin and make such shapes
// look larger to a Validator.
func (b *BoundingBox) Add(p imaging.Point2D) {
	if !b.set {
		b.BottomLeft, b.TopRight, b.set = p, p, true
		return
	}

	if p.X > b.TopRight.X {
		b.TopRight.X = p.X
	} else if p.X < b.BottomLeft.X {
		b.BottomLeft.X = p.X
	}

	if p.Y > b.TopRight.Y {
		b.TopRight.Y = p.Y
	} else if p.Y < b.BottomLeft.Y {
		b.BottomLeft.Y = p.Y
	}
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p imaging.Point2D) bool {
	return b.set &&
		p.X >= b.BottomLeft.X && p.X <= b.TopRight.X &&
		p.Y >= b.BottomLeft.Y && p.Y <= b.TopRight.Y
}

// Shape is one detected province: every pixel that resolved to the same
// root label plus the border pixels that were absorbed into it.
type Shape struct {
	// Pixels in the order they were added. Not geometrically sorted.
	Pixels []Pixel

	// SourceColor is the colour of the first pixel that created the shape.
	SourceColor imaging.Color

	// UniqueColor is the display colour handed out by the allocator.
	UniqueColor imaging.Color

	// Category is the coarse type derived from SourceColor.
	Category palette.ProvinceType

	Box BoundingBox
}

func (s *Shape) add(p Pixel) {
	s.Pixels = append(s.Pixels, p)
	s.Box.Add(p.Point)
}

// Len returns the number of pixels in the shape.
func (s *Shape) Len() int { return len(s.Pixels) }

// Bounds returns the bounding box as an image rectangle with an exclusive
// maximum, suitable for cropping. An empty shape has empty bounds.
func (s *Shape) Bounds() image.Rectangle {
	if s.Box.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(s.Box.BottomLeft.X), int(s.Box.BottomLeft.Y),
		int(s.Box.TopRight.X)+1, int(s.Box.TopRight.Y)+1,
	)
}

// ShapeDims returns the width and height of a shape's bounding box measured
// corner to corner, so a single pixel has dimensions (0, 0).
func ShapeDims(s *Shape) (width, height uint32) {
	return s.Box.TopRight.X - s.Box.BottomLeft.X, s.Box.TopRight.Y - s.Box.BottomLeft.Y
}
