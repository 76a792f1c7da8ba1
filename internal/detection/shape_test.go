package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

func TestBoundingBox_EmptyUntilFirstPixel(t *testing.T) {
	var b BoundingBox
	require.True(t, b.Empty())
	require.False(t, b.Contains(imaging.Pt(0, 0)), "an empty box at the origin is not a one-pixel box")

	b.Add(imaging.Pt(0, 0))
	require.False(t, b.Empty())
	require.True(t, b.Contains(imaging.Pt(0, 0)))
	require.Equal(t, imaging.Pt(0, 0), b.BottomLeft)
	require.Equal(t, imaging.Pt(0, 0), b.TopRight)
}

func TestBoundingBox_Add(t *testing.T) {
	var b BoundingBox
	for _, p := range []imaging.Point2D{imaging.Pt(5, 5), imaging.Pt(2, 7), imaging.Pt(8, 1), imaging.Pt(4, 4)} {
		b.Add(p)
	}
	require.Equal(t, imaging.Pt(2, 1), b.BottomLeft)
	require.Equal(t, imaging.Pt(8, 7), b.TopRight)
	require.True(t, b.Contains(imaging.Pt(2, 7)))
	require.False(t, b.Contains(imaging.Pt(9, 7)))
}

func TestShape_BoundsAndDims(t *testing.T) {
	s := &Shape{}
	require.Equal(t, image.Rectangle{}, s.Bounds())

	s.add(Pixel{Point: imaging.Pt(3, 4)})
	w, h := ShapeDims(s)
	require.Zero(t, w)
	require.Zero(t, h)
	require.Equal(t, image.Rect(3, 4, 4, 5), s.Bounds())

	s.add(Pixel{Point: imaging.Pt(6, 2)})
	w, h = ShapeDims(s)
	require.Equal(t, uint32(3), w)
	require.Equal(t, uint32(2), h)
	require.Equal(t, image.Rect(3, 2, 7, 5), s.Bounds())
	require.Equal(t, 2, s.Len())
}
