package detection

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

// createLineShape returns a horizontal run of n pixels starting at (x, y).
func createLineShape(x, y, n int) *Shape {
	s := &Shape{}
	for i := 0; i < n; i++ {
		s.add(Pixel{Point: imaging.Pt(x+i, y)})
	}
	return s
}

func TestValidator_TooSmall(t *testing.T) {
	var buf bytes.Buffer
	v := NewValidator()
	v.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	shapes := []*Shape{createLineShape(0, 0, 3), createLineShape(0, 1, 9)}
	warnings := v.Validate(shapes, 64, 64)

	require.Len(t, warnings, 1)
	require.Equal(t, WarnTooSmall, warnings[0].Kind)
	require.Equal(t, 1, warnings[0].Shape, "shape indices are 1-based")
	require.Equal(t, 3, warnings[0].Pixels)
	require.Contains(t, buf.String(), "shape=1")
	require.Contains(t, buf.String(), "pixels=3")
}

func TestValidator_ExactlyMinimumIsTooSmall(t *testing.T) {
	warnings := NewValidator().Validate([]*Shape{createLineShape(0, 0, DefaultMinShapeSize)}, 64, 64)
	require.Len(t, warnings, 1)
	require.Equal(t, WarnTooSmall, warnings[0].Kind)
}

func TestValidator_TooLarge(t *testing.T) {
	// 80 / 8 = 10; a 12 pixel run spans 11.
	shapes := []*Shape{createLineShape(0, 0, 10), createLineShape(0, 1, 12)}
	warnings := NewValidator().Validate(shapes, 80, 80)

	require.Len(t, warnings, 1)
	w := warnings[0]
	require.Equal(t, WarnTooLarge, w.Kind)
	require.Equal(t, 2, w.Shape)
	require.Equal(t, uint32(11), w.Width)
	require.Equal(t, uint32(0), w.Height)
	require.Equal(t, 10.0, w.MaxWidth)
	require.Contains(t, w.String(), "(0, 1) to (11, 1)")
}

func TestValidator_ShapeAwayFromOriginMeasuredFromItsOwnCorner(t *testing.T) {
	s := createLineShape(70, 70, 9)
	require.Equal(t, imaging.Pt(70, 70), s.Box.BottomLeft)

	// Measured from (0,0) the run would span 78 pixels against a limit of 10.
	warnings := NewValidator().Validate([]*Shape{s}, 80, 80)
	require.Empty(t, warnings)
}

func TestValidator_BothWarnings(t *testing.T) {
	v := &Validator{MinShapeSize: 20, MaxDimensionRatio: 4}
	warnings := v.Validate([]*Shape{createLineShape(0, 0, 10)}, 16, 16)

	require.Len(t, warnings, 2)
	require.Equal(t, WarnTooSmall, warnings[0].Kind)
	require.Equal(t, WarnTooLarge, warnings[1].Kind)
	require.Equal(t, 4.0, warnings[1].MaxWidth)
}

func TestValidator_DoesNotModifyShapes(t *testing.T) {
	grid := createMap(t, propertyMap...)
	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)

	before := make([]int, len(result.Shapes))
	for i, s := range result.Shapes {
		before[i] = s.Len()
	}
	warnings := NewValidator().Validate(result.Shapes, result.Width, result.Height)
	require.NotEmpty(t, warnings)
	for i, s := range result.Shapes {
		require.Equal(t, before[i], s.Len())
	}
}
