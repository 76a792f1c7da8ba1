package detection

import (
	"testing"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

// testColors maps the characters used in test maps to pixel colours.
var testColors = map[byte]imaging.Color{
	'#': imaging.BorderColor,
	'W': {R: 255, G: 255, B: 255},
	'R': {R: 200, G: 40, B: 40},
	'G': {R: 60, G: 170, B: 60},
	'B': {R: 20, G: 40, B: 140},
}

// createMap builds a grid from rows of equal length, one character per
// pixel, using testColors.
func createMap(t *testing.T, rows ...string) *imaging.PixelGrid {
	t.Helper()
	width, height := len(rows[0]), len(rows)
	pix := make([]byte, 0, width*height*3)
	for _, row := range rows {
		if len(row) != width {
			t.Fatalf("row %q has length %d, want %d", row, len(row), width)
		}
		for i := 0; i < len(row); i++ {
			c, ok := testColors[row[i]]
			if !ok {
				t.Fatalf("unknown map character %q", row[i])
			}
			pix = append(pix, c.R, c.G, c.B)
		}
	}
	grid, err := imaging.NewPixelGrid(width, height, pix)
	if err != nil {
		t.Fatalf("NewPixelGrid failed: %v", err)
	}
	return grid
}
