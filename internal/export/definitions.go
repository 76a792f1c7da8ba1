package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ironsheep/map-shapes-mcp/internal/detection"
)

// WriteDefinitions writes one line per shape as index;r;g;b;type, where
// index is 1-based and r;g;b is the shape's unique colour.
func WriteDefinitions(w io.Writer, shapes []*detection.Shape) error {
	bw := bufio.NewWriter(w)
	for i, s := range shapes {
		c := s.UniqueColor
		if _, err := fmt.Fprintf(bw, "%d;%d;%d;%d;%s\n", i+1, c.R, c.G, c.B, s.Category); err != nil {
			return fmt.Errorf("failed to write definition %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}
