package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/map-shapes-mcp/internal/detection"
)

// Options selects what WriteResult produces.
type Options struct {
	// Dir receives every file. It is created if missing.
	Dir string

	// Prefix is prepended to every file name.
	Prefix string

	// PNG also writes provinces.png next to the bitmap.
	PNG bool

	// Definitions also writes definition.csv.
	Definitions bool
}

// Written lists the files WriteResult created.
type Written struct {
	Bitmap      string `json:"bitmap"`
	PNG         string `json:"png,omitempty"`
	Definitions string `json:"definitions,omitempty"`
}

// WriteResult renders a detection result and writes it out. The bitmap
// <prefix>provinces.bmp is always written.
func WriteResult(res *detection.Result, opts Options) (*Written, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	canvas := RenderShapes(res.Width, res.Height, res.Shapes)
	out := &Written{Bitmap: filepath.Join(opts.Dir, opts.Prefix+"provinces.bmp")}
	if err := WriteBMP(out.Bitmap, canvas); err != nil {
		return nil, err
	}

	if opts.PNG {
		out.PNG = filepath.Join(opts.Dir, opts.Prefix+"provinces.png")
		if err := WritePNG(out.PNG, canvas); err != nil {
			return nil, err
		}
	}

	if opts.Definitions {
		out.Definitions = filepath.Join(opts.Dir, opts.Prefix+"definition.csv")
		f, err := os.Create(out.Definitions)
		if err != nil {
			return nil, fmt.Errorf("failed to create definitions file: %w", err)
		}
		if err := WriteDefinitions(f, res.Shapes); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to close definitions file: %w", err)
		}
	}

	return out, nil
}
