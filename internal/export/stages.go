package export

import (
	"fmt"
	"path/filepath"

	"github.com/ironsheep/map-shapes-mcp/internal/detection"
	"github.com/ironsheep/map-shapes-mcp/internal/logging"
)

// StageRecorder saves the canvas after the scanning and resolving passes so
// the provisional labelling can be inspected. Pass Canvas to detection with
// WithSink and Hook with WithStageHook.
type StageRecorder struct {
	Canvas *Canvas

	dir    string
	prefix string
	n      int
	paths  []string
}

// NewStageRecorder returns a recorder that writes
// <dir>/<prefix>stage-<n>-<stage>.bmp.
func NewStageRecorder(dir, prefix string, width, height int) *StageRecorder {
	return &StageRecorder{
		Canvas: NewCanvas(width, height),
		dir:    dir,
		prefix: prefix,
	}
}

// Hook writes a snapshot after the scanning and resolving passes. The final
// state is left to the caller.
func (r *StageRecorder) Hook(stage detection.Stage) error {
	if stage != detection.Scanning && stage != detection.Resolving {
		return nil
	}
	r.n++
	path := filepath.Join(r.dir, fmt.Sprintf("%sstage-%d-%s.bmp", r.prefix, r.n, stage))
	if err := WriteBMP(path, r.Canvas); err != nil {
		return err
	}
	logging.Logger().Debug("wrote stage snapshot", "stage", stage.String(), "path", path)
	r.paths = append(r.paths, path)
	return nil
}

// Paths returns the snapshot files written so far.
func (r *StageRecorder) Paths() []string {
	return r.paths
}
