package detection

import (
	"fmt"
	"log/slog"

	"github.com/ironsheep/map-shapes-mcp/internal/logging"
)

// Default validation limits.
const (
	DefaultMinShapeSize      = 8
	DefaultMaxDimensionRatio = 8
)

// WarningKind classifies a validation warning.
type WarningKind string

const (
	WarnTooSmall WarningKind = "too_small"
	WarnTooLarge WarningKind = "too_large"
)

// Warning is an advisory finding about one shape. It never stops a run.
type Warning struct {
	Kind WarningKind `json:"kind"`

	// Shape is the 1-based position of the shape in the result.
	Shape int `json:"shape"`

	Pixels int    `json:"pixels,omitempty"`
	Width  uint32 `json:"width,omitempty"`
	Height uint32 `json:"height,omitempty"`

	// MaxWidth and MaxHeight are the allowed bounding box dimensions.
	MaxWidth  float64 `json:"max_width,omitempty"`
	MaxHeight float64 `json:"max_height,omitempty"`

	Message string `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Validator checks finished shapes against province size rules.
type Validator struct {
	// MinShapeSize is the pixel count a shape must exceed.
	MinShapeSize int

	// MaxDimensionRatio bounds each bounding box dimension to
	// 1/MaxDimensionRatio of the image dimension.
	MaxDimensionRatio int

	// Logger receives each warning. Nil means the package logger.
	Logger *slog.Logger
}

// NewValidator returns a Validator with the default limits.
func NewValidator() *Validator {
	return &Validator{
		MinShapeSize:      DefaultMinShapeSize,
		MaxDimensionRatio: DefaultMaxDimensionRatio,
	}
}

// Validate inspects shapes found in a width x height image and returns a
// warning for every shape that is too small or whose bounding box is too
// large. Shapes are not modified.
func (v *Validator) Validate(shapes []*Shape, width, height int) []Warning {
	log := v.Logger
	if log == nil {
		log = logging.Logger()
	}
	ratio := v.MaxDimensionRatio
	if ratio <= 0 {
		ratio = DefaultMaxDimensionRatio
	}
	maxW := float64(width) / float64(ratio)
	maxH := float64(height) / float64(ratio)

	var warnings []Warning
	for i, s := range shapes {
		index := i + 1

		if n := s.Len(); n <= v.MinShapeSize {
			w := Warning{
				Kind:   WarnTooSmall,
				Shape:  index,
				Pixels: n,
				Message: fmt.Sprintf("shape %d has only %d pixels; provinces need more than %d",
					index, n, v.MinShapeSize),
			}
			log.Warn(w.Message, "shape", index, "pixels", n)
			warnings = append(warnings, w)
		}

		if sw, sh := ShapeDims(s); float64(sw) > maxW || float64(sh) > maxH {
			w := Warning{
				Kind:      WarnTooLarge,
				Shape:     index,
				Width:     sw,
				Height:    sh,
				MaxWidth:  maxW,
				MaxHeight: maxH,
				Message: fmt.Sprintf("shape %d has a %dx%d bounding box, larger than 1/%d of %dx%d (%.1fx%.1f); bounds are %s to %s",
					index, sw, sh, ratio, width, height, maxW, maxH, s.Box.BottomLeft, s.Box.TopRight),
			}
			log.Warn(w.Message, "shape", index, "width", sw, "height", sh, "max_width", maxW, "max_height", maxH)
			warnings = append(warnings, w)
		}
	}
	return warnings
}
