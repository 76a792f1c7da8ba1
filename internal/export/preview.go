package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/map-shapes-mcp/internal/detection"
)

// PreviewResult contains a cropped view of one shape.
type PreviewResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// ShapePreview crops the canvas to the shape's bounding box widened by
// padding pixels on each side, scales it by scale, and returns it as a
// base64 PNG. Scaling uses nearest neighbour so province edges stay sharp.
func ShapePreview(c *Canvas, s *detection.Shape, padding int, scale float64) (*PreviewResult, error) {
	if s.Box.Empty() {
		return nil, fmt.Errorf("shape has no pixels")
	}
	if padding < 0 {
		padding = 0
	}

	rect := s.Bounds().Inset(-padding).Intersect(image.Rect(0, 0, c.Width(), c.Height()))
	if rect.Empty() {
		return nil, fmt.Errorf("shape bounds %v outside %dx%d canvas", s.Bounds(), c.Width(), c.Height())
	}

	cropped := imaging.Crop(c.Image(), rect)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth > 0 && newHeight > 0 {
			cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		X:           rect.Min.X,
		Y:           rect.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
