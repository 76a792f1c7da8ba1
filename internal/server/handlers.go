package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/map-shapes-mcp/internal/detection"
	"github.com/ironsheep/map-shapes-mcp/internal/export"
	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "map_load", "map_detect_shapes").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads the map from cache, and detection results from cache, as needed
//  4. Calls the appropriate imaging/detection/export function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Map Information
	case "map_load":
		return s.handleMapLoad(args)
	case "map_sample_color":
		return s.handleMapSampleColor(args)

	// Shape Detection
	case "map_detect_shapes":
		return s.handleMapDetectShapes(ctx, args)
	case "map_shape_info":
		return s.handleMapShapeInfo(ctx, args)

	// Output
	case "map_export":
		return s.handleMapExport(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Map Information Handlers ===

type mapLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleMapLoad(args json.RawMessage) (interface{}, error) {
	var a mapLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.cache.Info(a.Path)
}

type mapSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleMapSampleColor(args json.RawMessage) (interface{}, error) {
	var a mapSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	grid, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(grid, a.X, a.Y)
}

// === Shape Detection Handlers ===

// detectionEntry is a cached detection run for one map.
type detectionEntry struct {
	result   *detection.Result
	warnings []detection.Warning
	canvas   *export.Canvas
}

// ShapeSummary describes one detected shape without its pixel list.
type ShapeSummary struct {
	Index       int             `json:"index"` // 1-based
	Pixels      int             `json:"pixels"`
	SourceColor string          `json:"source_color"`
	UniqueColor string          `json:"unique_color"`
	Category    string          `json:"category"`
	BottomLeft  imaging.Point2D `json:"bottom_left"`
	TopRight    imaging.Point2D `json:"top_right"`
	Width       uint32          `json:"width"`
	Height      uint32          `json:"height"`
}

func summarize(i int, s *detection.Shape) ShapeSummary {
	w, h := detection.ShapeDims(s)
	return ShapeSummary{
		Index:       i + 1,
		Pixels:      s.Len(),
		SourceColor: s.SourceColor.Hex(),
		UniqueColor: s.UniqueColor.Hex(),
		Category:    s.Category.String(),
		BottomLeft:  s.Box.BottomLeft,
		TopRight:    s.Box.TopRight,
		Width:       w,
		Height:      h,
	}
}

// ProblemPixel is a pixel whose colour clashed with a neighbour.
type ProblemPixel struct {
	X     uint32 `json:"x"`
	Y     uint32 `json:"y"`
	Color string `json:"color"`
}

// DetectShapesResult is returned by map_detect_shapes.
type DetectShapesResult struct {
	Path          string              `json:"path"`
	Width         int                 `json:"width"`
	Height        int                 `json:"height"`
	ShapeCount    int                 `json:"shape_count"`
	Stats         detection.Stats     `json:"stats"`
	Shapes        []ShapeSummary      `json:"shapes"`
	Truncated     bool                `json:"truncated,omitempty"`
	Warnings      []detection.Warning `json:"warnings,omitempty"`
	ProblemPixels []ProblemPixel      `json:"problem_pixels,omitempty"`
}

type mapDetectShapesArgs struct {
	Path              string `json:"path"`
	MinShapeSize      *int   `json:"min_shape_size"`
	MaxDimensionRatio *int   `json:"max_dimension_ratio"`
	MaxShapes         int    `json:"max_shapes"`
	Refresh           bool   `json:"refresh"`
}

// detect runs detection on path, or reuses the cached run. The cached
// warnings use the configured limits; when v is not nil the returned entry
// carries warnings from v instead.
func (s *Server) detect(ctx context.Context, path string, refresh bool, v *detection.Validator) (*detectionEntry, error) {
	s.mu.Lock()
	entry, ok := s.results[path]
	s.mu.Unlock()

	if !ok || refresh {
		grid, err := s.cache.Load(path)
		if err != nil {
			return nil, err
		}
		res, err := detection.FindShapes(ctx, grid)
		if err != nil {
			return nil, detectionError(err)
		}
		entry = &detectionEntry{
			result:   res,
			warnings: s.validator().Validate(res.Shapes, res.Width, res.Height),
		}
		s.mu.Lock()
		s.results[path] = entry
		s.mu.Unlock()
	}

	if v == nil {
		return entry, nil
	}
	res := entry.result
	return &detectionEntry{result: res, warnings: v.Validate(res.Shapes, res.Width, res.Height)}, nil
}

func (s *Server) validator() *detection.Validator {
	return &detection.Validator{
		MinShapeSize:      s.config.Detection.MinShapeSize,
		MaxDimensionRatio: s.config.Detection.MaxDimensionRatio,
	}
}

func detectionError(err error) error {
	if errors.Is(err, detection.ErrNoNonBorderPixel) {
		return fmt.Errorf("detection failed, the map has no province pixels: %w", err)
	}
	return fmt.Errorf("detection failed: %w", err)
}

func (s *Server) handleMapDetectShapes(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapDetectShapesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxShapes <= 0 {
		a.MaxShapes = 100
	}

	var v *detection.Validator
	if a.MinShapeSize != nil || a.MaxDimensionRatio != nil {
		v = s.validator()
		if a.MinShapeSize != nil {
			v.MinShapeSize = *a.MinShapeSize
		}
		if a.MaxDimensionRatio != nil {
			v.MaxDimensionRatio = *a.MaxDimensionRatio
		}
	}

	entry, err := s.detect(ctx, a.Path, a.Refresh, v)
	if err != nil {
		return nil, err
	}
	res := entry.result

	out := &DetectShapesResult{
		Path:       a.Path,
		Width:      res.Width,
		Height:     res.Height,
		ShapeCount: len(res.Shapes),
		Stats:      res.Stats,
		Warnings:   entry.warnings,
	}
	for i, shape := range res.Shapes {
		if i == a.MaxShapes {
			out.Truncated = true
			break
		}
		out.Shapes = append(out.Shapes, summarize(i, shape))
	}
	for _, p := range res.ProblemPixels {
		out.ProblemPixels = append(out.ProblemPixels, ProblemPixel{X: p.Point.X, Y: p.Point.Y, Color: p.Color.Hex()})
	}
	return out, nil
}

// ShapeInfoResult is returned by map_shape_info.
type ShapeInfoResult struct {
	ShapeSummary
	Preview *export.PreviewResult `json:"preview,omitempty"`
}

type mapShapeInfoArgs struct {
	Path    string  `json:"path"`
	Index   int     `json:"index"`
	X       *int    `json:"x"`
	Y       *int    `json:"y"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
	Preview *bool   `json:"preview"`
}

func (s *Server) handleMapShapeInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapShapeInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	padding := 2
	if a.Padding != nil {
		padding = *a.Padding
	}

	entry, err := s.detect(ctx, a.Path, false, nil)
	if err != nil {
		return nil, err
	}
	res := entry.result

	var (
		shape *detection.Shape
		idx   int
	)
	switch {
	case a.Index > 0:
		if a.Index > len(res.Shapes) {
			return nil, fmt.Errorf("shape index %d out of range 1..%d", a.Index, len(res.Shapes))
		}
		idx = a.Index - 1
		shape = res.Shapes[idx]
	case a.X != nil && a.Y != nil:
		var ok bool
		shape, idx, ok = res.ShapeAt(*a.X, *a.Y)
		if !ok {
			return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", *a.X, *a.Y, res.Width, res.Height)
		}
	default:
		return nil, fmt.Errorf("either index or x and y are required")
	}

	out := &ShapeInfoResult{ShapeSummary: summarize(idx, shape)}
	if a.Preview == nil || *a.Preview {
		out.Preview, err = export.ShapePreview(s.canvas(entry), shape, padding, a.Scale)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// canvas returns the recoloured map for entry, rendering it on first use.
func (s *Server) canvas(entry *detectionEntry) *export.Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.canvas == nil {
		entry.canvas = export.RenderShapes(entry.result.Width, entry.result.Height, entry.result.Shapes)
	}
	return entry.canvas
}

// === Output Handlers ===

// ExportResult is returned by map_export.
type ExportResult struct {
	export.Written
	ShapeCount int      `json:"shape_count"`
	Stages     []string `json:"stages,omitempty"`
}

type mapExportArgs struct {
	Path        string  `json:"path"`
	OutputDir   string  `json:"output_dir"`
	Prefix      *string `json:"prefix"`
	PNG         *bool   `json:"png"`
	Definitions *bool   `json:"definitions"`
	DebugStages *bool   `json:"debug_stages"`
}

func (s *Server) handleMapExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := export.Options{
		Dir:         s.config.Output.Dir,
		Prefix:      s.config.Output.Prefix,
		PNG:         s.config.Output.WritePNG,
		Definitions: true,
	}
	if a.OutputDir != "" {
		opts.Dir = a.OutputDir
	}
	if a.Prefix != nil {
		opts.Prefix = *a.Prefix
	}
	if a.PNG != nil {
		opts.PNG = *a.PNG
	}
	if a.Definitions != nil {
		opts.Definitions = *a.Definitions
	}
	debugStages := s.config.Detection.DebugStages
	if a.DebugStages != nil {
		debugStages = *a.DebugStages
	}

	out := &ExportResult{}
	var res *detection.Result
	if debugStages {
		// Snapshots need a live sink, so this always runs detection afresh.
		grid, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		rec := export.NewStageRecorder(opts.Dir, opts.Prefix, grid.Width(), grid.Height())
		res, err = detection.FindShapes(ctx, grid,
			detection.WithSink(rec.Canvas), detection.WithStageHook(rec.Hook))
		if err != nil {
			return nil, detectionError(err)
		}
		out.Stages = rec.Paths()
		s.mu.Lock()
		s.results[a.Path] = &detectionEntry{
			result:   res,
			warnings: s.validator().Validate(res.Shapes, res.Width, res.Height),
			canvas:   rec.Canvas,
		}
		s.mu.Unlock()
	} else {
		entry, err := s.detect(ctx, a.Path, false, nil)
		if err != nil {
			return nil, err
		}
		res = entry.result
	}

	written, err := export.WriteResult(res, opts)
	if err != nil {
		return nil, err
	}
	out.Written = *written
	out.ShapeCount = len(res.Shapes)
	if abs, err := filepath.Abs(out.Bitmap); err == nil {
		out.Bitmap = abs
	}
	return out, nil
}
