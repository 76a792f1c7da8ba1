package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the map file (.bmp, .png, .gif or .jpg)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Map Information
		{
			Name:        "map_load",
			Description: "Load a province map and return its dimensions, format, bit depth, row padding and any decoder diagnostics. The decoded map is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "map_sample_color",
			Description: "Get the colour of one map pixel as hex, RGB and HSL, and whether it is the black border colour.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0 = left edge)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0 = top edge)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Shape Detection
		{
			Name:        "map_detect_shapes",
			Description: "Find every province in the map. Provinces are flat-coloured regions separated by black (0,0,0) border lines; border pixels are folded into a neighbouring province. Returns a summary per province, size warnings, and pixels whose colour clashes with a neighbour. Results are cached per path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_shape_size": map[string]interface{}{
						"type":        "integer",
						"description": "Warn about provinces with this many pixels or fewer. Default from config (8)",
					},
					"max_dimension_ratio": map[string]interface{}{
						"type":        "integer",
						"description": "Warn when a province's bounding box exceeds 1/N of the map in either dimension. Default from config (8)",
					},
					"max_shapes": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of province summaries to return. Default 100",
						"default":     100,
					},
					"refresh": map[string]interface{}{
						"type":        "boolean",
						"description": "Run detection again even if a cached result exists",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "map_shape_info",
			Description: "Describe one province, chosen by its 1-based index or by a pixel inside it, with a PNG preview of the recoloured map around it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "1-based province index from map_detect_shapes",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate of a pixel in the province (used when index is omitted)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate of a pixel in the province (used when index is omitted)",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the bounding box in the preview. Default 2",
						"default":     2,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Preview scale factor. Default 1.0",
						"default":     1.0,
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the PNG preview. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},

		// Output
		{
			Name:        "map_export",
			Description: "Write the recoloured province bitmap (each province in its unique colour) to a directory, optionally with a PNG copy, a definition.csv listing index;r;g;b;type per province, and bitmap snapshots after the scanning and resolving passes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the output files. Default from config (./output)",
					},
					"prefix": map[string]interface{}{
						"type":        "string",
						"description": "Prefix for every output file name. Default from config",
					},
					"png": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write provinces.png. Default from config (false)",
					},
					"definitions": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write definition.csv. Default true",
						"default":     true,
					},
					"debug_stages": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write stage snapshots. Default from config (false)",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
