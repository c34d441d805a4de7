package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

var seamCorrectionProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Replace the first 100 px of each added fragment with the image underneath and blend over the next 50 px. Hides scanner edge shadows. Default false",
	"default":     false,
}

var includeImageProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Also return the result as a base64-encoded PNG. Default false",
	"default":     false,
}

var backgroundProperty = map[string]interface{}{
	"type":        "string",
	"description": "Canvas color for areas covered by no fragment, as #RRGGBB. Default #FFFFFF",
	"default":     "#FFFFFF",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a scan (PNG, JPEG, GIF, BMP or TIFF) and return its dimensions and format. The image stays cached for later merge calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Test Material
		{
			Name:        "image_split_fragments",
			Description: "Split a page into overlapping full-height fragments as a narrower scanner would capture it. Fragment width defaults to height/√2 and fragments are spread evenly across the page. Writes one PNG per fragment.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProperty("Absolute path to the page image"),
					"output_dir": pathProperty("Directory to write fragment_<n>.png files into"),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of fragments. Default 3",
						"default":     3,
					},
				},
				"required": []string{"path", "output_dir"},
			},
		},
		{
			Name:        "image_synthetic_page",
			Description: "Render a white page crossed by thin black lines, a convenient alignment target for testing merges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output_path": pathProperty("Where to write the page; format follows the extension"),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Page width in pixels. Default 2480",
						"default":     2480,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Page height in pixels. Default 1754",
						"default":     1754,
					},
				},
				"required": []string{"output_path"},
			},
		},

		// Merge Operations
		{
			Name:        "merge_search",
			Description: "Find where a candidate scan sits to the right of a reference scan: horizontal and vertical offset plus a small rotation. Returns the pose, its deviation score and a quality rating. Streams progress notifications when the request carries a progress token.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference": pathProperty("Absolute path to the left (reference) image"),
					"candidate": pathProperty("Absolute path to the right (candidate) image"),
					"include_levels": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the best pose of every pyramid level. Default false",
						"default":     false,
					},
				},
				"required": []string{"reference", "candidate"},
			},
		},
		{
			Name:        "merge_compose",
			Description: "Paint a candidate onto a reference at a known pose (for example one returned by merge_search) and write the combined image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference":   pathProperty("Absolute path to the reference image"),
					"candidate":   pathProperty("Absolute path to the candidate image"),
					"output_path": pathProperty("Where to write the result; format follows the extension"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Candidate left edge relative to the reference",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Candidate top edge relative to the reference",
					},
					"angle": map[string]interface{}{
						"type":        "number",
						"description": "Candidate rotation in radians, clockwise. Default 0",
						"default":     0,
					},
					"seam_correction": seamCorrectionProperty,
					"background":      backgroundProperty,
					"include_image":   includeImageProperty,
				},
				"required": []string{"reference", "candidate", "output_path", "x", "y"},
			},
		},
		{
			Name:        "merge_fragments",
			Description: "Merge scans left to right into one image. Each fragment is aligned against everything merged before it. Streams progress notifications when the request carries a progress token.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the fragments, leftmost first",
						"minItems":    1,
					},
					"output_path":     pathProperty("Where to write the merged image; format follows the extension"),
					"seam_correction": seamCorrectionProperty,
					"background":      backgroundProperty,
					"include_image":   includeImageProperty,
				},
				"required": []string{"paths", "output_path"},
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
