package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var (
	lineProperty = map[string]interface{}{
		"type":        "string",
		"description": "One line of source text that may contain image references",
	}
	cursorProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Cursor position within the line, in characters (0-based)",
		"minimum":     0,
	}
	sourcePathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path of the document the line comes from. Relative image paths are resolved against it and its project root",
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Reference Finding
		{
			Name:        "image_find_reference",
			Description: "Find the image reference (file path, URL, pack URI or base64 data URI) under the cursor in a line of text. Does not touch the filesystem or network.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line":        lineProperty,
					"cursor":      cursorProperty,
					"source_path": sourcePathProperty,
				},
				"required": []string{"line", "cursor"},
			},
		},
		{
			Name:        "image_find_references",
			Description: "List every image reference in a line of text, in order of position.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line":        lineProperty,
					"source_path": sourcePathProperty,
				},
				"required": []string{"line"},
			},
		},

		// Resolution
		{
			Name:        "image_resolve",
			Description: "Resolve the image reference under the cursor to an absolute file path or URL, searching the project when a relative path does not exist next to the document.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line":        lineProperty,
					"cursor":      cursorProperty,
					"source_path": sourcePathProperty,
				},
				"required": []string{"line", "cursor"},
			},
		},

		// Preview
		{
			Name:        "image_preview",
			Description: "Resolve, fetch and decode the image under the cursor. Returns dimensions, size, format and average color, plus a downscaled PNG preview. SVG is rasterized to fit a 500x500 box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line":        lineProperty,
					"cursor":      cursorProperty,
					"source_path": sourcePathProperty,
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the rendered preview as an image. Default true",
						"default":     true,
					},
					"ocr": map[string]interface{}{
						"type":        "boolean",
						"description": "Extract text from the preview with Tesseract. Default false",
						"default":     false,
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code for OCR, e.g. 'eng' or 'eng+deu'",
					},
				},
				"required": []string{"line", "cursor"},
			},
		},
		{
			Name:        "image_preview_line",
			Description: "Resolve and decode every image reference in a line. Returns a 'WxH (size)' summary per reference without image data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line":        lineProperty,
					"source_path": sourcePathProperty,
				},
				"required": []string{"line"},
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
