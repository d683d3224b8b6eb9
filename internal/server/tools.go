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
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image
		{
			Name:        "plate_image_info",
			Description: "Load an image and return its dimensions, format, file size and the size left after the plate-frame border trim. The image stays cached for the other tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_image_evict",
			Description: "Drop an image from the cache so the next call rereads it from disk. Without a path the whole cache is cleared.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
			},
		},

		// Detection
		{
			Name:        "plate_detect",
			Description: "Read the registration number of a vehicle photo with the multi-strategy cascade (direct read, equalized read, localized regions, multi-line join).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_detect_high_accuracy",
			Description: "Localize plates and read only the localized boxes. Returns the best reading with its box, the detector and reader confidences, and the plate colour class.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_crop": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the plate crop as base64-encoded PNG",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Text
		{
			Name:        "plate_clean",
			Description: "Normalize raw text to uppercase alphanumerics and extract an Indian registration number from it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw text as read from a plate",
					},
				},
				"required": []string{"text"},
			},
		},

		// Colour
		{
			Name:        "plate_dominant_colors",
			Description: "Return the most frequent colours of an image or of a box in it, and the plate colour class of the most frequent one.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colours to return",
						"default":     5,
					},
					"box": map[string]interface{}{
						"type":        "object",
						"description": "Optional region {x1, y1, x2, y2}; x2 and y2 are exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
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
