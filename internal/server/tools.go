package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "drawing_detect",
			Description: "Detect the title block, notes block and orthographic views of an engineering drawing (page 1 of a PDF, or a raster). Returns the block manifest without writing files.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the drawing (PDF, PNG or JPEG)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "drawing_segment",
			Description: "Segment a drawing and write one PNG per block, blocks.json and a segmented_blocks.png overlay into an output directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the drawing (PDF, PNG or JPEG)",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write the block images and manifest into (created if missing)",
					},
				},
				"required": []string{"path", "output_dir"},
			},
		},
		{
			Name:        "drawing_block",
			Description: "Return one block of a segmented directory as base64-encoded PNG, with its type and bounding box. Use this to look closely at a single view or the notes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory produced by drawing_segment",
					},
					"block_id": map[string]interface{}{
						"type":        "string",
						"description": "Block id from blocks.json (e.g. TITLE_BLOCK, NOTES, VIEW_1)",
					},
				},
				"required": []string{"dir", "block_id"},
			},
		},
		{
			Name:        "drawing_inspect",
			Description: "Check a segmented drawing against a GD&T rule checklist (ASME Y14.5-2018) with a vision model, then write a colour-coded Excel report and summary.json.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory produced by drawing_segment",
					},
					"rules": map[string]interface{}{
						"type":        "string",
						"description": "Path to the checklist JSON ({\"rules\": [{\"id\", \"description\", \"category\"}]})",
					},
					"report_name": map[string]interface{}{
						"type":        "string",
						"description": "Workbook name without extension (default \"report\")",
						"default":     "report",
					},
				},
				"required": []string{"dir", "rules"},
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
