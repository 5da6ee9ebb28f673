package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/detection"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/inspect"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/report"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/segment"
)

// errMissingArgument is returned when a required tool argument is empty.
var errMissingArgument = errors.New("missing required argument")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "drawing_segment").
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
		s.log.WithField("tool", params.Name).WithError(err).Warn("tool failed")
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "drawing_detect":
		return s.handleDrawingDetect(ctx, args)
	case "drawing_segment":
		return s.handleDrawingSegment(ctx, args)
	case "drawing_block":
		return s.handleDrawingBlock(args)
	case "drawing_inspect":
		return s.handleDrawingInspect(ctx, args)
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func required(values map[string]string) error {
	for name, v := range values {
		if v == "" {
			return fmt.Errorf("%w: %s", errMissingArgument, name)
		}
	}
	return nil
}

// === Segmentation Handlers ===

type drawingArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

// DetectResult is the drawing_detect answer.
type DetectResult struct {
	Source string           `json:"source"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Blocks segment.Manifest `json:"blocks"`
}

func (s *Server) handleDrawingDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a drawingArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"path": a.Path}); err != nil {
		return nil, err
	}

	page, err := s.segmenter.Load(a.Path)
	if err != nil {
		return nil, err
	}
	m, err := s.segmenter.Detect(ctx, page)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = segment.Manifest{}
	}
	return &DetectResult{Source: a.Path, Width: page.Width, Height: page.Height, Blocks: m}, nil
}

func (s *Server) handleDrawingSegment(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a drawingArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"path": a.Path, "output_dir": a.OutputDir}); err != nil {
		return nil, err
	}
	return s.segmenter.Segment(ctx, a.Path, a.OutputDir)
}

// === Block Handlers ===

type drawingBlockArgs struct {
	Dir     string `json:"dir"`
	BlockID string `json:"block_id"`
}

// BlockResult is the drawing_block answer.
type BlockResult struct {
	ID          string                `json:"id"`
	Type        segment.BlockType     `json:"type"`
	BBox        detection.BoundingBox `json:"bbox"`
	ImageBase64 string                `json:"image_base64"`
	MimeType    string                `json:"mime_type"`
}

func (s *Server) handleDrawingBlock(args json.RawMessage) (interface{}, error) {
	var a drawingBlockArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"dir": a.Dir, "block_id": a.BlockID}); err != nil {
		return nil, err
	}

	m, err := segment.ReadManifest(filepath.Join(a.Dir, segment.ManifestFile))
	if err != nil {
		return nil, err
	}
	b, ok := m.Find(a.BlockID)
	if !ok {
		return nil, fmt.Errorf("block %s not found in %s", a.BlockID, a.Dir)
	}

	data, err := os.ReadFile(filepath.Join(a.Dir, segment.BlockImageFile(b.ID)))
	if err != nil {
		return nil, fmt.Errorf("failed to read block image: %w", err)
	}
	return &BlockResult{
		ID:          b.ID,
		Type:        b.Type,
		BBox:        b.BBox,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// === Inspection Handlers ===

type drawingInspectArgs struct {
	Dir        string `json:"dir"`
	Rules      string `json:"rules"`
	ReportName string `json:"report_name"`
}

// InspectResult is the drawing_inspect answer.
type InspectResult struct {
	Verdicts []inspect.Verdict `json:"verdicts"`
	*report.Output
}

func (s *Server) handleDrawingInspect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a drawingInspectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"dir": a.Dir, "rules": a.Rules}); err != nil {
		return nil, err
	}
	if a.ReportName == "" {
		a.ReportName = "report"
	}

	rules, err := inspect.LoadChecklist(a.Rules)
	if err != nil {
		return nil, err
	}
	model, err := s.inspectionModel(ctx)
	if err != nil {
		return nil, err
	}

	verdicts, err := inspect.New(model, s.cfg.Inspection, s.log).Inspect(ctx, a.Dir, rules)
	if err != nil {
		return nil, err
	}
	out, err := report.Write(a.Dir, a.ReportName, verdicts, rules)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"dir":        a.Dir,
		"rules":      len(rules),
		"risk":       out.Summary.OverallRisk,
		"compliance": out.Summary.CompliancePercent,
	}).Info("drawing inspected")
	return &InspectResult{Verdicts: verdicts, Output: out}, nil
}
