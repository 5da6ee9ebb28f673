package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/inspect"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/segment"
)

// Server handles MCP protocol communication
type Server struct {
	cfg       *config.Config
	log       logrus.FieldLogger
	cache     *imaging.PageCache
	segmenter *segment.Segmenter
	version   string

	// The inspection model is created on first use; most sessions only
	// segment.
	mu       sync.Mutex
	model    inspect.Model
	newModel func(ctx context.Context) (inspect.Model, error)
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option customizes a Server.
type Option func(*Server)

// WithModel sets the inspection model instead of connecting to Vertex AI.
func WithModel(m inspect.Model) Option {
	return func(s *Server) { s.model = m }
}

// WithVersion sets the version reported during the handshake.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a new MCP server instance
func New(cfg *config.Config, log logrus.FieldLogger, opts ...Option) *Server {
	cache := imaging.NewPageCache()
	s := &Server{
		cfg:       cfg,
		log:       log,
		cache:     cache,
		segmenter: segment.New(cfg, log).WithLoader(cache),
		version:   "dev",
	}
	s.newModel = func(ctx context.Context) (inspect.Model, error) {
		in := cfg.Inspection
		if in.ProjectID == "" {
			return nil, fmt.Errorf("%w: inspection.project_id is not set", config.ErrInvalid)
		}
		m, err := inspect.NewVertexModel(ctx, in.ProjectID, in.Region, in.Model)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves MCP over stdin and stdout until stdin closes.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses
// to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// Close releases the inspection model if one was opened.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// inspectionModel returns the model, connecting on first use.
func (s *Server) inspectionModel(ctx context.Context) (inspect.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		return s.model, nil
	}
	m, err := s.newModel(ctx)
	if err != nil {
		return nil, err
	}
	s.model = m
	return m, nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "gdt-inspector",
				"version": s.version,
			},
		},
	}
}
