// Package server implements the MCP (Model Context Protocol) server for
// drawing segmentation and GD&T inspection.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never corrupt the protocol stream.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - drawing_detect: Detect blocks on page 1 and return the manifest
//   - drawing_segment: Detect and write block PNGs, blocks.json and the overlay
//   - drawing_block: Return one segmented block as base64 PNG
//   - drawing_inspect: Run a rule checklist against a segmented directory
//     and write the Excel report and summary.json
//
// # Page Caching
//
// Normalized pages are cached by path for the lifetime of the process, so
// detecting and then segmenting the same drawing rasterizes it once.
//
// # Inspection Model
//
// drawing_inspect connects to Vertex AI on first use with the project,
// region and model from the inspection configuration. A session that only
// segments never needs credentials.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger, server.WithVersion(version))
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
