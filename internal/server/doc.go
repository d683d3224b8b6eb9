// Package server implements an MCP (Model Context Protocol) server for the plate
// detection pipelines.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and exposes
// the same detectors as the HTTP API to MCP clients that work with image files
// rather than uploads.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Tools
//
//   - plate_image_info: dimensions and format of an image file
//   - plate_image_evict: drop cached images
//   - plate_detect: the detection cascade
//   - plate_detect_high_accuracy: localize-then-read, with the plate colour class
//   - plate_clean: text normalization and registration number extraction
//   - plate_dominant_colors: colour palette of an image or a box
//
// Images are cached by path for the lifetime of the process.
//
// # Error Handling
//
// Tool failures, panics included, are returned as JSON-RPC errors with code
// -32000 and the Go error string as data. Unparseable lines get -32700.
//
// # Usage
//
//	srv := server.New(svc, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
