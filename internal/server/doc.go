// Package server implements the MCP (Model Context Protocol) server for province map tools.
//
// This package provides a JSON-RPC 2.0 server that exposes province shape
// detection through the MCP protocol, so an MCP client can load a hand-drawn
// province map, inspect the provinces found in it and export the recoloured
// result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Map Information:
//   - map_load: Load a map and get metadata
//   - map_sample_color: Get the colour at a pixel
//
// Shape Detection:
//   - map_detect_shapes: Find all provinces, with size warnings
//   - map_shape_info: Describe one province with a preview
//
// Output:
//   - map_export: Write the recoloured bitmap, PNG, definitions and stage snapshots
//
// # Caching
//
// Decoded maps are cached by path, and so is the last detection result for
// each path. map_detect_shapes with refresh set runs detection again.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A map with no province pixels at all is reported as a failed detection,
// never as a map with zero provinces.
//
// # Usage
//
//	srv := server.NewWithConfig(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
