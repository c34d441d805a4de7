// Package server implements the MCP (Model Context Protocol) server for scan
// merging.
//
// This package provides a JSON-RPC 2.0 server that exposes the merge engine
// through the MCP protocol, so that an MCP client can align and stitch page
// scans that were captured in several overlapping passes.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load a scan and get metadata
//   - image_dimensions: Get width and height
//
// Test Material:
//   - image_split_fragments: Cut a page into overlapping scanner-width strips
//   - image_synthetic_page: Render a line pattern page
//
// Merge Operations:
//   - merge_search: Find the pose of a scan to the right of another
//   - merge_compose: Paint a scan onto another at a given pose
//   - merge_fragments: Merge a left-to-right sequence of scans
//
// # Progress
//
// When a tools/call request carries params._meta.progressToken, the merge
// tools send notifications/progress messages while searching. Progress runs
// from 0 to 1 over the whole call, with at most one mid-level message per
// second plus one at the end of every pyramid level.
//
// # Image Caching
//
// Loaded scans and written results are cached by path for the lifetime of the
// server process, so a result can feed the next call without re-decoding.
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
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
