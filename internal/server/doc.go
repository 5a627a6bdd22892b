// Package server implements the MCP (Model Context Protocol) server for image
// reference previews.
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
//   - image_find_reference: Reference under the cursor
//   - image_find_references: Every reference on a line
//   - image_resolve: Reference to absolute path or URL
//   - image_preview: Decode and render the reference under the cursor
//   - image_preview_line: Size summaries for every reference on a line
//
// # Error Handling
//
// An image that cannot be found, fetched or decoded is not a protocol error.
// The tool result carries found/resolved flags, the message
// "Could not resolve image for preview" and the underlying reason. JSON-RPC
// errors are reserved for malformed requests (-32602), unknown methods
// (-32601) and failed tool calls such as unknown tools or cancellation
// (-32000).
package server
