// Package mcp implements the Model Context Protocol server that exposes the
// prompt catalog over stdio.
//
// # Transport
//
// Messages are newline delimited JSON-RPC 2.0 documents. The server reads one
// line, handles it to completion and writes the response (if any) before
// reading the next, so responses leave in request order. Notifications never
// produce output. Blank lines are skipped.
//
// # Session
//
// A Session moves through four states:
//
//	Uninitialized --initialize--> AwaitingInitialized
//	AwaitingInitialized --notifications/initialized--> Ready
//	Ready --shutdown or end of input--> Terminated
//
// Requests that arrive in the wrong state get an error response and leave
// the state unchanged.
//
// # Methods
//
//   - initialize: protocol version negotiation, capabilities and server info
//   - notifications/initialized: completes the handshake
//   - prompts/list: every catalog entry with its arguments
//   - prompts/get: renders one prompt with the supplied arguments
//   - shutdown: answers {} and ends the session
//
// Wire types and error codes come from github.com/mark3labs/mcp-go/mcp. The
// catalog is passed in by the caller and only read.
package mcp
