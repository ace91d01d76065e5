package mcp

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// incoming is a decoded request or notification.
type incoming struct {
	id     mcp.RequestId
	hasID  bool
	method string
	params json.RawMessage
}

func (m incoming) isNotification() bool {
	return !m.hasID
}

// decodeError carries the JSON-RPC error code for a line that could not be
// turned into a message, plus the id when one was readable.
type decodeError struct {
	code int
	msg  string
	id   mcp.RequestId
}

func (e *decodeError) Error() string { return e.msg }

var errEmptyLine = errors.New("empty line")

// decodeMessage parses one line. Invalid JSON is a parse error; valid JSON
// that is not a request object is an invalid request.
func decodeMessage(line []byte) (incoming, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return incoming{}, errEmptyLine
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		if json.Valid(line) {
			return incoming{}, &decodeError{code: mcp.INVALID_REQUEST, msg: "invalid request: expected a JSON object"}
		}
		return incoming{}, &decodeError{code: mcp.PARSE_ERROR, msg: "parse error: " + err.Error()}
	}

	var msg incoming
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &msg.id); err != nil {
			return incoming{}, &decodeError{code: mcp.INVALID_REQUEST, msg: "invalid request: id must be a string or number"}
		}
		msg.hasID = true
	}

	raw, ok := fields["method"]
	if !ok {
		return incoming{}, &decodeError{code: mcp.INVALID_REQUEST, msg: "invalid request: missing method", id: msg.id}
	}
	if err := json.Unmarshal(raw, &msg.method); err != nil || msg.method == "" {
		return incoming{}, &decodeError{code: mcp.INVALID_REQUEST, msg: "invalid request: method must be a non-empty string", id: msg.id}
	}

	if p, ok := fields["params"]; ok && !bytes.Equal(bytes.TrimSpace(p), []byte("null")) {
		msg.params = p
	}
	return msg, nil
}

func resultMessage(id mcp.RequestId, result any) mcp.JSONRPCResponse {
	return mcp.JSONRPCResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Result:  result,
	}
}

func errorMessage(id mcp.RequestId, code int, msg string) mcp.JSONRPCError {
	return mcp.NewJSONRPCError(id, code, msg, nil)
}
