package mcp

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only protocol version accepted
const JSONRPCVersion = "2.0"

// ProtocolVersion is the MCP revision announced on initialize
const ProtocolVersion = "2024-11-05"

// Request is a JSON-RPC 2.0 request. A nil ID marks a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether no response is expected
func (r Request) IsNotification() bool {
	return r.ID == nil
}

// Response is a JSON-RPC 2.0 response
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error payload
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewRequest builds a request envelope for method
func NewRequest(id any, method string, params any) (Request, error) {
	payload, err := marshalParams(params)
	if err != nil {
		return Request{}, err
	}
	return Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  payload,
	}, nil
}

// SuccessResponse builds a success response with the provided result payload.
func SuccessResponse(id, result any) Response {
	return Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// ErrorResponse builds a response containing the supplied error object.
func ErrorResponse(id any, code int, message string, data ...any) Response {
	var extra any
	if len(data) > 0 {
		extra = data[0]
	}
	return Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    extra,
		},
	}
}

// ensureVersion validates that a decoded message has the expected jsonrpc value.
func ensureVersion(v string) error {
	if v == JSONRPCVersion {
		return nil
	}
	if v == "" {
		return fmt.Errorf("missing jsonrpc version")
	}
	return fmt.Errorf("unsupported jsonrpc version: %s", v)
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return raw, nil
}
