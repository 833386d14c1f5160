// Package shared holds the JSON-RPC and MCP wire types.
package shared

import (
	"encoding/json"
)

// JSONRPCVersion is the version of JSON-RPC to use
const JSONRPCVersion = "2.0"

// ErrorCode represents a JSON-RPC error code
type ErrorCode int

// Standard JSON-RPC error codes
const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
)

// JSONRPCMessage is the interface that all JSON-RPC messages implement
type JSONRPCMessage interface {
	// IsRequest returns true if the message is a request
	IsRequest() bool
	// IsResponse returns true if the message is a response
	IsResponse() bool
	// IsNotification returns true if the message is a notification
	IsNotification() bool
}

// JSONRPCRequest represents a JSON-RPC request. The ID is kept verbatim so it
// can be echoed back whether the client sent a number or a string.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsRequest returns true for requests
func (r JSONRPCRequest) IsRequest() bool {
	return true
}

// IsResponse returns false for requests
func (r JSONRPCRequest) IsResponse() bool {
	return false
}

// IsNotification returns false for requests
func (r JSONRPCRequest) IsNotification() bool {
	return false
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// IsRequest returns false for responses
func (r JSONRPCResponse) IsRequest() bool {
	return false
}

// IsResponse returns true for responses
func (r JSONRPCResponse) IsResponse() bool {
	return true
}

// IsNotification returns false for responses
func (r JSONRPCResponse) IsNotification() bool {
	return false
}

// JSONRPCNotification represents a JSON-RPC notification
type JSONRPCNotification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsRequest returns false for notifications
func (n JSONRPCNotification) IsRequest() bool {
	return false
}

// IsResponse returns false for notifications
func (n JSONRPCNotification) IsResponse() bool {
	return false
}

// IsNotification returns true for notifications
func (n JSONRPCNotification) IsNotification() bool {
	return true
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NullID is the id used when the request id could not be read.
var NullID = json.RawMessage("null")

// NewErrorResponse builds an error response for id.
func NewErrorResponse(id json.RawMessage, code ErrorCode, message string, data interface{}) JSONRPCResponse {
	if len(id) == 0 {
		id = NullID
	}
	return JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &JSONRPCError{
			Code:    int(code),
			Message: message,
			Data:    data,
		},
	}
}

// DecodeMessage classifies a raw JSON-RPC message. A message with a method
// and an id is a request, with a method and no id a notification, and
// without a method a response.
func DecodeMessage(data []byte) (JSONRPCMessage, error) {
	var basic struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Method  string          `json:"method,omitempty"`
	}
	if err := json.Unmarshal(data, &basic); err != nil {
		return nil, err
	}
	if basic.JSONRPC != JSONRPCVersion {
		return nil, &VersionError{Version: basic.JSONRPC, ID: basic.ID}
	}

	switch {
	case basic.Method != "" && len(basic.ID) > 0 && string(basic.ID) != "null":
		var req JSONRPCRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return req, nil
	case basic.Method != "":
		var n JSONRPCNotification
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return n, nil
	default:
		var resp JSONRPCResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// VersionError reports a message that is not JSON-RPC 2.0.
type VersionError struct {
	Version string
	ID      json.RawMessage
}

// Error returns the error message
func (e *VersionError) Error() string {
	return "unsupported jsonrpc version " + `"` + e.Version + `"`
}

// ErrorMessage returns a standard error message for a given error code
func ErrorMessage(code ErrorCode) string {
	switch code {
	case ParseError:
		return "Parse error"
	case InvalidRequest:
		return "Invalid request"
	case MethodNotFound:
		return "Method not found"
	case InvalidParams:
		return "Invalid params"
	case InternalError:
		return "Internal error"
	case ResourceNotFound:
		return "Resource not found"
	default:
		return "Unknown error"
	}
}
