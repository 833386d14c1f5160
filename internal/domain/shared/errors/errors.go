// Package errors maps domain failures onto JSON-RPC error responses.
package errors

import (
	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/shared"
)

// MCPError is an error ready to be sent as a JSON-RPC error object.
type MCPError struct {
	Code    shared.ErrorCode
	Message string
	Data    interface{}
	Cause   error
}

// Error returns the error message
func (e *MCPError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *MCPError) Unwrap() error {
	return e.Cause
}

// JSONRPC returns the wire form of the error.
func (e *MCPError) JSONRPC() *shared.JSONRPCError {
	return &shared.JSONRPCError{
		Code:    int(e.Code),
		Message: e.Message,
		Data:    e.Data,
	}
}

// New creates an MCPError with a code and message.
func New(code shared.ErrorCode, message string, data interface{}) *MCPError {
	return &MCPError{Code: code, Message: message, Data: data}
}

// NewInvalidParamsError creates an invalid params error.
func NewInvalidParamsError(message string, cause error) *MCPError {
	return &MCPError{Code: shared.InvalidParams, Message: message, Cause: cause}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *MCPError {
	return &MCPError{Code: shared.InternalError, Message: message, Cause: cause}
}

// FromError maps err to the protocol error a client should see.
func FromError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var unresolved *domain.UnresolvedResourceError
	if errors.As(err, &unresolved) {
		return &MCPError{
			Code:    shared.ResourceNotFound,
			Message: unresolved.Error(),
			Data:    map[string]string{"uri": unresolved.URI},
			Cause:   err,
		}
	}

	var unknownTool *domain.UnknownToolError
	if errors.As(err, &unknownTool) {
		return &MCPError{
			Code:    shared.InvalidParams,
			Message: unknownTool.Error(),
			Data:    map[string]string{"tool": unknownTool.Name},
			Cause:   err,
		}
	}

	var invalidArgs *domain.InvalidArgumentsError
	if errors.As(err, &invalidArgs) {
		data := map[string]string{"tool": invalidArgs.Tool}
		if invalidArgs.Field != "" {
			data["field"] = invalidArgs.Field
		}
		return &MCPError{
			Code:    shared.InvalidParams,
			Message: invalidArgs.Error(),
			Data:    data,
			Cause:   err,
		}
	}

	return NewInternalError(err.Error(), err)
}

// IsResourceNotFound reports whether err maps to a resource-not-found error.
func IsResourceNotFound(err error) bool {
	return err != nil && FromError(err).Code == shared.ResourceNotFound
}

// IsInvalidParams reports whether err maps to an invalid params error.
func IsInvalidParams(err error) bool {
	return err != nil && FromError(err).Code == shared.InvalidParams
}
