package domain

import "fmt"

// Error represents a domain error with an associated code.
type Error struct {
	Message string
	Code    int
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new domain error with the given message and code.
func NewError(message string, code int) *Error {
	return &Error{
		Message: message,
		Code:    code,
	}
}

// UnresolvedResourceError indicates that no registered template matched a URI.
type UnresolvedResourceError struct {
	URI string
	Err *Error
}

// Error returns the error message.
func (e *UnresolvedResourceError) Error() string {
	return e.Err.Error()
}

// NewUnresolvedResourceError creates a new UnresolvedResourceError.
func NewUnresolvedResourceError(uri string) *UnresolvedResourceError {
	return &UnresolvedResourceError{
		URI: uri,
		Err: NewError(
			fmt.Sprintf("resource %s not found", uri),
			404,
		),
	}
}

// UnknownToolError indicates that a requested tool was not registered.
type UnknownToolError struct {
	Name string
	Err  *Error
}

// Error returns the error message.
func (e *UnknownToolError) Error() string {
	return e.Err.Error()
}

// NewUnknownToolError creates a new UnknownToolError.
func NewUnknownToolError(name string) *UnknownToolError {
	return &UnknownToolError{
		Name: name,
		Err: NewError(
			fmt.Sprintf("tool %s not found", name),
			404,
		),
	}
}

// InvalidArgumentsError indicates that tool arguments do not fit the declared input shape.
type InvalidArgumentsError struct {
	Tool    string
	Field   string
	Message string
	Err     *Error
}

// Error returns the error message.
func (e *InvalidArgumentsError) Error() string {
	return e.Err.Error()
}

// NewInvalidArgumentsError creates a new InvalidArgumentsError. Field may be
// empty when the arguments as a whole are malformed.
func NewInvalidArgumentsError(tool, field, message string) *InvalidArgumentsError {
	text := fmt.Sprintf("invalid arguments for tool %s: %s", tool, message)
	if field != "" {
		text = fmt.Sprintf("invalid arguments for tool %s: field %s: %s", tool, field, message)
	}
	return &InvalidArgumentsError{
		Tool:    tool,
		Field:   field,
		Message: message,
		Err:     NewError(text, 400),
	}
}

// SchemaLoadError indicates that a schema document is missing, unreadable or
// not a valid JSON Schema.
type SchemaLoadError struct {
	Path  string
	Cause error
	Err   *Error
}

// Error returns the error message.
func (e *SchemaLoadError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// NewSchemaLoadError creates a new SchemaLoadError. Path may be empty when
// the schema was compiled from memory.
func NewSchemaLoadError(path string, cause error) *SchemaLoadError {
	text := fmt.Sprintf("loading schema: %v", cause)
	if path != "" {
		text = fmt.Sprintf("loading schema %s: %v", path, cause)
	}
	return &SchemaLoadError{
		Path:  path,
		Cause: cause,
		Err:   NewError(text, 500),
	}
}

// PayloadParseError indicates that a raw payload is not valid JSON.
type PayloadParseError struct {
	Cause error
	Err   *Error
}

// Error returns the error message.
func (e *PayloadParseError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *PayloadParseError) Unwrap() error {
	return e.Cause
}

// NewPayloadParseError creates a new PayloadParseError.
func NewPayloadParseError(cause error) *PayloadParseError {
	return &PayloadParseError{
		Cause: cause,
		Err: NewError(
			fmt.Sprintf("payload is not valid JSON: %v", cause),
			400,
		),
	}
}

// SessionNotFoundError indicates that a requested session was not found.
type SessionNotFoundError struct {
	ID  string
	Err *Error
}

// Error returns the error message.
func (e *SessionNotFoundError) Error() string {
	return e.Err.Error()
}

// NewSessionNotFoundError creates a new SessionNotFoundError.
func NewSessionNotFoundError(id string) *SessionNotFoundError {
	return &SessionNotFoundError{
		ID: id,
		Err: NewError(
			fmt.Sprintf("session with ID %s not found", id),
			404,
		),
	}
}
