package shared

// MCP-specific error codes
const (
	// ResourceNotFound is returned when no resource template matches a URI.
	ResourceNotFound ErrorCode = -32002
)
