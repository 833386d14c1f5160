package shared

import "encoding/json"

// MCP method names
const (
	// Core methods
	MethodInitialize = "initialize"
	MethodPing       = "ping"
	MethodShutdown   = "shutdown"

	// Resource methods
	MethodListResources         = "resources/list"
	MethodListResourceTemplates = "resources/templates/list"
	MethodReadResource          = "resources/read"

	// Tool methods
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"
)

// InitializeParams represents parameters for the initialize method
type InitializeParams struct {
	ProtocolVersion string      `json:"protocolVersion,omitempty"`
	ClientInfo      ServerInfo  `json:"clientInfo"`
	Capabilities    interface{} `json:"capabilities,omitempty"`
}

// InitializeResult represents the result of the initialize method
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion,omitempty"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// EmptyResult is returned by methods that have nothing to report.
type EmptyResult struct{}

// ListResourcesResult represents the result of the resources/list method
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ListResourceTemplatesResult represents the result of the resources/templates/list method
type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
}

// ReadResourceParams represents parameters for the resources/read method.
// Body is the optional payload handed to the resource handler.
type ReadResourceParams struct {
	URI  string          `json:"uri"`
	Body json.RawMessage `json:"body,omitempty"`
}

// ReadResourceResult represents the result of the resources/read method
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// ListToolsResult represents the result of the tools/list method
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams represents parameters for the tools/call method
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult represents the result of the tools/call method
type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}
