package shared

import (
	"strings"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
)

// ServerInfo contains information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities represents the server's capabilities
type Capabilities struct {
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Tools     *ToolsCapability     `json:"tools,omitempty"`
}

// ResourcesCapability indicates support for resources
type ResourcesCapability struct{}

// ToolsCapability indicates support for tools
type ToolsCapability struct{}

// Resource represents a concrete resource exposed by the server
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ResourceTemplate represents a URI template exposed by the server
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// ResourceContents is one item of a resources/read result
type ResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// Tool represents a tool exposed by the server
type Tool struct {
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	InputSchema interface{} `json:"inputSchema"`
}

// TextContent represents text content returned by tools
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewResourceTemplates converts domain templates to their wire form.
func NewResourceTemplates(templates []domain.ResourceTemplate) []ResourceTemplate {
	out := make([]ResourceTemplate, 0, len(templates))
	for _, t := range templates {
		out = append(out, ResourceTemplate{
			URITemplate: t.URITemplate,
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			MIMEType:    t.MIMEType,
		})
	}
	return out
}

// NewTools converts domain tools to their wire form.
func NewTools(tools []domain.Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, Tool{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out
}

// NewReadResourceResult converts an envelope to a resources/read result.
func NewReadResourceResult(envelope domain.ContentEnvelope) ReadResourceResult {
	contents := make([]ResourceContents, 0, len(envelope.Contents))
	for _, c := range envelope.Contents {
		contents = append(contents, ResourceContents{
			URI:      c.URI,
			MIMEType: c.MIMEType,
			Text:     c.Text,
		})
	}
	return ReadResourceResult{Contents: contents}
}

// NewCallToolResult converts an envelope to a tools/call result. A result
// whose text carries the failure marker is flagged as an error.
func NewCallToolResult(envelope domain.ContentEnvelope) CallToolResult {
	result := CallToolResult{Content: make([]TextContent, 0, len(envelope.Contents))}
	for _, c := range envelope.Contents {
		contentType := c.Type
		if contentType == "" {
			contentType = "text"
		}
		result.Content = append(result.Content, TextContent{Type: contentType, Text: c.Text})
		if strings.HasPrefix(c.Text, domain.FailureMarker) {
			result.IsError = true
		}
	}
	return result
}
