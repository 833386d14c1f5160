// Package domain defines the core business logic and entities for the MCP server.
package domain

import (
	"github.com/google/uuid"
)

// Content markers prefixed to user-visible text. Failures are distinguished
// from successes only by this prefix, never by envelope shape.
const (
	SuccessMarker = "✅"
	FailureMarker = "❌"
)

// ClientSession represents an active client connection to the MCP server.
type ClientSession struct {
	ID         string
	ClientName string
	Connected  bool
}

// NewClientSession creates a new ClientSession with a unique ID.
func NewClientSession(clientName string) *ClientSession {
	return &ClientSession{
		ID:         uuid.New().String(),
		ClientName: clientName,
		Connected:  true,
	}
}

// Content is a single item of a ContentEnvelope.
type Content struct {
	URI      string `json:"uri,omitempty"`
	Type     string `json:"type,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// ContentEnvelope is the uniform response shape for tools and resources.
type ContentEnvelope struct {
	Contents []Content `json:"contents"`
}

// TextEnvelope builds a single-item envelope for a resource URI.
func TextEnvelope(uri, text string) ContentEnvelope {
	return ContentEnvelope{Contents: []Content{{URI: uri, Text: text}}}
}

// ToolTextEnvelope builds a single-item envelope of type "text", the shape tools return.
func ToolTextEnvelope(text string) ContentEnvelope {
	return ContentEnvelope{Contents: []Content{{Type: "text", Text: text}}}
}

// ErrorEnvelope builds an envelope whose single item carries the failure marker.
func ErrorEnvelope(uri, message string) ContentEnvelope {
	return TextEnvelope(uri, FailureMarker+" "+message)
}

// ResourceMetadata describes a resource registration for listing.
type ResourceMetadata struct {
	Title       string
	Description string
	MIMEType    string
}

// ResourceTemplate describes a registered resource template for listing.
type ResourceTemplate struct {
	Name        string
	URITemplate string
	Title       string
	Description string
	MIMEType    string
}

// Tool describes a registered tool for listing.
type Tool struct {
	Name        string
	Title       string
	Description string
	InputSchema interface{}
}

// ResolvedURI is a concrete URI together with the variables a template
// extracted from it. Names keeps template declaration order.
type ResolvedURI struct {
	URI    string
	Names  []string
	Values map[string]string
}

// Get returns the value captured for a template variable.
func (r ResolvedURI) Get(name string) string {
	return r.Values[name]
}
