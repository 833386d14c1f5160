// Package handler defines the contracts between the protocol server and the
// use cases it dispatches to.
package handler

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
)

// ResourceRequest carries everything a resource handler receives once its
// template matched.
type ResourceRequest struct {
	URI      *url.URL
	Resolved domain.ResolvedURI
	Payload  domain.Payload
}

// ResourceHandlerFunc produces the contents of a matched resource. A returned
// error is converted into an error envelope by the dispatcher.
type ResourceHandlerFunc func(ctx context.Context, req ResourceRequest) (domain.ContentEnvelope, error)

// ResourceHandler defines a handler for resources
type ResourceHandler interface {
	// ListResourceTemplates returns the registered templates in registration order
	ListResourceTemplates(ctx context.Context) ([]domain.ResourceTemplate, error)

	// ReadResource resolves a URI and returns the produced contents
	ReadResource(ctx context.Context, uri string, payload domain.Payload) (domain.ContentEnvelope, error)
}

// ToolHandler defines a handler for tools
type ToolHandler interface {
	// ListTools returns a list of available tools
	ListTools(ctx context.Context) ([]domain.Tool, error)

	// CallTool executes a tool with the given arguments
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (domain.ContentEnvelope, error)
}
