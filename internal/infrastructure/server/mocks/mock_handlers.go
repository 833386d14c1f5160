// Package mocks provides test doubles for the server package.
package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
)

// MockResourceHandler is a mock implementation of ResourceHandler
type MockResourceHandler struct {
	mu        sync.Mutex
	templates []domain.ResourceTemplate
	contents  map[string]domain.ContentEnvelope
	payloads  map[string]domain.Payload
	listError error
	readError error
}

// NewMockResourceHandler creates a new mock resource handler
func NewMockResourceHandler() *MockResourceHandler {
	return &MockResourceHandler{
		contents: make(map[string]domain.ContentEnvelope),
		payloads: make(map[string]domain.Payload),
	}
}

// AddTemplate adds a template to the listing
func (m *MockResourceHandler) AddTemplate(template domain.ResourceTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = append(m.templates, template)
}

// SetContents sets the envelope returned for uri
func (m *MockResourceHandler) SetContents(uri string, envelope domain.ContentEnvelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[uri] = envelope
}

// SetListError sets the error to return from ListResourceTemplates
func (m *MockResourceHandler) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listError = err
}

// SetReadError sets the error to return from ReadResource
func (m *MockResourceHandler) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readError = err
}

// PayloadFor returns the payload ReadResource received for uri
func (m *MockResourceHandler) PayloadFor(uri string) (domain.Payload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payloads[uri]
	return p, ok
}

// ListResourceTemplates returns the templates
func (m *MockResourceHandler) ListResourceTemplates(ctx context.Context) ([]domain.ResourceTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	return m.templates, nil
}

// ReadResource returns the envelope registered for uri, or an unresolved
// resource error when there is none
func (m *MockResourceHandler) ReadResource(ctx context.Context, uri string, payload domain.Payload) (domain.ContentEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[uri] = payload
	if m.readError != nil {
		return domain.ContentEnvelope{}, m.readError
	}
	envelope, ok := m.contents[uri]
	if !ok {
		return domain.ContentEnvelope{}, domain.NewUnresolvedResourceError(uri)
	}
	return envelope, nil
}

// MockToolHandler is a mock implementation of ToolHandler
type MockToolHandler struct {
	mu        sync.Mutex
	tools     []domain.Tool
	results   map[string]domain.ContentEnvelope
	errors    map[string]error
	calls     map[string][]json.RawMessage
	listError error
}

// NewMockToolHandler creates a new mock tool handler
func NewMockToolHandler() *MockToolHandler {
	return &MockToolHandler{
		results: make(map[string]domain.ContentEnvelope),
		errors:  make(map[string]error),
		calls:   make(map[string][]json.RawMessage),
	}
}

// AddTool adds a tool to the mock handler
func (m *MockToolHandler) AddTool(tool domain.Tool, result domain.ContentEnvelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = append(m.tools, tool)
	m.results[tool.Name] = result
}

// SetListError sets the error to return from ListTools
func (m *MockToolHandler) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listError = err
}

// SetCallError sets the error to return from CallTool for a specific tool
func (m *MockToolHandler) SetCallError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[name] = err
}

// GetCalledArgs returns the arguments received for name
func (m *MockToolHandler) GetCalledArgs(name string) []json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// ListTools returns the list of tools
func (m *MockToolHandler) ListTools(ctx context.Context) ([]domain.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	return m.tools, nil
}

// CallTool records the call and returns the configured result
func (m *MockToolHandler) CallTool(ctx context.Context, name string, args json.RawMessage) (domain.ContentEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name] = append(m.calls[name], args)
	if err := m.errors[name]; err != nil {
		return domain.ContentEnvelope{}, err
	}
	result, ok := m.results[name]
	if !ok {
		return domain.ContentEnvelope{}, domain.NewUnknownToolError(name)
	}
	return result, nil
}
