// Package usecases implements the application business logic for the MCP server.
package usecases

import (
	"context"
	"encoding/json"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/resources"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/tools"
)

// ServerService handles business logic for the MCP server.
type ServerService struct {
	name        string
	version     string
	resources   *resources.Registry
	tools       *tools.Registry
	sessionRepo domain.SessionRepository
}

// ServerConfig contains configuration for the ServerService.
type ServerConfig struct {
	Name        string
	Version     string
	Resources   *resources.Registry
	Tools       *tools.Registry
	SessionRepo domain.SessionRepository
}

// NewServerService creates a new ServerService with the given registries and configuration.
func NewServerService(config ServerConfig) *ServerService {
	if config.Resources == nil {
		config.Resources = resources.NewRegistry()
	}
	if config.Tools == nil {
		config.Tools = tools.NewRegistry(nil)
	}
	return &ServerService{
		name:        config.Name,
		version:     config.Version,
		resources:   config.Resources,
		tools:       config.Tools,
		sessionRepo: config.SessionRepo,
	}
}

// ServerInfo returns the server name and version.
func (s *ServerService) ServerInfo() (string, string) {
	return s.name, s.version
}

// ListResourceTemplates returns the registered resource templates in registration order.
func (s *ServerService) ListResourceTemplates(ctx context.Context) ([]domain.ResourceTemplate, error) {
	return s.resources.Templates(), nil
}

// ReadResource resolves uri against the registered templates.
func (s *ServerService) ReadResource(ctx context.Context, uri string, payload domain.Payload) (domain.ContentEnvelope, error) {
	return s.resources.Resolve(ctx, uri, payload)
}

// ListTools returns all available tools.
func (s *ServerService) ListTools(ctx context.Context) ([]domain.Tool, error) {
	return s.tools.Tools(), nil
}

// CallTool invokes the named tool.
func (s *ServerService) CallTool(ctx context.Context, name string, arguments json.RawMessage) (domain.ContentEnvelope, error) {
	return s.tools.Invoke(ctx, name, arguments)
}

// RegisterSession adds a new client session.
func (s *ServerService) RegisterSession(ctx context.Context, session *domain.ClientSession) error {
	if s.sessionRepo == nil {
		return nil
	}
	return s.sessionRepo.AddSession(ctx, session)
}

// UnregisterSession removes a client session.
func (s *ServerService) UnregisterSession(ctx context.Context, id string) error {
	if s.sessionRepo == nil {
		return nil
	}
	return s.sessionRepo.DeleteSession(ctx, id)
}
