// Package builder wires registries, handlers and transports into a runnable
// MCP server.
package builder

import (
	"context"

	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/config"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/metrics"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/schema"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/server"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/calculator"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/criteria"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/greeting"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/resources"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/tools"
)

// ServerBuilder implements the Builder pattern for creating MCP servers
type ServerBuilder struct {
	name        string
	version     string
	address     string
	schemaPath  string
	schemaCache bool
	logger      *logging.Logger
	metrics     *metrics.Metrics
	sessionRepo domain.SessionRepository
}

// NewServerBuilder creates a new server builder with default values
func NewServerBuilder() *ServerBuilder {
	defaults := config.Default()
	return &ServerBuilder{
		name:        defaults.Server.Name,
		version:     defaults.Server.Version,
		address:     defaults.Server.HTTPAddr,
		schemaPath:  defaults.Schema.Path,
		schemaCache: defaults.Schema.Cache,
		logger:      logging.Default(),
		sessionRepo: server.NewInMemorySessionRepository(),
	}
}

// FromConfig applies a loaded configuration
func (b *ServerBuilder) FromConfig(cfg config.Config) *ServerBuilder {
	b.name = cfg.Server.Name
	b.version = cfg.Server.Version
	b.address = cfg.Server.HTTPAddr
	b.schemaPath = cfg.Schema.Path
	b.schemaCache = cfg.Schema.Cache
	return b
}

// WithName sets the server name
func (b *ServerBuilder) WithName(name string) *ServerBuilder {
	b.name = name
	return b
}

// WithVersion sets the server version
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.version = version
	return b
}

// WithAddress sets the HTTP listen address
func (b *ServerBuilder) WithAddress(address string) *ServerBuilder {
	b.address = address
	return b
}

// WithSchemaPath sets the acceptance-criteria schema location
func (b *ServerBuilder) WithSchemaPath(path string) *ServerBuilder {
	b.schemaPath = path
	return b
}

// WithSchemaCache toggles caching of compiled schemas
func (b *ServerBuilder) WithSchemaCache(enabled bool) *ServerBuilder {
	b.schemaCache = enabled
	return b
}

// WithLogger sets the logger handed to every component
func (b *ServerBuilder) WithLogger(logger *logging.Logger) *ServerBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithMetrics enables Prometheus metrics
func (b *ServerBuilder) WithMetrics(m *metrics.Metrics) *ServerBuilder {
	b.metrics = m
	return b
}

// Metrics returns the configured metrics, or nil when disabled
func (b *ServerBuilder) Metrics() *metrics.Metrics {
	return b.metrics
}

// WithSessionRepository sets the session repository
func (b *ServerBuilder) WithSessionRepository(repo domain.SessionRepository) *ServerBuilder {
	b.sessionRepo = repo
	return b
}

// BuildService registers every tool and resource and returns the service.
// Resources are registered greeting first, then the criteria validator.
func (b *ServerBuilder) BuildService() (*usecases.ServerService, error) {
	resourceOpts := []resources.Option{resources.WithLogger(b.logger.Named("resources"))}
	criteriaOpts := []criteria.Option{
		criteria.WithLogger(b.logger),
		criteria.WithSchemaPath(b.schemaPath),
	}
	if b.metrics != nil {
		resourceOpts = append(resourceOpts, resources.WithObserver(b.metrics))
		criteriaOpts = append(criteriaOpts, criteria.WithObserver(b.metrics))
	}

	b.logger.Info("registering tools and resources")

	resourceRegistry := resources.NewRegistry(resourceOpts...)
	if err := greeting.NewGreetingHandler(b.logger).Register(resourceRegistry); err != nil {
		return nil, errors.Wrap(err, "registering greeting resource")
	}

	validator := schema.NewValidator(
		schema.WithLogger(b.logger.Named("schema")),
		schema.WithCache(b.schemaCache),
	)
	if err := criteria.NewCriteriaHandler(validator, criteriaOpts...).Register(resourceRegistry); err != nil {
		return nil, errors.Wrap(err, "registering acceptance-criteria resource")
	}

	toolRegistry := tools.NewRegistry(b.logger.Named("tools"))
	if err := calculator.NewCalculatorHandler(b.logger).Register(toolRegistry); err != nil {
		return nil, errors.Wrap(err, "registering calculator tools")
	}

	return usecases.NewServerService(usecases.ServerConfig{
		Name:        b.name,
		Version:     b.version,
		Resources:   resourceRegistry,
		Tools:       toolRegistry,
		SessionRepo: b.sessionRepo,
	}), nil
}

// BuildMCPServer builds the protocol server without a transport
func (b *ServerBuilder) BuildMCPServer() (*server.Server, error) {
	service, err := b.BuildService()
	if err != nil {
		return nil, err
	}

	s := server.NewServer(b.name, b.version).
		WithResourceHandler(service).
		WithToolHandler(service).
		WithSessionManager(service).
		WithLogger(b.logger.Named("server"))
	if b.metrics != nil {
		s.WithObserver(b.metrics)
	}
	return s, nil
}

// BuildStdioServer builds a server connected to a stdio transport
func (b *ServerBuilder) BuildStdioServer(opts ...server.StdioOption) (*server.Server, error) {
	s, err := b.BuildMCPServer()
	if err != nil {
		return nil, err
	}

	opts = append([]server.StdioOption{server.WithStdioLogger(b.logger.Named("stdio"))}, opts...)
	if err := s.Connect(server.NewStdioTransport(opts...)); err != nil {
		return nil, err
	}
	return s, nil
}

// BuildHTTPServer builds a server connected to an HTTP transport
func (b *ServerBuilder) BuildHTTPServer() (*server.Server, error) {
	s, err := b.BuildMCPServer()
	if err != nil {
		return nil, err
	}

	opts := []server.HTTPOption{server.WithHTTPLogger(b.logger.Named("http"))}
	if b.metrics != nil {
		opts = append(opts, server.WithMetricsHandler(b.metrics.Handler()))
	}
	if err := s.Connect(server.NewHTTPTransport(b.address, opts...)); err != nil {
		return nil, err
	}
	return s, nil
}

// ServeStdio builds a stdio server and serves until the input ends
func (b *ServerBuilder) ServeStdio(ctx context.Context, opts ...server.StdioOption) error {
	s, err := b.BuildStdioServer(opts...)
	if err != nil {
		return err
	}
	return s.Start(ctx)
}

// ServeHTTP builds an HTTP server and serves until ctx is cancelled
func (b *ServerBuilder) ServeHTTP(ctx context.Context) error {
	s, err := b.BuildHTTPServer()
	if err != nil {
		return err
	}
	return s.Start(ctx)
}
