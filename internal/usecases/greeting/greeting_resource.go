// Package greeting provides the dynamic greeting resource.
package greeting

import (
	"context"
	"fmt"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/handler"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/resources"
)

const (
	// ResourceName is the registration name of the greeting resource.
	ResourceName = "greeting"
	// URITemplate is the template the resource is served under.
	URITemplate = "greeting://{name}"
)

// GreetingHandler produces greetings for the name in the URI.
type GreetingHandler struct {
	logger *logging.Logger
}

// NewGreetingHandler creates a new greeting handler.
func NewGreetingHandler(logger *logging.Logger) *GreetingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &GreetingHandler{logger: logger.Named("greeting")}
}

// Register adds the greeting resource to the registry.
func (h *GreetingHandler) Register(r *resources.Registry) error {
	return r.Register(ResourceName, URITemplate, domain.ResourceMetadata{
		Title:       "Greeting Resource",
		Description: "Dynamic greeting generator",
	}, h.Read)
}

// Read greets the captured name.
func (h *GreetingHandler) Read(_ context.Context, req handler.ResourceRequest) (domain.ContentEnvelope, error) {
	name := req.Resolved.Get("name")
	h.logger.Info("greeting resource invoked", logging.Fields{"uri": req.Resolved.URI, "name": name})

	return domain.TextEnvelope(req.Resolved.URI, fmt.Sprintf("Hello, %s!", name)), nil
}
