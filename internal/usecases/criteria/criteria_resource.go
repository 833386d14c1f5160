// Package criteria provides the acceptance-criteria validator resource.
package criteria

import (
	"context"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/handler"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/schema"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/resources"
)

const (
	// ResourceName is the registration name of the validator resource.
	ResourceName = "acceptance-criteria-validator"
	// URITemplate is the template the resource is served under.
	URITemplate = "acceptance-criteria://{ticketId}"
	// DefaultSchemaPath is resolved against the working directory.
	DefaultSchemaPath = "resources/story.schema.json"

	validText = domain.SuccessMarker + " Acceptance Criteria are valid."
)

// Validation results reported to a ValidationObserver.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// SchemaLoader loads a compiled schema by path.
type SchemaLoader interface {
	Load(ctx context.Context, path string) (*schema.Compiled, error)
}

// ValidationObserver is notified of each validation result.
type ValidationObserver interface {
	ObserveValidation(result string)
}

// CriteriaHandler validates request payloads against the story schema.
type CriteriaHandler struct {
	loader     SchemaLoader
	schemaPath string
	logger     *logging.Logger
	observer   ValidationObserver
}

// Option configures a CriteriaHandler.
type Option func(*CriteriaHandler)

// WithSchemaPath overrides the schema location.
func WithSchemaPath(path string) Option {
	return func(h *CriteriaHandler) {
		if path != "" {
			h.schemaPath = path
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *logging.Logger) Option {
	return func(h *CriteriaHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver sets the observer notified of validation results.
func WithObserver(observer ValidationObserver) Option {
	return func(h *CriteriaHandler) {
		h.observer = observer
	}
}

// NewCriteriaHandler creates a handler that loads schemas through loader.
func NewCriteriaHandler(loader SchemaLoader, opts ...Option) *CriteriaHandler {
	h := &CriteriaHandler{
		loader:     loader,
		schemaPath: DefaultSchemaPath,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("criteria")
	return h
}

// Register adds the validator resource to the registry.
func (h *CriteriaHandler) Register(r *resources.Registry) error {
	return r.Register(ResourceName, URITemplate, domain.ResourceMetadata{
		Title:       "Acceptance Criteria Validator",
		Description: "Validates actual acceptance criteria against story.schema.json",
	}, h.Read)
}

// Read validates the request payload. Every outcome, including a schema that
// cannot be loaded, is reported as envelope text.
func (h *CriteriaHandler) Read(ctx context.Context, req handler.ResourceRequest) (domain.ContentEnvelope, error) {
	uri := req.Resolved.URI
	fields := logging.Fields{"uri": uri, "ticket_id": req.Resolved.Get("ticketId")}

	compiled, err := h.loader.Load(ctx, h.schemaPath)
	if err != nil {
		h.observe(ResultError)
		h.logger.Error("schema unavailable", logging.Fields{"uri": uri, "error": err.Error()})
		return domain.ErrorEnvelope(uri, "Error processing request: "+err.Error()), nil
	}

	result := compiled.Validate(req.Payload)
	if result.Valid {
		h.observe(ResultValid)
		h.logger.Info("acceptance criteria valid", fields)
		return domain.TextEnvelope(uri, validText), nil
	}

	h.observe(ResultInvalid)
	fields["errors"] = len(result.Errors)
	h.logger.Info("acceptance criteria invalid", fields)
	return domain.ErrorEnvelope(uri, "Validation failed:\n"+schema.RenderErrors(result.Errors)), nil
}

func (h *CriteriaHandler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveValidation(result)
	}
}
