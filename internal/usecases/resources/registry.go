// Package resources resolves resource URIs against registered URI templates
// and dispatches them to their handlers.
package resources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/handler"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
)

// Resolution outcomes reported to a ResolutionObserver.
const (
	OutcomeOK           = "ok"
	OutcomeHandlerError = "handler_error"
	OutcomeUnresolved   = "unresolved"
)

// ResolutionObserver is notified once per Resolve call.
type ResolutionObserver interface {
	ObserveResolution(resource, outcome string)
}

// Registration binds a named URI template to its handler.
type Registration struct {
	Name     string
	Template *Template
	Metadata domain.ResourceMetadata
	Handler  handler.ResourceHandlerFunc
}

// Registry is the ordered table of resource registrations. Registration
// order decides which handler wins when several templates match.
type Registry struct {
	registrations []*Registration
	names         map[string]struct{}
	logger        *logging.Logger
	observer      ResolutionObserver
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the observer notified of resolution outcomes.
func WithObserver(observer ResolutionObserver) Option {
	return func(r *Registry) {
		r.observer = observer
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		names:  make(map[string]struct{}),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a resource registration. Names must be unique.
func (r *Registry) Register(name, template string, metadata domain.ResourceMetadata, h handler.ResourceHandlerFunc) error {
	if name == "" {
		return errors.New("resource name cannot be empty")
	}
	if h == nil {
		return errors.Errorf("handler for resource %s cannot be nil", name)
	}
	if _, exists := r.names[name]; exists {
		return errors.Errorf("resource %s is already registered", name)
	}

	tmpl, err := ParseTemplate(template)
	if err != nil {
		return err
	}

	r.registrations = append(r.registrations, &Registration{
		Name:     name,
		Template: tmpl,
		Metadata: metadata,
		Handler:  h,
	})
	r.names[name] = struct{}{}

	r.logger.Debug("resource registered", logging.Fields{
		"name":     name,
		"template": template,
	})
	return nil
}

// Templates lists the registered templates in registration order.
func (r *Registry) Templates() []domain.ResourceTemplate {
	out := make([]domain.ResourceTemplate, 0, len(r.registrations))
	for _, reg := range r.registrations {
		out = append(out, domain.ResourceTemplate{
			Name:        reg.Name,
			URITemplate: reg.Template.String(),
			Title:       reg.Metadata.Title,
			Description: reg.Metadata.Description,
			MIMEType:    reg.Metadata.MIMEType,
		})
	}
	return out
}

// Match finds the first registration whose template matches uri.
func (r *Registry) Match(uri string) (*Registration, domain.ResolvedURI, bool) {
	for _, reg := range r.registrations {
		if resolved, ok := reg.Template.Match(uri); ok {
			return reg, resolved, true
		}
	}
	return nil, domain.ResolvedURI{}, false
}

// Resolve dispatches uri to the first matching handler. Only a missing match
// is returned as an error; handler failures come back as an envelope whose
// text carries the failure marker.
func (r *Registry) Resolve(ctx context.Context, uri string, payload domain.Payload) (domain.ContentEnvelope, error) {
	reg, resolved, ok := r.Match(uri)
	if !ok {
		r.observe("", OutcomeUnresolved)
		r.logger.Warn("no resource template matched", logging.Fields{"uri": uri})
		return domain.ContentEnvelope{}, domain.NewUnresolvedResourceError(uri)
	}

	r.logger.Debug("resource template matched", logging.Fields{
		"uri":       uri,
		"resource":  reg.Name,
		"template":  reg.Template.String(),
		"variables": resolved.Values,
	})

	envelope, err := r.invoke(ctx, reg, resolved, payload)
	if err != nil {
		r.observe(reg.Name, OutcomeHandlerError)
		r.logger.Error("resource handler failed", logging.Fields{
			"uri":      uri,
			"resource": reg.Name,
			"error":    err.Error(),
		})
		return domain.ErrorEnvelope(uri, "Error processing request: "+err.Error()), nil
	}

	r.observe(reg.Name, OutcomeOK)
	return normalize(uri, envelope), nil
}

func (r *Registry) invoke(ctx context.Context, reg *Registration, resolved domain.ResolvedURI, payload domain.Payload) (envelope domain.ContentEnvelope, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in resource handler: %v", rec)
		}
	}()

	return reg.Handler(ctx, handler.ResourceRequest{
		URI:      parseResourceURI(resolved.URI),
		Resolved: resolved,
		Payload:  payload,
	})
}

// parseResourceURI parses uri, keeping URIs that url.Parse rejects (spaces
// in the authority, for example) as an opaque URL under their scheme.
func parseResourceURI(uri string) *url.URL {
	if parsed, err := url.Parse(uri); err == nil {
		return parsed
	}
	scheme, rest, _ := strings.Cut(uri, ":")
	return &url.URL{Scheme: scheme, Opaque: rest}
}

func (r *Registry) observe(resource, outcome string) {
	if r.observer != nil {
		r.observer.ObserveResolution(resource, outcome)
	}
}

// normalize fills in the request URI on items that left it empty.
func normalize(uri string, envelope domain.ContentEnvelope) domain.ContentEnvelope {
	contents := make([]domain.Content, len(envelope.Contents))
	for i, item := range envelope.Contents {
		if item.URI == "" {
			item.URI = uri
		}
		contents[i] = item
	}
	return domain.ContentEnvelope{Contents: contents}
}
