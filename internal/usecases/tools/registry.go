// Package tools holds the table of named tools and dispatches calls to them.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
)

// Metadata describes a tool for listing.
type Metadata struct {
	Title       string
	Description string
}

type invokeFunc func(ctx context.Context, args json.RawMessage) (domain.ContentEnvelope, error)

// Registration is a tool bound to its input shape and handler.
type Registration struct {
	Name        string
	Metadata    Metadata
	InputSchema *jsonschema.Schema

	required []string
	types    map[string]string
	invoke   invokeFunc
}

// Registry maps tool names to registrations. It is read-only once the server
// starts serving.
type Registry struct {
	tools  map[string]*Registration
	order  []string
	logger *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	return &Registry{
		tools:  make(map[string]*Registration),
		logger: logger,
	}
}

// Register adds a tool whose arguments decode into T. The input shape is
// reflected from T; fields without omitempty are required.
func Register[T any](r *Registry, name string, meta Metadata, fn func(ctx context.Context, args T) (domain.ContentEnvelope, error)) error {
	if name == "" {
		return errors.New("tool name cannot be empty")
	}
	if fn == nil {
		return errors.Errorf("handler for tool %s cannot be nil", name)
	}
	if _, exists := r.tools[name]; exists {
		return errors.Errorf("tool %s is already registered", name)
	}

	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	inputSchema := reflector.Reflect(new(T))
	inputSchema.Version = ""
	inputSchema.ID = ""

	r.tools[name] = &Registration{
		Name:        name,
		Metadata:    meta,
		InputSchema: inputSchema,
		required:    append([]string(nil), inputSchema.Required...),
		types:       propertyTypes(inputSchema),
		invoke: func(ctx context.Context, raw json.RawMessage) (domain.ContentEnvelope, error) {
			var args T
			if err := json.Unmarshal(raw, &args); err != nil {
				return domain.ContentEnvelope{}, decodeError(name, err)
			}
			return fn(ctx, args)
		},
	}
	r.order = append(r.order, name)

	r.logger.Debug("tool registered", logging.Fields{"name": name})
	return nil
}

// Tools lists registrations in registration order.
func (r *Registry) Tools() []domain.Tool {
	out := make([]domain.Tool, 0, len(r.order))
	for _, name := range r.order {
		reg := r.tools[name]
		out = append(out, domain.Tool{
			Name:        reg.Name,
			Title:       reg.Metadata.Title,
			Description: reg.Metadata.Description,
			InputSchema: reg.InputSchema,
		})
	}
	return out
}

// Invoke calls the named tool. Unknown names and arguments that do not fit
// the input shape are returned as errors; failures inside the handler come
// back as an envelope carrying the failure marker.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (domain.ContentEnvelope, error) {
	reg, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", logging.Fields{"name": name})
		return domain.ContentEnvelope{}, domain.NewUnknownToolError(name)
	}

	normalized, err := checkArguments(reg, args)
	if err != nil {
		return domain.ContentEnvelope{}, err
	}

	envelope, err := safeInvoke(ctx, reg, normalized)
	if err != nil {
		var invalid *domain.InvalidArgumentsError
		if errors.As(err, &invalid) {
			return domain.ContentEnvelope{}, invalid
		}
		r.logger.Error("tool handler failed", logging.Fields{
			"name":  name,
			"error": err.Error(),
		})
		return domain.ToolTextEnvelope(domain.FailureMarker + " " + err.Error()), nil
	}
	return envelope, nil
}

func safeInvoke(ctx context.Context, reg *Registration, args json.RawMessage) (envelope domain.ContentEnvelope, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in tool %s: %v", reg.Name, rec)
		}
	}()
	return reg.invoke(ctx, args)
}

// checkArguments verifies args is an object holding every required key and
// that no declared property is null. Decoding into the argument struct
// checks the remaining types.
func checkArguments(reg *Registration, args json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, domain.NewInvalidArgumentsError(reg.Name, "", "arguments must be a JSON object")
	}

	var missing []string
	for _, key := range reg.required {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, domain.NewInvalidArgumentsError(reg.Name, missing[0], "is required")
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		want, declared := reg.types[key]
		if !declared || want == "" || want == "null" {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(fields[key]), []byte("null")) {
			return nil, domain.NewInvalidArgumentsError(reg.Name, key, "expected "+want+", got null")
		}
	}

	return trimmed, nil
}

// propertyTypes maps each declared property to its JSON type.
func propertyTypes(s *jsonschema.Schema) map[string]string {
	types := make(map[string]string)
	if s.Properties == nil {
		return types
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		types[pair.Key] = pair.Value.Type
	}
	return types
}

func decodeError(tool string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.NewInvalidArgumentsError(tool, typeErr.Field,
			fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
	}
	return domain.NewInvalidArgumentsError(tool, "", err.Error())
}
