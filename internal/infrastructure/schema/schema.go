// Package schema compiles JSON Schema documents and validates payloads
// against them.
package schema

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
)

// RootPath labels errors that apply to the document as a whole.
const RootPath = "(root)"

// ValidationError is a single violation reported by Validate.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of one validation. It is built fresh per call.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Compiled is an immutable compiled schema, safe for concurrent use.
type Compiled struct {
	schema *gojsonschema.Schema
}

// Compile parses a schema document and checks it against the draft-07
// meta-schema.
func Compile(data []byte) (*Compiled, error) {
	compiled, err := compile(data)
	if err != nil {
		return nil, domain.NewSchemaLoadError("", err)
	}
	return compiled, nil
}

func compile(data []byte) (*Compiled, error) {
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}

	loader := gojsonschema.NewSchemaLoader()
	loader.Validate = true
	loader.Draft = gojsonschema.Draft7

	s, err := loader.Compile(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, err
	}
	return &Compiled{schema: s}, nil
}

// Validate checks payload against the schema. It never fails: a raw payload
// that is not JSON is reported as a single error at the root.
func (c *Compiled) Validate(payload domain.Payload) Result {
	doc, err := payload.Document()
	if err != nil {
		return failure(RootPath, err.Error())
	}

	res, err := c.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return failure(RootPath, err.Error())
	}
	if res.Valid() {
		return Result{Valid: true}
	}

	errs := make([]ValidationError, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		errs = append(errs, ValidationError{
			Path:    e.Field(),
			Message: e.Description(),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Message < errs[j].Message
	})

	return Result{Valid: false, Errors: errs}
}

func failure(path, message string) Result {
	return Result{
		Valid:  false,
		Errors: []ValidationError{{Path: path, Message: message}},
	}
}

// RenderErrors formats errors one "path: message" per line.
func RenderErrors(errs []ValidationError) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Path + ": " + e.Message
	}
	return strings.Join(lines, "\n")
}
