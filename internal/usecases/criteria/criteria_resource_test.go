package criteria

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/schema"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/resources"
)

const storySchema = `{
  "type": "object",
  "required": ["title", "criteria"],
  "properties": {
    "title": {"type": "string"},
    "criteria": {"type": "array"}
  }
}`

type countingObserver map[string]int

func (o countingObserver) ObserveValidation(result string) { o[result]++ }

func setup(t *testing.T, schemaText string, opts ...Option) (*resources.Registry, countingObserver) {
	t.Helper()

	dir := t.TempDir()
	if schemaText != "" {
		path := filepath.Join(dir, DefaultSchemaPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(schemaText), 0o644))
	}
	testChdir(t, dir)

	observer := countingObserver{}
	opts = append([]Option{WithLogger(logging.NewNop()), WithObserver(observer)}, opts...)

	registry := resources.NewRegistry(resources.WithLogger(logging.NewNop()))
	require.NoError(t, NewCriteriaHandler(schema.NewValidator(), opts...).Register(registry))
	return registry, observer
}

func resolve(t *testing.T, registry *resources.Registry, payload domain.Payload) string {
	t.Helper()
	envelope, err := registry.Resolve(context.Background(), "acceptance-criteria://TICKET-1", payload)
	require.NoError(t, err)
	require.Len(t, envelope.Contents, 1)
	assert.Equal(t, "acceptance-criteria://TICKET-1", envelope.Contents[0].URI)
	return envelope.Contents[0].Text
}

func TestValidCriteria(t *testing.T) {
	registry, observer := setup(t, storySchema)

	text := resolve(t, registry, domain.RawPayload(`{"title":"x","criteria":["works"]}`))
	assert.Equal(t, "✅ Acceptance Criteria are valid.", text)

	text = resolve(t, registry, domain.ParsedPayload(map[string]interface{}{
		"title":    "x",
		"criteria": []interface{}{},
	}))
	assert.Equal(t, "✅ Acceptance Criteria are valid.", text)
	assert.Equal(t, 2, observer[ResultValid])
}

func TestMissingCriteria(t *testing.T) {
	registry, observer := setup(t, storySchema)

	text := resolve(t, registry, domain.RawPayload(`{"title":"x"}`))
	assert.True(t, strings.HasPrefix(text, "❌ Validation failed:\n"), text)
	assert.Contains(t, text, "criteria")
	assert.Equal(t, 1, observer[ResultInvalid])
}

func TestPayloadNotJSON(t *testing.T) {
	registry, _ := setup(t, storySchema)

	text := resolve(t, registry, domain.RawPayload(`{"title": `))
	assert.True(t, strings.HasPrefix(text, domain.FailureMarker), text)
	assert.Contains(t, text, "(root)")
}

func TestMissingSchemaFile(t *testing.T) {
	registry, observer := setup(t, "")

	text := resolve(t, registry, domain.RawPayload(`{"title":"x","criteria":[]}`))
	assert.True(t, strings.HasPrefix(text, "❌ Error processing request: "), text)
	assert.Contains(t, text, "no such file or directory")
	assert.Equal(t, 1, observer[ResultError])
}

func TestInvalidSchemaFile(t *testing.T) {
	registry, _ := setup(t, `{"type": 5}`)

	text := resolve(t, registry, domain.RawPayload(`{}`))
	assert.True(t, strings.HasPrefix(text, "❌ Error processing request: "), text)
}

func TestCustomSchemaPath(t *testing.T) {
	registry, _ := setup(t, "", WithSchemaPath("schemas/custom.json"))

	require.NoError(t, os.MkdirAll("schemas", 0o755))
	require.NoError(t, os.WriteFile("schemas/custom.json", []byte(`{"type":"object","required":["id"]}`), 0o644))

	text := resolve(t, registry, domain.RawPayload(`{"id":1}`))
	assert.Equal(t, "✅ Acceptance Criteria are valid.", text)
}
