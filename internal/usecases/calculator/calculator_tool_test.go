package calculator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/tools"
)

func TestAdd(t *testing.T) {
	handler := NewCalculatorHandler(logging.NewNop())

	tests := []struct {
		a, b float64
		want string
	}{
		{2, 3, "5"},
		{-1, 1, "0"},
		{0.5, 0.25, "0.75"},
		{1e6, 1, "1000001"},
		{1e300, 0, "1e+300"},
		{1e20, 0, "100000000000000000000"},
		{1e21, 0, "1e+21"},
		{1.5e-7, 0, "1.5e-7"},
		{0.000001, 0, "0.000001"},
		{-2.5e25, 0, "-2.5e+25"},
		{1e308, 1e308, "Infinity"},
		{0.1, 0.2, "0.30000000000000004"},
	}

	for _, tt := range tests {
		envelope, err := handler.Add(context.Background(), AddArgs{A: tt.a, B: tt.b})
		if err != nil {
			t.Fatalf("Add(%v, %v) returned error: %v", tt.a, tt.b, err)
		}
		if got := envelope.Contents[0].Text; got != tt.want {
			t.Errorf("Add(%v, %v) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAddThroughRegistry(t *testing.T) {
	registry := tools.NewRegistry(logging.NewNop())
	require.NoError(t, NewCalculatorHandler(logging.NewNop()).Register(registry))

	listed := registry.Tools()
	require.Len(t, listed, 1)
	assert.Equal(t, "add", listed[0].Name)
	assert.Equal(t, "Addition Tool", listed[0].Title)

	envelope, err := registry.Invoke(context.Background(), "add", json.RawMessage(`{"a":2,"b":3}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ContentEnvelope{
		Contents: []domain.Content{{Type: "text", Text: "5"}},
	}, envelope)

	_, err = registry.Invoke(context.Background(), "add", json.RawMessage(`{"a":2}`))
	var invalid *domain.InvalidArgumentsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "b", invalid.Field)

	_, err = registry.Invoke(context.Background(), "add", json.RawMessage(`{"a":null,"b":3}`))
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "a", invalid.Field)
}
