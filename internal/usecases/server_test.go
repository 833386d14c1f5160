package usecases

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/calculator"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/greeting"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/resources"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/tools"
)

type memorySessions struct {
	sessions map[string]*domain.ClientSession
}

func (m *memorySessions) GetSession(_ context.Context, id string) (*domain.ClientSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return s, nil
}

func (m *memorySessions) ListSessions(context.Context) ([]*domain.ClientSession, error) {
	out := make([]*domain.ClientSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *memorySessions) AddSession(_ context.Context, s *domain.ClientSession) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *memorySessions) DeleteSession(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newService(t *testing.T) (*ServerService, *memorySessions) {
	t.Helper()

	resourceRegistry := resources.NewRegistry(resources.WithLogger(logging.NewNop()))
	require.NoError(t, greeting.NewGreetingHandler(logging.NewNop()).Register(resourceRegistry))

	toolRegistry := tools.NewRegistry(logging.NewNop())
	require.NoError(t, calculator.NewCalculatorHandler(logging.NewNop()).Register(toolRegistry))

	sessions := &memorySessions{sessions: map[string]*domain.ClientSession{}}
	return NewServerService(ServerConfig{
		Name:        "demo-server",
		Version:     "1.0.0",
		Resources:   resourceRegistry,
		Tools:       toolRegistry,
		SessionRepo: sessions,
	}), sessions
}

func TestServerInfo(t *testing.T) {
	service, _ := newService(t)

	name, version := service.ServerInfo()
	assert.Equal(t, "demo-server", name)
	assert.Equal(t, "1.0.0", version)
}

func TestServiceResources(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	templates, err := service.ListResourceTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "greeting://{name}", templates[0].URITemplate)

	envelope, err := service.ReadResource(ctx, "greeting://Ada", domain.NoPayload())
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!", envelope.Contents[0].Text)

	_, err = service.ReadResource(ctx, "unknown://x", domain.NoPayload())
	var unresolved *domain.UnresolvedResourceError
	assert.ErrorAs(t, err, &unresolved)
}

func TestServiceTools(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	listed, err := service.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	envelope, err := service.CallTool(ctx, "add", json.RawMessage(`{"a":2,"b":3}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ContentEnvelope{Contents: []domain.Content{{Type: "text", Text: "5"}}}, envelope)

	_, err = service.CallTool(ctx, "divide", json.RawMessage(`{}`))
	var unknown *domain.UnknownToolError
	assert.ErrorAs(t, err, &unknown)
}

func TestServiceSessions(t *testing.T) {
	service, sessions := newService(t)
	ctx := context.Background()

	session := domain.NewClientSession("inspector")
	require.NoError(t, service.RegisterSession(ctx, session))
	assert.Contains(t, sessions.sessions, session.ID)

	require.NoError(t, service.UnregisterSession(ctx, session.ID))
	assert.NotContains(t, sessions.sessions, session.ID)

	bare := NewServerService(ServerConfig{})
	assert.NoError(t, bare.RegisterSession(ctx, session))
	assert.NoError(t, bare.UnregisterSession(ctx, session.ID))
}
