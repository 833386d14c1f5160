package server

import (
	"context"
	"sort"
	"sync"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
)

// InMemorySessionRepository implements a SessionRepository using in-memory storage.
type InMemorySessionRepository struct {
	sessions sync.Map
}

// NewInMemorySessionRepository creates a new InMemorySessionRepository.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{}
}

// GetSession retrieves a session by its ID.
func (r *InMemorySessionRepository) GetSession(ctx context.Context, id string) (*domain.ClientSession, error) {
	if session, ok := r.sessions.Load(id); ok {
		return session.(*domain.ClientSession), nil
	}
	return nil, domain.NewSessionNotFoundError(id)
}

// ListSessions returns all active sessions ordered by ID.
func (r *InMemorySessionRepository) ListSessions(ctx context.Context) ([]*domain.ClientSession, error) {
	var sessions []*domain.ClientSession
	r.sessions.Range(func(_, value interface{}) bool {
		sessions = append(sessions, value.(*domain.ClientSession))
		return true
	})
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

// AddSession adds a new session to the repository.
func (r *InMemorySessionRepository) AddSession(ctx context.Context, session *domain.ClientSession) error {
	r.sessions.Store(session.ID, session)
	return nil
}

// DeleteSession removes a session from the repository.
func (r *InMemorySessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, loaded := r.sessions.LoadAndDelete(id); !loaded {
		return domain.NewSessionNotFoundError(id)
	}
	return nil
}
