package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain/shared"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/transport"
)

// MockTransport records what the server sends and lets tests deliver
// messages to the server as a real transport would.
type MockTransport struct {
	mu       sync.Mutex
	handler  transport.MessageHandler
	started  bool
	closed   bool
	sent     []shared.JSONRPCMessage
	sentCh   chan struct{}
	startErr error
	sendErr  error
	closeErr error
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{sentCh: make(chan struct{})}
}

// SetStartError makes Start fail with err
func (m *MockTransport) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetSendError makes Send fail with err after recording the message
func (m *MockTransport) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetCloseError makes Close fail with err
func (m *MockTransport) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Start keeps the handler for later deliveries. It does not block.
func (m *MockTransport) Start(ctx context.Context, handler transport.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	if m.startErr != nil {
		return m.startErr
	}
	m.handler = handler
	return nil
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

// Send records message and wakes any WaitForMessageCount callers
func (m *MockTransport) Send(ctx context.Context, message shared.JSONRPCMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, message)
	close(m.sentCh)
	m.sentCh = make(chan struct{})
	return m.sendErr
}

// IsStartCalled reports whether Start was called
func (m *MockTransport) IsStartCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// IsCloseCalled reports whether Close was called
func (m *MockTransport) IsCloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetMessagesSent returns a copy of everything sent so far
func (m *MockTransport) GetMessagesSent() []shared.JSONRPCMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]shared.JSONRPCMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastResponse returns the most recent response sent, if any.
func (m *MockTransport) LastResponse() (shared.JSONRPCResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if resp, ok := m.sent[i].(shared.JSONRPCResponse); ok {
			return resp, true
		}
	}
	return shared.JSONRPCResponse{}, false
}

// ClearMessagesSent forgets recorded messages
func (m *MockTransport) ClearMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// ProcessMessage delivers message to the handler and returns its error.
// It is a no-op before a successful Start.
func (m *MockTransport) ProcessMessage(ctx context.Context, message shared.JSONRPCMessage) error {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	if handler == nil {
		return nil
	}
	return handler(ctx, message)
}

// ProcessMessageAsync delivers message on its own goroutine. The returned
// channel receives the handler error.
func (m *MockTransport) ProcessMessageAsync(ctx context.Context, message shared.JSONRPCMessage) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- m.ProcessMessage(ctx, message)
	}()
	return done
}

// WaitForMessageCount blocks until at least count messages were sent or
// timeout elapses, and reports whether the count was reached.
func (m *MockTransport) WaitForMessageCount(count int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		m.mu.Lock()
		if len(m.sent) >= count {
			m.mu.Unlock()
			return true
		}
		wake := m.sentCh
		m.mu.Unlock()

		select {
		case <-wake:
		case <-deadline.C:
			return false
		}
	}
}
