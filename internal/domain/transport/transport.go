// Package transport defines how JSON-RPC messages reach the server.
package transport

import (
	"context"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain/shared"
)

// MessageHandler is a function that handles incoming messages
type MessageHandler func(ctx context.Context, message shared.JSONRPCMessage) error

// Transport defines the interface for MCP transports
type Transport interface {
	// Start starts the transport with the given message handler. It returns
	// once the transport stops receiving.
	Start(ctx context.Context, handler MessageHandler) error

	// Send sends a message through the transport
	Send(ctx context.Context, message shared.JSONRPCMessage) error

	// Close closes the transport
	Close() error
}

// Responder delivers the reply to a single in-flight request.
type Responder func(message shared.JSONRPCMessage) error

type responderKey struct{}

// WithResponder attaches a per-request responder to ctx. Request/response
// transports use it to route a reply back to the caller that is waiting.
func WithResponder(ctx context.Context, r Responder) context.Context {
	return context.WithValue(ctx, responderKey{}, r)
}

// ResponderFrom returns the responder attached to ctx, if any.
func ResponderFrom(ctx context.Context) (Responder, bool) {
	r, ok := ctx.Value(responderKey{}).(Responder)
	return r, ok && r != nil
}
