// Package server implements the JSON-RPC side of the MCP server and the
// transports it runs over.
package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/handler"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/shared"
	mcperrors "github.com/FreePeak/acceptance-mcp-server/internal/domain/shared/errors"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/transport"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
)

// DefaultProtocolVersion is reported when the client does not name one.
const DefaultProtocolVersion = "2025-06-18"

// Request outcomes reported to a RequestObserver.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// RequestObserver is notified once per handled request.
type RequestObserver interface {
	ObserveRequest(method, outcome string)
}

// SessionManager tracks client sessions opened by initialize.
type SessionManager interface {
	RegisterSession(ctx context.Context, session *domain.ClientSession) error
	UnregisterSession(ctx context.Context, id string) error
}

// Server represents an MCP server
type Server struct {
	info         shared.ServerInfo
	capabilities shared.Capabilities
	transport    transport.Transport

	resourceHandler handler.ResourceHandler
	toolHandler     handler.ToolHandler
	sessions        SessionManager
	observer        RequestObserver
	logger          *logging.Logger

	mu        sync.Mutex
	sessionID string
}

// NewServer creates a new MCP server
func NewServer(name, version string) *Server {
	return &Server{
		info: shared.ServerInfo{
			Name:    name,
			Version: version,
		},
		capabilities: shared.Capabilities{},
		logger:       logging.Default(),
	}
}

// WithResourceHandler adds a resource handler to the server
func (s *Server) WithResourceHandler(handler handler.ResourceHandler) *Server {
	s.resourceHandler = handler
	s.capabilities.Resources = &shared.ResourcesCapability{}
	return s
}

// WithToolHandler adds a tool handler to the server
func (s *Server) WithToolHandler(handler handler.ToolHandler) *Server {
	s.toolHandler = handler
	s.capabilities.Tools = &shared.ToolsCapability{}
	return s
}

// WithSessionManager sets where sessions opened by initialize are kept
func (s *Server) WithSessionManager(sessions SessionManager) *Server {
	s.sessions = sessions
	return s
}

// WithObserver sets the request observer
func (s *Server) WithObserver(observer RequestObserver) *Server {
	s.observer = observer
	return s
}

// WithLogger sets the server logger
func (s *Server) WithLogger(logger *logging.Logger) *Server {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Info returns the server identity.
func (s *Server) Info() shared.ServerInfo {
	return s.info
}

// Connect connects the server to a transport
func (s *Server) Connect(transport transport.Transport) error {
	if transport == nil {
		return errors.New("transport cannot be nil")
	}
	s.transport = transport
	return nil
}

// Start runs the server until the transport stops
func (s *Server) Start(ctx context.Context) error {
	if s.transport == nil {
		return errors.New("no transport specified")
	}

	s.logger.Info("server starting", logging.Fields{
		"name":    s.info.Name,
		"version": s.info.Version,
	})
	return s.transport.Start(ctx, s.handleMessage)
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.transport == nil {
		return nil
	}

	return s.transport.Close()
}

// handleMessage processes incoming JSON-RPC messages and sends the reply
func (s *Server) handleMessage(ctx context.Context, message shared.JSONRPCMessage) error {
	if message.IsResponse() {
		s.logger.Debug("ignoring client response")
		return nil
	}
	if n, ok := message.(shared.JSONRPCNotification); ok {
		s.logger.Debug("notification received", logging.Fields{"method": n.Method})
		return nil
	}

	req, ok := message.(shared.JSONRPCRequest)
	if !ok {
		return errors.New("invalid message type")
	}

	response := s.Handle(ctx, req)
	return errors.Wrapf(s.transport.Send(ctx, response), "sending response to %s", req.Method)
}

// Handle computes the response to a single request.
func (s *Server) Handle(ctx context.Context, req shared.JSONRPCRequest) shared.JSONRPCResponse {
	logger := s.logger.With(logging.Fields{"method": req.Method, "id": string(req.ID)})
	logger.Debug("request received")

	result, err := s.dispatch(ctx, req)
	if err != nil {
		mcpErr := mcperrors.FromError(err)
		s.observe(req.Method, OutcomeError)
		fields := logging.Fields{"code": int(mcpErr.Code), "error": mcpErr.Message}
		switch {
		case mcperrors.IsResourceNotFound(err):
			logger.Warn("resource not found", fields)
		case mcperrors.IsInvalidParams(err):
			logger.Warn("invalid params", fields)
		case mcpErr.Code == shared.MethodNotFound:
			logger.Warn("method not found", fields)
		default:
			logger.Error("request failed", fields)
		}
		return shared.JSONRPCResponse{
			JSONRPC: shared.JSONRPCVersion,
			ID:      req.ID,
			Error:   mcpErr.JSONRPC(),
		}
	}

	s.observe(req.Method, OutcomeOK)
	return shared.JSONRPCResponse{
		JSONRPC: shared.JSONRPCVersion,
		ID:      req.ID,
		Result:  result,
	}
}

func (s *Server) dispatch(ctx context.Context, req shared.JSONRPCRequest) (interface{}, error) {
	switch req.Method {
	case shared.MethodInitialize:
		return s.handleInitialize(ctx, req)
	case shared.MethodPing:
		return shared.EmptyResult{}, nil
	case shared.MethodShutdown:
		return s.handleShutdown(ctx)
	case shared.MethodListResources:
		return s.handleListResources()
	case shared.MethodListResourceTemplates:
		return s.handleListResourceTemplates(ctx)
	case shared.MethodReadResource:
		return s.handleReadResource(ctx, req)
	case shared.MethodListTools:
		return s.handleListTools(ctx)
	case shared.MethodCallTool:
		return s.handleCallTool(ctx, req)
	default:
		return nil, mcperrors.New(shared.MethodNotFound, shared.ErrorMessage(shared.MethodNotFound), map[string]string{"method": req.Method})
	}
}

// handleInitialize opens a client session and reports the server identity
func (s *Server) handleInitialize(ctx context.Context, req shared.JSONRPCRequest) (interface{}, error) {
	var params shared.InitializeParams
	if err := unmarshalParams(req.Params, &params); err != nil {
		return nil, mcperrors.NewInvalidParamsError("Invalid params", err)
	}

	session := domain.NewClientSession(params.ClientInfo.Name)
	if s.sessions != nil {
		if err := s.sessions.RegisterSession(ctx, session); err != nil {
			return nil, errors.Wrap(err, "registering session")
		}
	}

	s.mu.Lock()
	s.sessionID = session.ID
	s.mu.Unlock()

	s.logger.Info("client initialized", logging.Fields{
		"session_id": session.ID,
		"client":     params.ClientInfo.Name,
	})

	version := params.ProtocolVersion
	if version == "" {
		version = DefaultProtocolVersion
	}
	return shared.InitializeResult{
		ProtocolVersion: version,
		ServerInfo:      s.info,
		Capabilities:    s.capabilities,
	}, nil
}

// handleShutdown closes the current session
func (s *Server) handleShutdown(ctx context.Context) (interface{}, error) {
	s.mu.Lock()
	id := s.sessionID
	s.sessionID = ""
	s.mu.Unlock()

	if id != "" && s.sessions != nil {
		if err := s.sessions.UnregisterSession(ctx, id); err != nil {
			s.logger.Warn("session already gone", logging.Fields{"session_id": id, "error": err.Error()})
		}
	}
	return shared.EmptyResult{}, nil
}

// SessionID returns the session opened by the last initialize, if any.
func (s *Server) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// handleListResources lists concrete resources. Every resource is served
// through a template, so there are none.
func (s *Server) handleListResources() (interface{}, error) {
	if s.resourceHandler == nil {
		return nil, mcperrors.New(shared.MethodNotFound, "Resources not supported", nil)
	}
	return shared.ListResourcesResult{Resources: []shared.Resource{}}, nil
}

func (s *Server) handleListResourceTemplates(ctx context.Context) (interface{}, error) {
	if s.resourceHandler == nil {
		return nil, mcperrors.New(shared.MethodNotFound, "Resources not supported", nil)
	}

	templates, err := s.resourceHandler.ListResourceTemplates(ctx)
	if err != nil {
		return nil, err
	}
	return shared.ListResourceTemplatesResult{
		ResourceTemplates: shared.NewResourceTemplates(templates),
	}, nil
}

func (s *Server) handleReadResource(ctx context.Context, req shared.JSONRPCRequest) (interface{}, error) {
	if s.resourceHandler == nil {
		return nil, mcperrors.New(shared.MethodNotFound, "Resources not supported", nil)
	}

	var params shared.ReadResourceParams
	if err := unmarshalParams(req.Params, &params); err != nil {
		return nil, mcperrors.NewInvalidParamsError("Invalid params", err)
	}
	if params.URI == "" {
		return nil, mcperrors.NewInvalidParamsError("uri is required", nil)
	}

	payload, err := domain.PayloadFromJSON(params.Body)
	if err != nil {
		return nil, mcperrors.NewInvalidParamsError("Invalid body", err)
	}

	envelope, err := s.resourceHandler.ReadResource(ctx, params.URI, payload)
	if err != nil {
		return nil, err
	}
	return shared.NewReadResourceResult(envelope), nil
}

func (s *Server) handleListTools(ctx context.Context) (interface{}, error) {
	if s.toolHandler == nil {
		return nil, mcperrors.New(shared.MethodNotFound, "Tools not supported", nil)
	}

	tools, err := s.toolHandler.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	return shared.ListToolsResult{Tools: shared.NewTools(tools)}, nil
}

func (s *Server) handleCallTool(ctx context.Context, req shared.JSONRPCRequest) (interface{}, error) {
	if s.toolHandler == nil {
		return nil, mcperrors.New(shared.MethodNotFound, "Tools not supported", nil)
	}

	var params shared.CallToolParams
	if err := unmarshalParams(req.Params, &params); err != nil {
		return nil, mcperrors.NewInvalidParamsError("Invalid params", err)
	}
	if params.Name == "" {
		return nil, mcperrors.NewInvalidParamsError("name is required", nil)
	}

	envelope, err := s.toolHandler.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return nil, err
	}
	return shared.NewCallToolResult(envelope), nil
}

func (s *Server) observe(method, outcome string) {
	if s.observer == nil {
		return
	}
	if _, known := knownMethods[method]; !known {
		method = "unknown"
	}
	s.observer.ObserveRequest(method, outcome)
}

// knownMethods bounds the label values reported to the observer.
var knownMethods = map[string]struct{}{
	shared.MethodInitialize:            {},
	shared.MethodPing:                  {},
	shared.MethodShutdown:              {},
	shared.MethodListResources:         {},
	shared.MethodListResourceTemplates: {},
	shared.MethodReadResource:          {},
	shared.MethodListTools:             {},
	shared.MethodCallTool:              {},
}

// unmarshalParams decodes request parameters. Absent params decode to the
// zero value.
func unmarshalParams(params json.RawMessage, target interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, target)
}
