package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain/shared"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/transport"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
)

// maxBodySize bounds a single HTTP request body.
const maxBodySize = 4 * 1024 * 1024

// ErrNoPendingRequest is returned by Send when no HTTP request is waiting
// for the message.
var ErrNoPendingRequest = errors.New("no pending HTTP request for message")

// HTTPTransport serves one JSON-RPC message per POST and answers it in the
// same HTTP response.
type HTTPTransport struct {
	addr           string
	logger         *logging.Logger
	metricsHandler http.Handler
	server         *http.Server
	mu             sync.Mutex
	closeCh        chan struct{}
	closeOnce      sync.Once
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPLogger sets the transport logger.
func WithHTTPLogger(logger *logging.Logger) HTTPOption {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetricsHandler mounts h under /metrics.
func WithMetricsHandler(h http.Handler) HTTPOption {
	return func(t *HTTPTransport) {
		t.metricsHandler = h
	}
}

// NewHTTPTransport creates a new HTTP transport listening on addr
func NewHTTPTransport(addr string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		addr:    addr,
		logger:  logging.Default(),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handler builds the router that dispatches to handler.
func (t *HTTPTransport) Handler(handler transport.MessageHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(t.logger))
	r.Use(middleware.Recoverer)

	r.Post("/mcp", t.handleMessage(handler))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if t.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", t.metricsHandler)
	}
	return r
}

// Start serves HTTP until the context is cancelled or the transport is closed.
func (t *HTTPTransport) Start(ctx context.Context, handler transport.MessageHandler) error {
	srv := &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	t.mu.Lock()
	t.server = srv
	t.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		t.logger.Info("http transport listening", logging.Fields{"addr": t.addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case <-t.closeCh:
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down http server")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server error")
	}
	return nil
}

// Send delivers message to the HTTP request that is waiting for it.
func (t *HTTPTransport) Send(ctx context.Context, message shared.JSONRPCMessage) error {
	respond, ok := transport.ResponderFrom(ctx)
	if !ok {
		return ErrNoPendingRequest
	}
	return respond(message)
}

// Close stops the transport
func (t *HTTPTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closeCh)
	})
	return nil
}

func (t *HTTPTransport) handleMessage(handler transport.MessageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logging.FromContext(r.Context()).Warn("request body too large", logging.Fields{"limit": tooLarge.Limit})
				writeJSON(w, http.StatusRequestEntityTooLarge,
					shared.NewErrorResponse(nil, shared.InvalidRequest, "request body too large", nil))
				return
			}
			writeJSON(w, http.StatusBadRequest, shared.NewErrorResponse(nil, shared.ParseError, "error reading request body", nil))
			return
		}

		message, err := shared.DecodeMessage(body)
		if err != nil {
			logging.FromContext(r.Context()).Warn("invalid JSON-RPC message", logging.Fields{"error": err.Error()})
			writeJSON(w, http.StatusBadRequest, decodeErrorResponse(err))
			return
		}

		if !message.IsRequest() {
			if err := handler(r.Context(), message); err != nil {
				logging.FromContext(r.Context()).Error("error handling message", logging.Fields{"error": err.Error()})
			}
			w.WriteHeader(http.StatusAccepted)
			return
		}

		var reply shared.JSONRPCMessage
		ctx := transport.WithResponder(r.Context(), func(m shared.JSONRPCMessage) error {
			reply = m
			return nil
		})

		if err := handler(ctx, message); err != nil {
			logging.FromContext(r.Context()).Error("error handling message", logging.Fields{"error": err.Error()})
		}
		if reply == nil {
			req := message.(shared.JSONRPCRequest)
			writeJSON(w, http.StatusInternalServerError,
				shared.NewErrorResponse(req.ID, shared.InternalError, shared.ErrorMessage(shared.InternalError), nil))
			return
		}

		writeJSON(w, http.StatusOK, reply)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
