package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain/shared"
	"github.com/FreePeak/acceptance-mcp-server/internal/domain/transport"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
)

// maxLineSize bounds a single newline-delimited message.
const maxLineSize = 4 * 1024 * 1024

// StdioTransport implements a transport over newline-delimited JSON. It
// defaults to standard input/output; logs never go to the writer.
type StdioTransport struct {
	reader    io.Reader
	writer    *bufio.Writer
	logger    *logging.Logger
	closeCh   chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// StdioOption configures a StdioTransport.
type StdioOption func(*StdioTransport)

// WithStdioIO replaces standard input/output.
func WithStdioIO(r io.Reader, w io.Writer) StdioOption {
	return func(t *StdioTransport) {
		t.reader = r
		t.writer = bufio.NewWriter(w)
	}
}

// WithStdioLogger sets the transport logger.
func WithStdioLogger(logger *logging.Logger) StdioOption {
	return func(t *StdioTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewStdioTransport creates a new stdio transport
func NewStdioTransport(opts ...StdioOption) *StdioTransport {
	t := &StdioTransport{
		reader:  os.Stdin,
		writer:  bufio.NewWriter(os.Stdout),
		logger:  logging.Default(),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start reads messages until the input ends, the context is cancelled or
// the transport is closed.
func (t *StdioTransport) Start(ctx context.Context, handler transport.MessageHandler) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(t.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-t.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.closeCh:
			return nil
		case err := <-readErr:
			if err != nil {
				return errors.Wrap(err, "error reading from stdin")
			}
			t.logger.Info("stdin closed")
			return nil
		case line := <-lines:
			t.handleLine(ctx, handler, line)
		}
	}
}

func (t *StdioTransport) handleLine(ctx context.Context, handler transport.MessageHandler, line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	message, err := shared.DecodeMessage(line)
	if err != nil {
		t.logger.Warn("invalid JSON-RPC message", logging.Fields{"error": err.Error()})
		if sendErr := t.Send(ctx, decodeErrorResponse(err)); sendErr != nil {
			t.logger.Error("error sending error response", logging.Fields{"error": sendErr.Error()})
		}
		return
	}

	if err := handler(ctx, message); err != nil {
		t.logger.Error("error handling message", logging.Fields{"error": err.Error()})
	}
}

// Send writes a message followed by a newline
func (t *StdioTransport) Send(ctx context.Context, message shared.JSONRPCMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "error marshalling message")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return errors.Wrap(err, "error writing message")
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "error writing newline")
	}
	if err := t.writer.Flush(); err != nil {
		return errors.Wrap(err, "error flushing writer")
	}

	return nil
}

// Close closes the transport
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closeCh)
	})
	return nil
}

// decodeErrorResponse maps a decode failure to the error a client should see.
func decodeErrorResponse(err error) shared.JSONRPCResponse {
	var versionErr *shared.VersionError
	if errors.As(err, &versionErr) {
		return shared.NewErrorResponse(versionErr.ID, shared.InvalidRequest, versionErr.Error(), nil)
	}
	return shared.NewErrorResponse(nil, shared.ParseError, shared.ErrorMessage(shared.ParseError), nil)
}
