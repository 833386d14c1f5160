package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type testingWriter struct {
	logs *bytes.Buffer
}

func (w *testingWriter) Write(p []byte) (int, error) {
	return w.logs.Write(p)
}

func (w *testingWriter) Sync() error {
	return nil
}

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&testingWriter{logs: buf}),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)

	return fromZap(zap.New(core)), buf
}

func TestLoggerLevels(t *testing.T) {
	testLogger, buf := newTestLogger(t)
	defer testLogger.Sync()

	testLogger.Debug("debug message")
	testLogger.Info("info message")
	testLogger.Warn("warning message")
	testLogger.Error("error message")

	output := buf.String()
	for _, want := range []string{
		"debug message", "info message", "warning message", "error message",
		`"level":"debug"`, `"level":"info"`, `"level":"warn"`, `"level":"error"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in logs", want)
		}
	}
}

func TestLoggerWithFields(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Info("resource resolved", Fields{
		"uri":      "greeting://Ada",
		"template": "greeting://{name}",
	})

	output := buf.String()
	assert.Contains(t, output, `"uri":"greeting://Ada"`)
	assert.Contains(t, output, `"template":"greeting://{name}"`)
}

func TestLoggerNamed(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Named("resources").Info("registered")

	assert.Contains(t, buf.String(), `"logger":"resources"`)
}

func TestLoggerWithFormattedMessages(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Infof("add called with a=%v, b=%v", 2, 3)

	assert.Contains(t, buf.String(), "add called with a=2, b=3")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "Default config", config: DefaultConfig()},
		{name: "Development config", config: DevelopmentConfig()},
		{name: "No outputs", config: Config{Level: WarnLevel}},
		{name: "Initial fields", config: Config{Level: ErrorLevel, InitialFields: Fields{"service": "demo-server"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	custom, _ := newTestLogger(t)
	SetDefault(custom)
	assert.Same(t, custom, Default())

	SetDefault(nil)
	assert.Same(t, custom, Default())
}

func TestContextLogger(t *testing.T) {
	testLogger, _ := newTestLogger(t)

	ctx := WithLogger(context.Background(), testLogger)
	assert.Same(t, testLogger, FromContext(ctx))
	assert.Same(t, Default(), FromContext(context.Background()))
}

func TestMiddleware(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	handler := Middleware(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handling")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), `"path":"/mcp"`)
	assert.Contains(t, buf.String(), `"method":"POST"`)
}
