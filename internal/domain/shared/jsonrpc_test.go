package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	t.Run("request with numeric id", func(t *testing.T) {
		msg, err := DecodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
		require.NoError(t, err)

		req, ok := msg.(JSONRPCRequest)
		require.True(t, ok)
		assert.Equal(t, "ping", req.Method)
		assert.Equal(t, json.RawMessage("1"), req.ID)
	})

	t.Run("request with string id", func(t *testing.T) {
		msg, err := DecodeMessage([]byte(`{"jsonrpc":"2.0","id":"abc","method":"tools/list","params":{}}`))
		require.NoError(t, err)

		req := msg.(JSONRPCRequest)
		assert.Equal(t, json.RawMessage(`"abc"`), req.ID)
		assert.JSONEq(t, `{}`, string(req.Params))
	})

	t.Run("notification", func(t *testing.T) {
		msg, err := DecodeMessage([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
		require.NoError(t, err)
		assert.True(t, msg.IsNotification())
	})

	t.Run("response", func(t *testing.T) {
		msg, err := DecodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
		require.NoError(t, err)
		assert.True(t, msg.IsResponse())
	})

	t.Run("wrong version", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{"jsonrpc":"1.0","id":7,"method":"ping"}`))
		var versionErr *VersionError
		require.ErrorAs(t, err, &versionErr)
		assert.Equal(t, json.RawMessage("7"), versionErr.ID)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestResponseEchoesID(t *testing.T) {
	resp := JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      json.RawMessage(`"req-1"`),
		Result:  EmptyResult{},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"req-1","result":{}}`, string(data))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(nil, ParseError, ErrorMessage(ParseError), nil)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`, string(data))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Method not found", ErrorMessage(MethodNotFound))
	assert.Equal(t, "Resource not found", ErrorMessage(ResourceNotFound))
	assert.Equal(t, "Unknown error", ErrorMessage(ErrorCode(1)))
}
