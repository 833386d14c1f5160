package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadFromJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind PayloadKind
	}{
		{name: "absent", in: "", kind: PayloadNone},
		{name: "null", in: "null", kind: PayloadNone},
		{name: "string", in: `"{\"title\":\"x\"}"`, kind: PayloadRaw},
		{name: "object", in: `{"title":"x"}`, kind: PayloadParsed},
		{name: "array", in: `[1,2]`, kind: PayloadParsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PayloadFromJSON(json.RawMessage(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
		})
	}
}

func TestPayloadDocument(t *testing.T) {
	doc, err := RawPayload(`{"title":"x"}`).Document()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "x"}, doc)

	doc, err = ParsedPayload(map[string]interface{}{"title": "y"}).Document()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "y"}, doc)

	doc, err = NoPayload().Document()
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestPayloadDocumentParseFailure(t *testing.T) {
	p := RawPayload("{not json")
	assert.Equal(t, "{not json", p.Raw())

	_, err := p.Document()
	require.Error(t, err)

	var parseErr *PayloadParseError
	assert.True(t, errors.As(err, &parseErr))
}
