package domain

import (
	"bytes"
	"encoding/json"
)

// PayloadKind tags which variant a Payload holds.
type PayloadKind int

const (
	// PayloadNone means the request carried no payload.
	PayloadNone PayloadKind = iota
	// PayloadRaw is an unparsed JSON text supplied as a string.
	PayloadRaw
	// PayloadParsed is an already decoded JSON document.
	PayloadParsed
)

// Payload is the optional body of a resource request. It is either absent,
// a raw JSON string that still has to be parsed, or a parsed document.
type Payload struct {
	kind PayloadKind
	raw  string
	doc  interface{}
}

// NoPayload returns the empty payload.
func NoPayload() Payload {
	return Payload{kind: PayloadNone}
}

// RawPayload wraps JSON text that has not been parsed yet.
func RawPayload(text string) Payload {
	return Payload{kind: PayloadRaw, raw: text}
}

// ParsedPayload wraps an already decoded JSON document.
func ParsedPayload(doc interface{}) Payload {
	return Payload{kind: PayloadParsed, doc: doc}
}

// PayloadFromJSON classifies a wire value: a JSON string becomes a raw
// payload, any other JSON value a parsed one, and an empty or null value no
// payload at all.
func PayloadFromJSON(msg json.RawMessage) (Payload, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return NoPayload(), nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return Payload{}, err
		}
		return RawPayload(text), nil
	}

	var doc interface{}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Payload{}, err
	}
	return ParsedPayload(doc), nil
}

// Kind reports which variant the payload holds.
func (p Payload) Kind() PayloadKind {
	return p.kind
}

// Raw returns the unparsed text of a raw payload.
func (p Payload) Raw() string {
	return p.raw
}

// Document resolves the payload into a JSON document. Raw payloads are parsed
// here; an absent payload resolves to nil.
func (p Payload) Document() (interface{}, error) {
	switch p.kind {
	case PayloadRaw:
		var doc interface{}
		if err := json.Unmarshal([]byte(p.raw), &doc); err != nil {
			return nil, NewPayloadParseError(err)
		}
		return doc, nil
	case PayloadParsed:
		return p.doc, nil
	default:
		return nil, nil
	}
}
