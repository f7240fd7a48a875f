package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// BodyKind tags which variant a ParsedBody holds.
type BodyKind int

const (
	// BodyText is an opaque response body kept verbatim.
	BodyText BodyKind = iota
	// BodyJSON is a body the server declared as JSON and that decoded cleanly.
	BodyJSON
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	default:
		return "text"
	}
}

// ParsedBody is a response body decoded according to its declared content type.
type ParsedBody struct {
	kind  BodyKind
	value any
	text  string
}

// JSONBody wraps an already decoded JSON value.
func JSONBody(v any) ParsedBody { return ParsedBody{kind: BodyJSON, value: v} }

// TextBody wraps raw response text.
func TextBody(s string) ParsedBody { return ParsedBody{kind: BodyText, text: s} }

func (b ParsedBody) Kind() BodyKind { return b.kind }

// JSON returns the decoded value when the body is the JSON variant.
func (b ParsedBody) JSON() (any, bool) {
	if b.kind != BodyJSON {
		return nil, false
	}
	return b.value, true
}

// Text returns the raw text when the body is the text variant.
func (b ParsedBody) Text() (string, bool) {
	if b.kind != BodyText {
		return "", false
	}
	return b.text, true
}

// Object returns the body as a JSON object, if it is one.
func (b ParsedBody) Object() (map[string]any, bool) {
	v, ok := b.JSON()
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// MarshalJSON renders JSON bodies as themselves and text bodies as a JSON string.
func (b ParsedBody) MarshalJSON() ([]byte, error) {
	if b.kind == BodyJSON {
		return json.Marshal(b.value)
	}
	return json.Marshal(b.text)
}

// isJSONContentType reports whether a Content-Type header declares JSON.
func isJSONContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}

// decodeBody applies the content-type rule: declared JSON is parsed, anything else is kept as text.
func decodeBody(header http.Header, raw []byte) (ParsedBody, error) {
	if !isJSONContentType(header.Get("Content-Type")) {
		return TextBody(string(raw)), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return ParsedBody{}, fmt.Errorf("decode json body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ParsedBody{}, errors.New("decode json body: trailing data after value")
	}
	return JSONBody(v), nil
}
