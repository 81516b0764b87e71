// Package protocol implements the wire codec: one JSON object per
// newline-terminated UTF-8 line, selected by its "type" field.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ProtocolError reports a line that could not be decoded. Framing is
// unaffected; the reader may continue with the next line.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ErrMissingType is wrapped by a ProtocolError when a line has no string "type".
var ErrMissingType = errors.New(`message has no string "type" field`)

// Message is a decoded inbound message.
type Message struct {
	Type   string
	fields map[string]json.RawMessage
}

// Encode serializes v as a single JSON line terminated by '\n'. Non-ASCII
// text is emitted as UTF-8, not escaped.
//
// Postcondition: The returned bytes contain exactly one '\n', at the end.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses one line. Surrounding whitespace, including the line
// terminator, is ignored.
//
// Postcondition: Returns (nil, nil) for a blank line, a *ProtocolError for
// malformed input, or the decoded Message.
func Decode(line []byte) (*Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, &ProtocolError{Err: err}
	}
	if fields == nil {
		return nil, &ProtocolError{Err: errors.New("message is not a JSON object")}
	}

	var typ string
	raw, ok := fields["type"]
	if !ok || json.Unmarshal(raw, &typ) != nil {
		return nil, &ProtocolError{Err: ErrMissingType}
	}
	return &Message{Type: typ, fields: fields}, nil
}

// Has reports whether key is present and not null.
func (m *Message) Has(key string) bool {
	raw, ok := m.fields[key]
	return ok && string(raw) != "null"
}

// String returns the string value of key.
//
// Postcondition: Returns ("", false) if key is absent or not a JSON string.
func (m *Message) String(key string) (string, bool) {
	raw, ok := m.fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Bool returns the boolean value of key. Anything but JSON true is false.
func (m *Message) Bool(key string) bool {
	raw, ok := m.fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// Int returns the integer value of key. A JSON integer or a string holding
// a decimal integer is accepted.
//
// Postcondition: Returns a non-nil error if key is absent or not an integer.
func (m *Message) Int(key string) (int, error) {
	raw, ok := m.fields[key]
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	switch t := v.(type) {
	case json.Number:
		num = t
	case string:
		num = json.Number(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("field %q is not an integer", key)
	}

	n, err := strconv.Atoi(num.String())
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}
