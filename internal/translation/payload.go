// Package translation parses the per-record translations payload stored with words and book pages.
//
// Payloads are decoded exactly once, at the data-access boundary, into a Payload value.
// Stored data written by older clients may be JSON-encoded one or two extra times; Decode
// unwraps at most two textual layers. Writes always go through Encode, which only produces
// single-level JSON.
package translation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxDecodeAttempts is how many times a textual payload is parsed before it is rejected.
// Deprecated behavior kept for stored data; Encode never produces textual payloads.
const MaxDecodeAttempts = 2

var (
	ErrStillEncoded = errors.New("still encoded after 2 decode attempts")
	ErrUnexpected   = errors.New("unexpected payload shape")
	ErrEmptyCode    = errors.New("empty language code")
)

type Status int

const (
	StatusMissing Status = iota
	StatusValid
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Entry is a single translation. Stored values are either a bare string or an object
// with at least a name.
type Entry struct {
	Name          string
	Pronunciation string
	Extra         map[string]json.RawMessage
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrUnexpected
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("json.Unmarshal > %w", err)
		}
		*e = Entry{Name: name}
		return nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("json.Unmarshal > %w", err)
		}
		var entry Entry
		for key, value := range fields {
			switch key {
			case "name":
				if err := json.Unmarshal(value, &entry.Name); err != nil {
					return fmt.Errorf("name: %w", ErrUnexpected)
				}
			case "pronunciation":
				if err := json.Unmarshal(value, &entry.Pronunciation); err != nil {
					return fmt.Errorf("pronunciation: %w", ErrUnexpected)
				}
			default:
				if entry.Extra == nil {
					entry.Extra = make(map[string]json.RawMessage)
				}
				entry.Extra[key] = value
			}
		}
		*e = entry
		return nil
	}
	return fmt.Errorf("entry %s: %w", truncate(data), ErrUnexpected)
}

// MarshalJSON writes a bare string when the entry has nothing but a name.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Pronunciation == "" && len(e.Extra) == 0 {
		return json.Marshal(e.Name)
	}
	fields := make(map[string]any, len(e.Extra)+2)
	for key, value := range e.Extra {
		fields[key] = value
	}
	fields["name"] = e.Name
	if e.Pronunciation != "" {
		fields["pronunciation"] = e.Pronunciation
	}
	return json.Marshal(fields)
}

// Mapping maps a language code to its translation.
type Mapping map[string]Entry

// Payload is the parsed form of a stored translations value.
type Payload struct {
	Status  Status
	Mapping Mapping
	// Depth is the number of textual layers that had to be parsed.
	Depth  int
	Reason error
}

// Legacy reports whether the payload was stored with extra textual encoding.
func (p Payload) Legacy() bool {
	return p.Status == StatusValid && p.Depth > 0
}

// Has reports whether the payload carries a translation for code.
func (p Payload) Has(code string) bool {
	_, ok := p.Mapping[code]
	return ok
}

func missing() Payload {
	return Payload{Status: StatusMissing}
}

func invalid(err error) Payload {
	return Payload{Status: StatusInvalid, Reason: err}
}

// Decode parses the raw JSON value of a translations column.
//
// A JSON object is used directly. A JSON string holds a textual encoding: it is parsed
// once and, if that yields another string, a second time. Anything still textual after
// MaxDecodeAttempts parses is invalid.
func Decode(raw json.RawMessage) Payload {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return missing()
	}

	depth := 0
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return invalid(fmt.Errorf("json.Unmarshal > %w", err))
		}
		for {
			var value json.RawMessage
			if err := json.Unmarshal([]byte(text), &value); err != nil {
				return invalid(fmt.Errorf("parse attempt %d: %w", depth+1, err))
			}
			depth++
			value = bytes.TrimSpace(value)
			if len(value) == 0 || value[0] != '"' {
				data = value
				break
			}
			if depth == MaxDecodeAttempts {
				return invalid(ErrStillEncoded)
			}
			if err := json.Unmarshal(value, &text); err != nil {
				return invalid(fmt.Errorf("json.Unmarshal > %w", err))
			}
		}
	}

	if bytes.Equal(data, []byte("null")) {
		return missing()
	}
	if len(data) == 0 || data[0] != '{' {
		return invalid(fmt.Errorf("value %s: %w", truncate(data), ErrUnexpected))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return invalid(fmt.Errorf("json.Unmarshal > %w", err))
	}
	mapping := make(Mapping, len(fields))
	for code, value := range fields {
		// a null entry is an untranslated language
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			return invalid(fmt.Errorf("entry %q: %w", code, err))
		}
		mapping[code] = entry
	}
	return Payload{Status: StatusValid, Mapping: mapping, Depth: depth}
}

// Encode produces the single-level JSON object stored for a mapping.
func Encode(mapping Mapping) (json.RawMessage, error) {
	for code := range mapping {
		if code == "" {
			return nil, ErrEmptyCode
		}
	}
	if mapping == nil {
		mapping = Mapping{}
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	if p := Decode(data); p.Status != StatusValid || p.Depth != 0 {
		return nil, fmt.Errorf("encoded payload decodes as %s at depth %d: %w", p.Status, p.Depth, ErrUnexpected)
	}
	return data, nil
}

func truncate(data []byte) string {
	const limit = 32
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
