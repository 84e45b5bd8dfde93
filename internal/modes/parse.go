package modes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedSnapshot marks backend data that failed field validation.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// MalformedError pinpoints the entry and field that failed validation.
// Index is -1 when the error is not tied to a list position: either the list
// as a whole could not be decoded (Field is empty) or a single raw entry
// failed (Field is set).
type MalformedError struct {
	Mode   Type
	Index  int
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return fmt.Sprintf("%s: %s: %s", ErrMalformedSnapshot, e.Mode, e.Reason)
	case e.Index < 0:
		return fmt.Sprintf("%s: %s.%s: %s", ErrMalformedSnapshot, e.Mode, e.Field, e.Reason)
	case e.Field == "":
		return fmt.Sprintf("%s: %s[%d]: %s", ErrMalformedSnapshot, e.Mode, e.Index, e.Reason)
	default:
		return fmt.Sprintf("%s: %s[%d].%s: %s", ErrMalformedSnapshot, e.Mode, e.Index, e.Field, e.Reason)
	}
}

func (e *MalformedError) Unwrap() error { return ErrMalformedSnapshot }

// ParseRaw validates one raw backend object against the schema and builds an
// entry with a fresh id. Unknown keys are ignored. Null or missing optional
// fields are left unset.
func ParseRaw(schema Schema, raw map[string]any, ids *IDSource) (Entry, error) {
	return parseAt(schema, -1, raw, ids)
}

// ParseList decodes a JSON array of raw entries. Either every element parses
// or an error is returned and no entries are produced.
func ParseList(schema Schema, data json.RawMessage, ids *IDSource) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raws []map[string]any
	if err := dec.Decode(&raws); err != nil {
		return nil, &MalformedError{Mode: schema.Type, Index: -1, Reason: err.Error()}
	}
	if raws == nil && !bytes.Equal(bytes.TrimSpace(data), []byte("[]")) {
		return nil, &MalformedError{Mode: schema.Type, Index: -1, Reason: "expected a list of entries"}
	}

	entries := make([]Entry, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			return nil, &MalformedError{Mode: schema.Type, Index: i, Reason: "entry is null"}
		}
		e, err := parseAt(schema, i, raw, ids)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseAt(schema Schema, index int, raw map[string]any, ids *IDSource) (Entry, error) {
	fields := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				return Entry{}, &MalformedError{Mode: schema.Type, Index: index, Field: f.Name, Reason: "required field missing"}
			}
			continue
		}
		converted, err := convert(f.Kind, v)
		if err != nil {
			return Entry{}, &MalformedError{Mode: schema.Type, Index: index, Field: f.Name, Reason: err.Error()}
		}
		fields[f.Name] = converted
	}
	return Entry{ID: ids.Next(), fields: fields}, nil
}

func convert(kind Kind, v any) (any, error) {
	switch kind {
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return int(i), nil
			}
			// 8080.0 and 8.08e3 are integral too.
			f, err := n.Float64()
			if err != nil || !isWhole(f) {
				return nil, fmt.Errorf("want int, got %s", n)
			}
			return int(f), nil
		case float64:
			if isWhole(n) {
				return int(n), nil
			}
			return nil, fmt.Errorf("want int, got %v", n)
		}
	}
	return nil, fmt.Errorf("want %s, got %T", kind, v)
}

func isWhole(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) <= math.MaxInt32
}
