package modesync

import (
	"fmt"

	"github.com/five82/modedeck/internal/modes"
)

// MutationRequest asks the backend to set one field of one entry. It is the
// only thing that crosses the wire for a local edit.
type MutationRequest struct {
	Mode  modes.Type `json:"mode"`
	Index int        `json:"index"`
	Field string     `json:"field"`
	Value any        `json:"value"`
}

// ApplyFunc produces the locally edited entry. It must be pure.
type ApplyFunc func(e modes.Entry, value any) modes.Entry

// EncodeFunc turns an edit into the request sent to the backend.
type EncodeFunc func(mode modes.Type, index int, field string, value any) MutationRequest

// Setter is the registry record for one editable field.
type Setter struct {
	Mode     modes.Type
	Field    string
	Kind     modes.Kind
	Required bool
	Apply    ApplyFunc
	Encode   EncodeFunc
}

type setterKey struct {
	mode  modes.Type
	field string
}

// Registry maps (mode, field) to its setter. It is filled once at startup and
// read-only afterwards; mistakes in registration panic.
type Registry struct {
	setters map[setterKey]Setter
	order   map[modes.Type][]string
	frozen  bool
}

// NewRegistry returns an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{
		setters: make(map[setterKey]Setter),
		order:   make(map[modes.Type][]string),
	}
}

// Register adds a setter. Registering the same field twice, registering after
// Freeze, or leaving Apply/Encode nil panics.
func (r *Registry) Register(s Setter) {
	if r.frozen {
		panic(fmt.Sprintf("modesync: register %s.%s on frozen registry", s.Mode, s.Field))
	}
	if s.Apply == nil || s.Encode == nil {
		panic(fmt.Sprintf("modesync: setter %s.%s lacks apply or encode", s.Mode, s.Field))
	}
	k := setterKey{s.Mode, s.Field}
	if _, dup := r.setters[k]; dup {
		panic(fmt.Sprintf("modesync: setter %s.%s registered twice", s.Mode, s.Field))
	}
	r.setters[k] = s
	r.order[s.Mode] = append(r.order[s.Mode], s.Field)
}

// Freeze makes the registry read-only and returns it.
func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

// Lookup returns the setter for (mode, field).
func (r *Registry) Lookup(mode modes.Type, field string) (Setter, bool) {
	s, ok := r.setters[setterKey{mode, field}]
	return s, ok
}

// Fields lists the editable fields of mode in registration order.
func (r *Registry) Fields(mode modes.Type) []string {
	return append([]string(nil), r.order[mode]...)
}

// SetterFor builds the standard setter for a schema field: overwrite the
// field locally, send (mode, index, field, value) upstream.
func SetterFor(mode modes.Type, f modes.Field) Setter {
	return Setter{
		Mode:     mode,
		Field:    f.Name,
		Kind:     f.Kind,
		Required: f.Required,
		Apply: func(e modes.Entry, value any) modes.Entry {
			return e.With(f.Name, value)
		},
		Encode: EncodeRequest,
	}
}

// EncodeRequest is the default EncodeFunc.
func EncodeRequest(mode modes.Type, index int, field string, value any) MutationRequest {
	return MutationRequest{Mode: mode, Index: index, Field: field, Value: value}
}

// DefaultRegistry registers every field of the given schemas and freezes the
// result.
func DefaultRegistry(schemas ...modes.Schema) *Registry {
	r := NewRegistry()
	for _, schema := range schemas {
		for _, f := range schema.Fields {
			r.Register(SetterFor(schema.Type, f))
		}
	}
	return r.Freeze()
}

func (s Setter) check(value any) error {
	if value == nil {
		if s.Required {
			return fmt.Errorf("%w: %s.%s cannot be cleared", ErrInvalidValue, s.Mode, s.Field)
		}
		return nil
	}
	ok := false
	switch s.Kind {
	case modes.KindBool:
		_, ok = value.(bool)
	case modes.KindString:
		_, ok = value.(string)
	case modes.KindInt:
		_, ok = value.(int)
	}
	if !ok {
		return fmt.Errorf("%w: %s.%s wants %s, got %T", ErrInvalidValue, s.Mode, s.Field, s.Kind, value)
	}
	return nil
}
