package modes

import (
	"maps"
	"math/rand/v2"
	"sync"
)

// Type names a proxy mode kind such as "regular" or "reverse".
type Type string

const (
	Regular   Type = "regular"
	Local     Type = "local"
	WireGuard Type = "wireguard"
	Reverse   Type = "reverse"
	SOCKS5    Type = "socks5"
	DNS       Type = "dns"
)

// ID is the client-only identity of an entry. It is never sent to the backend.
// The zero value means "no identity".
type ID uint64

// Entry is one configured instance of a mode. Entries are values: every
// mutation returns a copy and leaves the receiver untouched.
type Entry struct {
	ID     ID
	fields map[string]any
}

// NewEntry builds an entry from already validated field values. Nil values
// are treated as unset.
func NewEntry(id ID, fields map[string]any) Entry {
	e := Entry{ID: id, fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		if v != nil {
			e.fields[k] = v
		}
	}
	return e
}

// Value returns the raw value of a field and whether it is set.
func (e Entry) Value(name string) (any, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Bool returns a boolean field, false when unset.
func (e Entry) Bool(name string) bool {
	b, _ := e.fields[name].(bool)
	return b
}

// String returns an optional string field.
func (e Entry) String(name string) (string, bool) {
	s, ok := e.fields[name].(string)
	return s, ok
}

// Int returns an optional integer field.
func (e Entry) Int(name string) (int, bool) {
	n, ok := e.fields[name].(int)
	return n, ok
}

// With returns a copy of e with the named field set to v. A nil v unsets the
// field. The identity is preserved.
func (e Entry) With(name string, v any) Entry {
	dup := Entry{ID: e.ID, fields: make(map[string]any, len(e.fields)+1)}
	maps.Copy(dup.fields, e.fields)
	if v == nil {
		delete(dup.fields, name)
	} else {
		dup.fields[name] = v
	}
	return dup
}

// Fields returns a copy of the set fields.
func (e Entry) Fields() map[string]any {
	return maps.Clone(e.fields)
}

// SameFields reports whether both entries hold identical field values,
// ignoring identity.
func (e Entry) SameFields(other Entry) bool {
	return maps.Equal(e.fields, other.fields)
}

// IDSource hands out ephemeral ids. Ids are drawn uniformly at random and an
// id is never handed out twice by the same source.
type IDSource struct {
	mu     sync.Mutex
	issued map[ID]struct{}
	draw   func() uint64
}

// NewIDSource returns a source backed by math/rand/v2.
func NewIDSource() *IDSource {
	return &IDSource{issued: make(map[ID]struct{}), draw: rand.Uint64}
}

// Next returns a fresh id.
func (s *IDSource) Next() ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.issued == nil {
		s.issued = make(map[ID]struct{})
	}
	if s.draw == nil {
		s.draw = rand.Uint64
	}
	for {
		id := ID(s.draw())
		if id == 0 {
			continue
		}
		if _, used := s.issued[id]; used {
			continue
		}
		s.issued[id] = struct{}{}
		return id
	}
}
