package modes

import "sort"

// Kind is the primitive type of a field.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// Field names for the built-in modes.
const (
	FieldActive            = "active"
	FieldListenHost        = "listen_host"
	FieldListenPort        = "listen_port"
	FieldSelectedProcesses = "selected_processes"
	FieldFilePath          = "file_path"
	FieldProtocol          = "protocol"
	FieldDestination       = "destination"
)

// Field describes one field of a mode entry.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema is the field list of a mode type plus the values of the entry a
// list starts with before the backend has been heard from.
type Schema struct {
	Type     Type
	Fields   []Field
	Defaults map[string]any
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Default builds the initial entry for this mode with a fresh id.
func (s Schema) Default(ids *IDSource) Entry {
	return NewEntry(ids.Next(), s.Defaults)
}

var listenFields = []Field{
	{Name: FieldListenHost, Kind: KindString},
	{Name: FieldListenPort, Kind: KindInt},
}

func withActive(extra ...Field) []Field {
	fields := []Field{{Name: FieldActive, Kind: KindBool, Required: true}}
	return append(fields, extra...)
}

var builtin = map[Type]Schema{
	Regular: {
		Type:     Regular,
		Fields:   withActive(listenFields...),
		Defaults: map[string]any{FieldActive: true},
	},
	Local: {
		Type:     Local,
		Fields:   withActive(Field{Name: FieldSelectedProcesses, Kind: KindString}),
		Defaults: map[string]any{FieldActive: false},
	},
	WireGuard: {
		Type:     WireGuard,
		Fields:   withActive(append([]Field{{Name: FieldFilePath, Kind: KindString}}, listenFields...)...),
		Defaults: map[string]any{FieldActive: false},
	},
	Reverse: {
		Type: Reverse,
		Fields: withActive(append([]Field{
			{Name: FieldProtocol, Kind: KindString, Required: true},
			{Name: FieldDestination, Kind: KindString},
		}, listenFields...)...),
		Defaults: map[string]any{FieldActive: false, FieldProtocol: "https"},
	},
	SOCKS5: {
		Type:     SOCKS5,
		Fields:   withActive(listenFields...),
		Defaults: map[string]any{FieldActive: false},
	},
	DNS: {
		Type:     DNS,
		Fields:   withActive(listenFields...),
		Defaults: map[string]any{FieldActive: false},
	},
}

// Lookup returns the built-in schema for t.
func Lookup(t Type) (Schema, bool) {
	s, ok := builtin[t]
	return s, ok
}

// Builtin returns every built-in schema in a stable order, regular first.
func Builtin() []Schema {
	out := make([]Schema, 0, len(builtin))
	for _, s := range builtin {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return order(out[i].Type) < order(out[j].Type)
	})
	return out
}

func order(t Type) int {
	switch t {
	case Regular:
		return 0
	case Local:
		return 1
	case WireGuard:
		return 2
	case Reverse:
		return 3
	case SOCKS5:
		return 4
	case DNS:
		return 5
	default:
		return 6
	}
}
