// Package modes defines the proxy mode entry model.
//
// An Entry is one configured instance of a mode type (a listener, a reverse
// proxy target, a WireGuard endpoint). Entries carry a set of primitive
// fields described by a Schema plus an ephemeral ID that exists only on the
// client. The backend neither sees nor assigns IDs; every entry parsed from a
// backend snapshot gets a new one from an IDSource.
//
// # Parsing
//
// ParseRaw validates one decoded JSON object and ParseList validates a whole
// snapshot list. Required fields that are missing and fields of the wrong
// primitive type produce a *MalformedError, which matches
// ErrMalformedSnapshot under errors.Is. Unknown keys are ignored so newer
// backends can add fields without breaking older clients.
//
// # Built-in schemas
//
//	regular    active, listen_host?, listen_port?
//	local      active, selected_processes?
//	wireguard  active, file_path?, listen_host?, listen_port?
//	reverse    active, protocol, destination?, listen_host?, listen_port?
//	socks5     active, listen_host?, listen_port?
//	dns        active, listen_host?, listen_port?
//
// FormatSpec renders an entry in the proxy's command line mode syntax for
// display, e.g. "reverse:https://example.com@8081".
package modes
