package backend

import (
	"encoding/json"
	"sort"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
)

// ModesResponse mirrors the payload returned by GET /api/modes. Lists are
// kept raw; validation belongs to the reconciler.
type ModesResponse struct {
	Modes map[string]json.RawMessage `json:"modes"`
}

// MutationBody is the JSON body of POST /api/modes/{mode}.
type MutationBody struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// MutationResponse mirrors the reply to a mutation. Entries holds the
// canonical list after the backend handled the request and may be absent.
type MutationResponse struct {
	Mode    modes.Type      `json:"mode"`
	Entries json.RawMessage `json:"entries,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HasSnapshot reports whether the response carries a list to reconcile.
func (r MutationResponse) HasSnapshot() bool {
	return len(r.Entries) > 0 && string(r.Entries) != "null"
}

// Event converts the carried list into an update event.
func (r MutationResponse) Event() modesync.Event {
	return modesync.Event{Kind: modesync.Update, Mode: r.Mode, Raw: r.Entries}
}

func (r ModesResponse) modeNames() []string {
	rank := make(map[string]int)
	for i, s := range modes.Builtin() {
		rank[string(s.Type)] = i
	}
	names := make([]string, 0, len(r.Modes))
	for name := range r.Modes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iKnown := rank[names[i]]
		rj, jKnown := rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return names[i] < names[j]
		}
	})
	return names
}
