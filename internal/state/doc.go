// Package state holds the local copy of every proxy mode list.
//
// # Overview
//
// The Store is the single in-process owner of the mode lists. Two writers
// touch it: the optimistic dispatcher (one entry at a time, through Edit) and
// the snapshot reconciler (a whole list at a time, through Replace). The UI
// only reads.
//
//	Dispatcher:                    Reconciler:
//	┌──────────────────┐          ┌──────────────────┐
//	│ store.Edit(m, i) │          │ store.Replace(m)  │
//	└────────┬─────────┘          └────────┬─────────┘
//	         │          (mutex)            │
//	         └──────────→ Store ←──────────┘
//	                        │
//	                        ↓
//	                 store.List(m)  → UI
//
// # Sync State
//
// Each list moves through three states. The whole list transitions at once;
// entries have no state of their own.
//
//	Uninitialized ──first snapshot──→ Synced
//	Synced ──────────local edit─────→ PendingLocalEdit
//	PendingLocalEdit ──any snapshot─→ Synced
//
// A snapshot always replaces the list wholesale, so a pending edit that the
// backend has not folded into its snapshot is dropped.
//
// # Identity
//
// Entries are identified by position and by an ephemeral ID drawn from the
// store's IDSource. Edit keeps the ID of the entry it replaces. Replace takes
// entries that already carry fresh IDs (the reconciler parses them with
// IDs()), so IDs are never reused across a replacement.
//
// # Defensive Copying
//
// List returns cloned slices and Link returns a wrapped copy of the last
// error, so readers never share mutable state with the store.
//
// # Link Health
//
// RecordLink stores the outcome of each backend poll. Two consecutive
// failures make Link().IsOffline() report true; one success resets it.
//
// # Usage Example
//
//	ids := modes.NewIDSource()
//	store := state.NewStore(ids, modes.Builtin()...)
//
//	// dispatcher
//	store.Edit(modes.Regular, 0, func(e modes.Entry) modes.Entry {
//		return e.With(modes.FieldActive, false)
//	})
//
//	// reconciler
//	entries, _ := modes.ParseList(schema, raw, store.IDs())
//	store.Replace(modes.Regular, entries)
//
//	// UI
//	if l, ok := store.List(modes.Regular); ok {
//		render(l.Entries, l.State)
//	}
package state
