package modesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/state"
)

// EventKind tells where a snapshot came from. Both kinds are applied the
// same way.
type EventKind int

const (
	// Receive is the current state sent on connect.
	Receive EventKind = iota
	// Update is any later change pushed by the backend.
	Update
)

func (k EventKind) String() string {
	if k == Receive {
		return "receive"
	}
	return "update"
}

// Event carries a backend snapshot of one mode list as a raw JSON array.
type Event struct {
	Kind EventKind
	Mode modes.Type
	Raw  json.RawMessage
}

// Reconciler replaces local mode lists with backend snapshots.
type Reconciler struct {
	store   *state.Store
	schemas map[modes.Type]modes.Schema
	logger  *slog.Logger
}

// NewReconciler builds a reconciler for the given schemas. A nil logger uses
// slog.Default().
func NewReconciler(store *state.Store, schemas []modes.Schema, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	byType := make(map[modes.Type]modes.Schema, len(schemas))
	for _, s := range schemas {
		byType[s.Type] = s
	}
	return &Reconciler{store: store, schemas: byType, logger: logger}
}

// Apply parses the snapshot and swaps it in for the whole list. Pending local
// edits on that list are discarded. A snapshot that fails validation is
// skipped and the current list is kept.
func (r *Reconciler) Apply(ev Event) error {
	schema, ok := r.schemas[ev.Mode]
	if !ok {
		r.logger.Warn("snapshot for unknown mode skipped", "kind", ev.Kind, "mode", ev.Mode)
		return fmt.Errorf("%w: %s", ErrUnknownMode, ev.Mode)
	}

	entries, err := modes.ParseList(schema, ev.Raw, r.store.IDs())
	if err != nil {
		r.logger.Warn("malformed snapshot skipped", "kind", ev.Kind, "mode", ev.Mode, "err", err)
		return err
	}
	if err := r.store.Replace(ev.Mode, entries); err != nil {
		r.logger.Warn("snapshot not applied", "kind", ev.Kind, "mode", ev.Mode, "err", err)
		return fmt.Errorf("%w: %w", ErrUnknownMode, err)
	}
	r.logger.Debug("snapshot applied", "kind", ev.Kind, "mode", ev.Mode, "entries", len(entries))
	return nil
}

// Run applies events in arrival order until ctx is done or events is closed.
// Failed snapshots are logged by Apply and do not stop the loop.
func (r *Reconciler) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			_ = r.Apply(ev)
		}
	}
}
