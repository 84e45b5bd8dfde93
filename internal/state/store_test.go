package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/modedeck/internal/modes"
)

func newRegularStore(t *testing.T) *Store {
	t.Helper()
	schema, ok := modes.Lookup(modes.Regular)
	if !ok {
		t.Fatalf("regular schema missing")
	}
	return NewStore(modes.NewIDSource(), schema)
}

func TestNewStore_StartsWithDefaults(t *testing.T) {
	s := NewStore(modes.NewIDSource(), modes.Builtin()...)

	if got := len(s.Modes()); got != len(modes.Builtin()) {
		t.Fatalf("len(Modes()) = %d, want %d", got, len(modes.Builtin()))
	}
	l, ok := s.List(modes.Regular)
	if !ok {
		t.Fatalf("List(regular) missing")
	}
	if len(l.Entries) != 1 || !l.Entries[0].Bool(modes.FieldActive) {
		t.Fatalf("regular entries = %#v, want one active default", l.Entries)
	}
	if l.State != Uninitialized {
		t.Fatalf("State = %v, want uninitialized", l.State)
	}
}

func TestStore_EditKeepsIDAndMarksPending(t *testing.T) {
	s := newRegularStore(t)
	before, _ := s.Entry(modes.Regular, 0)
	rev := s.Revision()

	updated, err := s.Edit(modes.Regular, 0, func(e modes.Entry) modes.Entry {
		return modes.NewEntry(0, map[string]any{modes.FieldActive: false})
	})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if updated.ID != before.ID {
		t.Fatalf("Edit changed id: got %d want %d", updated.ID, before.ID)
	}

	l, _ := s.List(modes.Regular)
	if l.Entries[0].Bool(modes.FieldActive) {
		t.Fatalf("edit not visible in List")
	}
	if l.State != PendingLocalEdit {
		t.Fatalf("State = %v, want pending", l.State)
	}
	if s.Revision() <= rev {
		t.Fatalf("Revision did not advance")
	}
}

func TestStore_EditErrors(t *testing.T) {
	s := newRegularStore(t)
	called := false
	fn := func(e modes.Entry) modes.Entry {
		called = true
		return e
	}

	if _, err := s.Edit(modes.Regular, 5, fn); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("Edit(5) error = %v, want ErrNoEntry", err)
	}
	if _, err := s.Edit(modes.Regular, -1, fn); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("Edit(-1) error = %v, want ErrNoEntry", err)
	}
	if _, err := s.Edit(modes.DNS, 0, fn); !errors.Is(err, ErrNoMode) {
		t.Fatalf("Edit(dns) error = %v, want ErrNoMode", err)
	}
	if called {
		t.Fatalf("edit function ran for a failed lookup")
	}
	if l, _ := s.List(modes.Regular); l.State != Uninitialized {
		t.Fatalf("State = %v after failed edits, want uninitialized", l.State)
	}
}

func TestStore_ReplaceAndListClone(t *testing.T) {
	s := newRegularStore(t)
	ids := s.IDs()

	entries := []modes.Entry{
		modes.NewEntry(ids.Next(), map[string]any{modes.FieldActive: true}),
		modes.NewEntry(ids.Next(), map[string]any{modes.FieldActive: false}),
	}
	before := time.Now()
	if err := s.Replace(modes.Regular, entries); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	l, _ := s.List(modes.Regular)
	if len(l.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(l.Entries))
	}
	if l.State != Synced {
		t.Fatalf("State = %v, want synced", l.State)
	}
	if l.LastSynced.Before(before) {
		t.Fatalf("LastSynced = %v, want >= %v", l.LastSynced, before)
	}

	// Returned list should be independent of the stored one.
	l.Entries[0] = modes.Entry{}
	entries[1] = modes.Entry{}
	again, _ := s.List(modes.Regular)
	if again.Entries[0].ID == 0 || again.Entries[1].ID == 0 {
		t.Fatalf("List should clone entries; got %#v", again.Entries)
	}

	if err := s.Replace(modes.Local, nil); !errors.Is(err, ErrNoMode) {
		t.Fatalf("Replace(local) error = %v, want ErrNoMode", err)
	}
}

func TestStore_LinkFailures(t *testing.T) {
	s := newRegularStore(t)

	if s.Link().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	origErr := errors.New("boom")
	s.RecordLink(origErr)
	link := s.Link()
	if link.ConsecutiveFailures != 1 || link.IsOffline() {
		t.Fatalf("after 1 failure: %+v offline=%v", link, link.IsOffline())
	}
	if link.LastError == nil || link.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", link.LastError)
	}
	if reflect.ValueOf(link.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Link should clone error instance")
	}

	s.RecordLink(errors.New("again"))
	if !s.Link().IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	s.RecordLink(nil)
	link = s.Link()
	if link.ConsecutiveFailures != 0 || link.LastError != nil || link.IsOffline() {
		t.Fatalf("success did not reset link: %+v", link)
	}
}

func TestSyncState_String(t *testing.T) {
	for state, want := range map[SyncState]string{
		Uninitialized:    "uninitialized",
		Synced:           "synced",
		PendingLocalEdit: "pending",
	} {
		if got := state.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
