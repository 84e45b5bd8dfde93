package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/five82/modedeck/internal/backend"
	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
	"github.com/five82/modedeck/internal/state"
)

// modesServer is an in-memory backend that accepts edits and rejects
// listen ports above 65535.
type modesServer struct {
	mu    sync.Mutex
	lists map[string][]map[string]any
}

func newModesServer(t *testing.T) (*modesServer, *httptest.Server) {
	t.Helper()
	s := &modesServer{lists: map[string][]map[string]any{
		"regular": {{"active": true}},
		"socks5":  {{"active": false, "listen_port": 1080}},
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/modes", s.handleList)
	mux.HandleFunc("POST /api/modes/{mode}", s.handleMutation)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *modesServer) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]any{"modes": s.lists})
}

func (s *modesServer) handleMutation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := r.PathValue("mode")
	var body backend.MutationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, ok := s.lists[mode]
	reject := func(reason string) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"mode": mode, "entries": list, "error": reason})
	}
	switch {
	case !ok || body.Index < 0 || body.Index >= len(list):
		reject("no such entry")
		return
	case body.Field == modes.FieldListenPort:
		if port, _ := body.Value.(float64); port > 65535 {
			reject("port out of range")
			return
		}
	}
	if body.Value == nil {
		delete(list[body.Index], body.Field)
	} else {
		list[body.Index][body.Field] = body.Value
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"mode": mode, "entries": list})
}

func (s *modesServer) value(mode string, index int, field string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[mode][index][field]
}

func startSession(t *testing.T, apiBind string) *Session {
	t.Helper()
	client, err := backend.NewClient(apiBind)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session := NewSession(client, SessionOptions{
		QueueSize: 8,
		PollEvery: 20 * time.Millisecond,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Session.Run = %v, want nil after cancel", err)
		}
	})
	return session
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSession_InitialSnapshotAndOptimisticEdit(t *testing.T) {
	server, srv := newModesServer(t)
	session := startSession(t, srv.URL)

	waitFor(t, "initial socks5 snapshot", func() bool {
		l, _ := session.Store.List(modes.SOCKS5)
		return l.State == state.Synced
	})
	l, _ := session.Store.List(modes.SOCKS5)
	if port, _ := l.Entries[0].Int(modes.FieldListenPort); port != 1080 {
		t.Fatalf("socks5 listen_port = %d, want 1080", port)
	}
	if l, _ := session.Store.List(modes.DNS); l.State != state.Uninitialized {
		t.Fatalf("dns state = %v, want uninitialized (not in backend response)", l.State)
	}

	if err := session.Dispatcher.Bool(modes.Regular, modes.FieldActive).Set(0, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if e, _ := session.Store.Entry(modes.Regular, 0); e.Bool(modes.FieldActive) {
		t.Fatalf("local edit not visible immediately")
	}

	waitFor(t, "backend to receive the edit", func() bool {
		v, _ := server.value("regular", 0, modes.FieldActive).(bool)
		return !v
	})
	waitFor(t, "regular list to resync", func() bool {
		l, _ := session.Store.List(modes.Regular)
		return l.State == state.Synced && len(l.Entries) == 1 && !l.Entries[0].Bool(modes.FieldActive)
	})
}

func TestSession_RejectionRestoresBackendValue(t *testing.T) {
	_, srv := newModesServer(t)
	session := startSession(t, srv.URL)

	waitFor(t, "initial socks5 snapshot", func() bool {
		l, _ := session.Store.List(modes.SOCKS5)
		return l.State == state.Synced
	})

	if err := session.Dispatcher.Int(modes.SOCKS5, modes.FieldListenPort).Set(0, 70000); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if l, _ := session.Store.List(modes.SOCKS5); l.State != state.PendingLocalEdit {
		t.Fatalf("state after local edit = %v, want pending", l.State)
	}

	waitFor(t, "rejection to be recorded", func() bool {
		f, ok := session.Dispatcher.LastFailure()
		return ok && errors.Is(f.Err, modesync.ErrRejected)
	})
	waitFor(t, "corrective snapshot", func() bool {
		l, _ := session.Store.List(modes.SOCKS5)
		port, _ := l.Entries[0].Int(modes.FieldListenPort)
		return l.State == state.Synced && port == 1080
	})
}

func TestSession_UnknownEntryLeavesListUnchanged(t *testing.T) {
	_, srv := newModesServer(t)
	session := startSession(t, srv.URL)

	waitFor(t, "initial regular snapshot", func() bool {
		l, _ := session.Store.List(modes.Regular)
		return l.State == state.Synced
	})
	before, _ := session.Store.List(modes.Regular)

	err := session.Dispatcher.Bool(modes.Regular, modes.FieldActive).Set(5, false)
	if !errors.Is(err, modesync.ErrUnknownEntry) {
		t.Fatalf("Set(5) = %v, want ErrUnknownEntry", err)
	}
	after, _ := session.Store.List(modes.Regular)
	if len(after.Entries) != len(before.Entries) || !after.Entries[0].SameFields(before.Entries[0]) {
		t.Fatalf("list changed after unknown entry edit: %+v", after.Entries)
	}
	if session.Queue.Len() != 0 {
		t.Fatalf("queue holds %d requests, want 0", session.Queue.Len())
	}
}
