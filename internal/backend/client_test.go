package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBind {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBind)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchModesAndPostMutation(t *testing.T) {
	t.Parallel()

	var gotBody MutationBody
	var gotPath, gotUserAgent, gotRequestID, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(requestIDHeader)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/modes":
			_, _ = w.Write([]byte(`{"modes": {"regular": [{"active": true, "listen_port": 8080}]}}`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/modes/"):
			gotPath = r.URL.Path
			gotContentType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(MutationResponse{
				Entries: json.RawMessage(`[{"active": false, "listen_port": 8080}]`),
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	snap, err := c.FetchModes(ctx)
	if err != nil {
		t.Fatalf("FetchModes returned error: %v", err)
	}
	if len(snap.Modes) != 1 || !strings.Contains(string(snap.Modes["regular"]), "8080") {
		t.Fatalf("FetchModes = %#v, want regular list", snap.Modes)
	}

	resp, err := c.PostMutation(ctx, modesync.MutationRequest{
		Mode:  modes.Regular,
		Index: 0,
		Field: modes.FieldActive,
		Value: false,
	})
	if err != nil {
		t.Fatalf("PostMutation returned error: %v", err)
	}
	if gotPath != "/api/modes/regular" {
		t.Fatalf("path = %q, want /api/modes/regular", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody.Index != 0 || gotBody.Field != modes.FieldActive || gotBody.Value != false {
		t.Fatalf("body = %+v, want index 0 active=false", gotBody)
	}
	if resp.Mode != modes.Regular || !resp.HasSnapshot() {
		t.Fatalf("response = %+v, want regular snapshot", resp)
	}

	if !strings.HasPrefix(gotUserAgent, "modedeck/") {
		t.Fatalf("User-Agent = %q, want modedeck/*", gotUserAgent)
	}
	if _, err := uuid.Parse(gotRequestID); err != nil {
		t.Fatalf("%s = %q, want a uuid: %v", requestIDHeader, gotRequestID, err)
	}
}

func TestClient_PostMutationRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/modes/regular":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"mode": "regular", "error": "port in use", "entries": [{"active": true}]}`))
		case "/api/modes/local":
			http.Error(w, "plain text", http.StatusBadRequest)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	resp, err := c.PostMutation(ctx, modesync.MutationRequest{Mode: modes.Regular, Field: modes.FieldListenPort, Value: 80})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("PostMutation error = %v, want ErrRejected", err)
	}
	if !strings.Contains(err.Error(), "port in use") {
		t.Fatalf("error = %q, want backend reason", err)
	}
	if !resp.HasSnapshot() {
		t.Fatalf("rejection lost its corrective snapshot: %+v", resp)
	}

	_, err = c.PostMutation(ctx, modesync.MutationRequest{Mode: modes.Local, Field: modes.FieldActive, Value: true})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("plain-text 400 error = %v, want ErrRejected", err)
	}

	_, err = c.PostMutation(ctx, modesync.MutationRequest{Mode: modes.DNS, Field: modes.FieldActive, Value: true})
	if err == nil || errors.Is(err, ErrRejected) || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("500 error = %v, want status 500 error", err)
	}

	if _, err := c.PostMutation(ctx, modesync.MutationRequest{}); err == nil {
		t.Fatalf("PostMutation without mode returned nil error")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "nope", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not-json"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchModes(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 503") {
		t.Fatalf("FetchModes error = %v, want status 503 error", err)
	}

	fail.Store(false)
	_, err = c.FetchModes(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchModes error = %v, want decode response error", err)
	}
}

func TestClient_UnreachableBackend(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchModes(context.Background())
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("FetchModes error = %v, want execute request error", err)
	}
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	if _, err := c.FetchModes(context.Background()); err == nil {
		t.Fatalf("FetchModes on nil client returned nil error")
	}
	if _, err := c.PostMutation(context.Background(), modesync.MutationRequest{Mode: modes.Regular}); err == nil {
		t.Fatalf("PostMutation on nil client returned nil error")
	}
}
