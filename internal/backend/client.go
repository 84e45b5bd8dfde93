package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/modesync"
)

// ErrRejected is returned when the backend answers a mutation with a 4xx.
var ErrRejected = errors.New("rejected by backend")

// ModesAPI defines the backend calls the link needs.
// This interface is implemented by *Client and can be used for testing.
type ModesAPI interface {
	FetchModes(ctx context.Context) (ModesResponse, error)
	PostMutation(ctx context.Context, req modesync.MutationRequest) (MutationResponse, error)
}

// Ensure Client implements ModesAPI at compile time.
var _ ModesAPI = (*Client)(nil)

// Client talks to the proxy backend's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	requestID func() string
}

const (
	defaultAPIBind   = "127.0.0.1:8081"
	defaultUserAgent = "modedeck/0.1"
	requestTimeout   = 5 * time.Second
	requestIDHeader  = "X-Request-ID"
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		requestID: uuid.NewString,
	}, nil
}

// FetchModes retrieves the current snapshot of every mode list.
func (c *Client) FetchModes(ctx context.Context) (ModesResponse, error) {
	if c == nil {
		return ModesResponse{}, fmt.Errorf("client is nil")
	}
	var payload ModesResponse
	status, err := c.do(ctx, http.MethodGet, &url.URL{Path: "/api/modes"}, nil, &payload)
	if err != nil {
		return ModesResponse{}, err
	}
	if status >= 400 {
		return ModesResponse{}, fmt.Errorf("api /api/modes returned status %d", status)
	}
	return payload, nil
}

// PostMutation sends one field edit. On a 4xx the decoded body is returned
// together with an error matching ErrRejected so the caller can still apply
// a corrective snapshot carried in the response.
func (c *Client) PostMutation(ctx context.Context, req modesync.MutationRequest) (MutationResponse, error) {
	if c == nil {
		return MutationResponse{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(string(req.Mode)) == "" {
		return MutationResponse{}, fmt.Errorf("mode required")
	}
	body := MutationBody{Index: req.Index, Field: req.Field, Value: req.Value}
	rel := &url.URL{Path: "/api/modes/" + url.PathEscape(string(req.Mode))}

	var payload MutationResponse
	status, err := c.do(ctx, http.MethodPost, rel, body, &payload)
	switch {
	case err != nil && status >= 400 && status < 500:
		// Body was not JSON; the rejection still counts.
		return MutationResponse{}, fmt.Errorf("%w: status %d", ErrRejected, status)
	case err != nil:
		return MutationResponse{}, err
	case status >= 500:
		return MutationResponse{}, fmt.Errorf("api %s returned status %d", rel.String(), status)
	case status >= 400:
		reason := strings.TrimSpace(payload.Error)
		if reason == "" {
			reason = http.StatusText(status)
		}
		return payload, fmt.Errorf("%w: %s (status %d)", ErrRejected, reason, status)
	}
	if payload.Mode == "" {
		payload.Mode = req.Mode
	}
	return payload, nil
}

// do executes a request and decodes a JSON body into dest. The status code
// is returned whenever a response arrived, even when decoding failed.
func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.requestID != nil {
		req.Header.Set(requestIDHeader, c.requestID())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil || resp.StatusCode >= 500 {
		return resp.StatusCode, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Events turns a full modes response into one snapshot event per mode, in
// the order of known mode types first, then any others alphabetically.
func (r ModesResponse) Events(kind modesync.EventKind) []modesync.Event {
	events := make([]modesync.Event, 0, len(r.Modes))
	for _, name := range r.modeNames() {
		events = append(events, modesync.Event{Kind: kind, Mode: modes.Type(name), Raw: r.Modes[name]})
	}
	return events
}
