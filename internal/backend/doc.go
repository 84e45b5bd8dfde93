// Package backend provides an HTTP client for the proxy backend's mode API.
//
// # Overview
//
// The backend is the authority on mode configuration. This package only
// moves bytes: it fetches raw mode lists and posts field mutations. Parsing
// and validation of the lists happens in the modes package when the
// reconciler applies them.
//
// # Architecture
//
//   - client.go: HTTP client implementation and request/response handling
//   - types.go: payloads mirroring the backend API
//
// # Endpoints
//
//	GET  /api/modes          → {"modes": {"regular": [...], "local": [...]}}
//	POST /api/modes/{mode}   ← {"index": 0, "field": "active", "value": false}
//	                         → {"mode": "regular", "entries": [...]}
//
// A 4xx reply to a mutation is a rejection. The body has the same shape plus
// an "error" string, and usually carries the backend's current list so the
// client can drop its optimistic value. PostMutation returns both the decoded
// body and an error matching ErrRejected in that case.
//
// # Client Usage
//
//	client, err := backend.NewClient("127.0.0.1:8081")
//	if err != nil {
//		return err
//	}
//
//	snap, err := client.FetchModes(ctx)
//	if err != nil {
//		return err
//	}
//	for _, ev := range snap.Events(modesync.Receive) {
//		reconciler.Apply(ev)
//	}
//
// # Headers
//
// Every request carries User-Agent "modedeck/<version>" and an X-Request-ID
// with a random UUID so backend logs can be matched to client logs. The
// request id is unrelated to entry ids, which never leave the client.
//
// # Error Handling
//
//   - Network failures: "execute request: ..." (wrapped)
//   - 5xx: "api <path> returned status N"
//   - 4xx on a mutation: ErrRejected with the backend's reason
//   - Invalid JSON on success: "decode response: ..."
//
// The default HTTP timeout is 5 seconds.
package backend
