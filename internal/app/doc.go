// Package app is modedeck's composition root.
//
// # Components
//
//   - app.go: Run loads config, sets up logging, starts the session and the UI
//   - session.go: store, registry, dispatcher, reconciler, queue and link for
//     every built-in mode type
//   - link.go: the single goroutine that talks to the backend
//   - logging.go: slog handler writing to the configured log file
//
// # Data Flow
//
//	UI keypress
//	  └─> Dispatcher.SetField ── store.Edit (optimistic) ──┐
//	                         └── Queue.Enqueue              │ same lock
//	Link goroutine
//	  ├─> Queue ─> PostMutation ─> entries? ─> UPDATE ─┐
//	  └─> timer ─> drain Queue ─> FetchModes ─> RECEIVE/UPDATE
//	                                                   └─> events chan
//	Reconciler goroutine
//	  └─> events chan ─> ParseList ─> store.Replace (wholesale)
//
// # Event Rules
//
// The first successful poll emits RECEIVE for every mode in the response.
// Later polls emit UPDATE only for modes whose compacted payload differs
// from the one last emitted. A mutation response carrying entries emits
// UPDATE straight away. A mutation answered without entries makes the link
// forget that mode's last payload, so the next poll re-emits it and the
// optimistic edit is either confirmed or overwritten. A mode whose list is
// still pending after the queue was drained is re-emitted on every poll, which
// covers edits whose request never made it into the queue.
//
// # Error Handling
//
// Only config, log file and client setup errors end Run. Poll failures are
// recorded in the store and back off exponentially up to 30 seconds.
// Mutation failures reach Dispatcher.Failed as modesync.ErrRejected (4xx)
// or modesync.ErrChannelUnavailable (transport); nothing is rolled back.
package app
