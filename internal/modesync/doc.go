// Package modesync keeps the local mode lists and the backend in step.
//
// Edits go out through the Dispatcher: the store changes first, then a
// MutationRequest is queued for the transport. Snapshots come back in as
// Events and the Reconciler swaps them in for the whole list. There is no
// rollback path; when the backend refuses an edit it is expected to push a
// corrective snapshot, and until then the optimistic value stays visible.
//
// The Registry maps (mode, field) to the pair of functions both sides need:
// Apply for the local edit and Encode for the request. DefaultRegistry builds
// it from the mode schemas so no field needs hand-written glue.
//
// Ordering comes from the transport. Queue is a FIFO drained by one
// goroutine, and events must reach Reconciler.Run in the order the backend
// produced them; nothing here carries sequence numbers.
package modesync
