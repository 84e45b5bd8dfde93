// Package logtail reads the tail of modedeck's own log file for the log view.
//
// Read keeps a ring buffer of maxLines entries, so memory stays
// O(maxLines) no matter how large the file grows:
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//
// A missing file is not an error; the view simply shows nothing until the
// first record is written.
//
// Level pulls the slog level out of a line so the UI can colour it. Both
// handler formats are recognised:
//
//	time=2025-10-08T21:01:05Z level=WARN msg="mutation not delivered" mode=regular
//	{"time":"2025-10-08T21:01:05Z","level":"ERROR","msg":"poll failed"}
package logtail
