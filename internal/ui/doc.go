// Package ui is modedeck's Bubble Tea front end.
//
// # Views
//
//   - Modes: one tab per mode type, listing its entries as mode spec strings
//     (regular@8080, reverse:https://example.com@9000) with the list's sync
//     state
//   - Logs: tail of modedeck's own log file, coloured by slog level
//
// # Data Flow
//
// The UI never waits on the network. Edits go through the dispatcher, which
// applies them to the store at once, and the model re-reads the store right
// after each edit. A tick re-reads it again so snapshots applied by the
// reconciler show up within a second.
//
// # Key Bindings
//
//   - tab / shift+tab: Next / previous mode type
//   - j/k, g/G: Move within the list
//   - space: Toggle active
//   - p: Edit listen port (empty input clears it)
//   - H: Edit listen host (empty input clears it)
//   - l: Toggle log view
//   - T: Cycle theme (saved to prefs)
//   - ?: Help
//   - q or ctrl+c: Quit
package ui
