// Package display holds the message list and the surfaces that show it.
//
// The List is created once at startup and is append-only for the life of
// the process. The Renderer appends each inbound payload verbatim and then
// notifies the configured Surface:
//   - TUI: full-screen tcell list with a connection status bar
//   - TextSurface: timestamped lines on a writer
//   - JSONSurface: one JSON object per entry
package display
