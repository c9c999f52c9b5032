// Package supervisor implements the reconnect loop.
//
// The Supervisor:
//   - Keeps at most one live connection, closing it before dialing again
//   - Runs an explicit state machine: idle -> connecting -> open -> failed -> idle
//   - Treats setup failures (bad URL, dial error, panic while constructing)
//     and transport failures (error, stale or peer close on an open
//     connection) the same way: log, wait a fixed backoff, retry
//   - Never gives up; only context cancellation stops it
//   - Forwards every inbound message to a Renderer in arrival order and
//     starts one audio cue per opened connection
package supervisor
