// Package connection implements a single WebSocket session to the feed.
//
// A Client:
//   - Dials one fixed endpoint and never sends data frames
//   - Answers server pings and sends its own keepalive pings
//   - Delivers inbound frames, transport errors and peer close as one
//     ordered stream of Events
//   - Reports a stale connection as a terminal error event
//
// Reconnection is not handled here; see package supervisor.
package connection
