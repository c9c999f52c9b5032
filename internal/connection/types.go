package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrStaleConnection  = errors.New("connection stale (no ping)")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrAlreadyConnected = errors.New("already connected")
	ErrPeerClosed       = errors.New("peer closed connection")
	ErrInvalidURL       = errors.New("invalid feed url")
)

// EventKind identifies what an Event carries.
type EventKind int

const (
	EventMessage EventKind = iota // Inbound frame payload
	EventError                    // Transport failure
	EventClosed                   // Close frame received from peer
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one item of the connection's event stream.
//
// A Client emits any number of EventMessage events followed by at most one
// terminal event (EventError or EventClosed), after which the stream is closed.
type Event struct {
	Kind       EventKind
	Data       []byte    // Raw frame bytes (EventMessage only)
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
	Err        error     // Cause for terminal events
	CloseCode  int       // WebSocket close code (EventClosed only)
	CloseText  string    // Close reason (EventClosed only)
}

// Text returns the payload as display text.
func (e Event) Text() string {
	return string(e.Data)
}

// Terminal reports whether this event ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventError || e.Kind == EventClosed
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Feed endpoint (e.g., ws://192.168.1.2:8765)
	SessionID        string        // Identifies this connection in logs and display entries
	HandshakeTimeout time.Duration // Upper bound on the opening handshake
	PingInterval     time.Duration // How often to send a keepalive ping
	PingTimeout      time.Duration // Max time without ping/pong/data before considering connection stale
	WriteTimeout     time.Duration // Write deadline for control frames
	BufferSize       int           // Event channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}
