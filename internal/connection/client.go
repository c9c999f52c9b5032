package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket session to the feed.
type Client interface {
	// Connect performs the opening handshake and starts delivering events.
	Connect(ctx context.Context) error

	// Close gracefully closes the connection. The event stream is closed
	// without a terminal event.
	Close() error

	// Events returns the ordered stream of inbound messages followed by at
	// most one terminal event.
	Events() <-chan Event

	// IsConnected returns current connection state.
	IsConnected() bool

	// SessionID returns the identifier this client was created with.
	SessionID() string

	// URL returns the endpoint this client dials.
	URL() string
}

// client implements the Client interface.
type client struct {
	cfg    ClientConfig
	logger *slog.Logger

	conn *websocket.Conn

	events   chan Event
	done     chan struct{} // closed by Close
	readDone chan struct{} // closed when readLoop exits

	// State
	mu         sync.RWMutex
	connected  bool
	closed     bool
	lastSeenAt time.Time
	staleErr   error
}

// NewClient creates a new WebSocket client. It fails if the endpoint is not
// a ws:// or wss:// URL.
func NewClient(cfg ClientConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}

	return &client{
		cfg:      cfg,
		logger:   logger,
		events:   make(chan Event, cfg.BufferSize),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}, nil
}

// Connect establishes the WebSocket connection.
func (c *client) Connect(ctx context.Context) error {
	c.mu.RLock()
	closed, dialed := c.closed, c.conn != nil
	c.mu.RUnlock()
	if closed {
		return ErrAlreadyClosed
	}
	if dialed {
		return ErrAlreadyConnected
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return ErrAlreadyClosed
	}
	c.conn = conn
	c.connected = true
	c.lastSeenAt = time.Now()
	c.mu.Unlock()

	// Server sends ping, we respond with pong
	conn.SetPingHandler(func(data string) error {
		c.touch(time.Now())
		err := conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(c.cfg.WriteTimeout),
		)
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	// Server responds to our keepalive
	conn.SetPongHandler(func(string) error {
		c.touch(time.Now())
		return nil
	})

	go c.readLoop(conn)
	go c.heartbeatLoop(conn)

	c.logger.Debug("websocket connected", "url", c.cfg.URL)

	return nil
}

// Close gracefully closes the connection.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)

	if conn == nil {
		// readLoop never started, so the stream is ours to close
		close(c.events)
		return nil
	}

	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.cfg.WriteTimeout),
	)
	return conn.Close()
}

// Events returns the event stream.
func (c *client) Events() <-chan Event {
	return c.events
}

// IsConnected returns the current connection state.
func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SessionID returns the session identifier.
func (c *client) SessionID() string {
	return c.cfg.SessionID
}

// URL returns the feed endpoint.
func (c *client) URL() string {
	return c.cfg.URL
}

func (c *client) touch(at time.Time) {
	c.mu.Lock()
	c.lastSeenAt = at
	c.mu.Unlock()
}

// emit delivers an event, blocking until the consumer takes it or the
// client is closed. Messages are never dropped.
func (c *client) emit(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// readLoop reads frames until the connection fails, then emits the
// terminal event and closes the stream.
func (c *client) readLoop(conn *websocket.Conn) {
	defer close(c.events)
	defer close(c.readDone)
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now() // Capture timestamp immediately

		if err != nil {
			// Ignore errors after Close() is called
			select {
			case <-c.done:
				return
			default:
			}
			c.emit(c.terminalEvent(err, receivedAt))
			return
		}

		c.touch(receivedAt)

		if !c.emit(Event{Kind: EventMessage, Data: data, ReceivedAt: receivedAt}) {
			return
		}
	}
}

func (c *client) terminalEvent(err error, at time.Time) Event {
	c.mu.RLock()
	stale := c.staleErr
	c.mu.RUnlock()

	if stale != nil {
		return Event{Kind: EventError, Err: stale, ReceivedAt: at}
	}

	// 1006 means the socket dropped without a close frame
	var ce *websocket.CloseError
	if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
		return Event{
			Kind:       EventClosed,
			Err:        fmt.Errorf("%w: %v", ErrPeerClosed, ce),
			CloseCode:  ce.Code,
			CloseText:  ce.Text,
			ReceivedAt: at,
		}
	}

	return Event{Kind: EventError, Err: err, ReceivedAt: at}
}

// heartbeatLoop sends keepalive pings and tears down stale connections.
func (c *client) heartbeatLoop(conn *websocket.Conn) {
	if c.cfg.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.readDone:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}

			c.mu.RLock()
			lastSeen := c.lastSeenAt
			c.mu.RUnlock()

			if c.cfg.PingTimeout > 0 && time.Since(lastSeen) > c.cfg.PingTimeout {
				c.logger.Warn("no ping received, connection stale",
					"last_seen", lastSeen,
					"timeout", c.cfg.PingTimeout,
				)
				c.mu.Lock()
				c.staleErr = ErrStaleConnection
				c.mu.Unlock()

				// Unblocks ReadMessage; readLoop reports the stale error
				conn.Close()
				return
			}
		}
	}
}
