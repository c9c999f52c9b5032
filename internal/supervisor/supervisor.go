package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/feedwatch/internal/connection"
)

// Defaults
const (
	DefaultBackoff        = 5 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

var ErrAlreadyRunning = errors.New("supervisor already running")

// Dialer constructs the connection for one iteration. It must not touch the
// network; the handshake happens in Client.Connect.
type Dialer func(sessionID string) (connection.Client, error)

// Renderer receives every inbound payload in arrival order.
type Renderer interface {
	Render(sessionID string, payload []byte, receivedAt time.Time) error
}

// Cue is the audio cue of one connection.
type Cue interface {
	Start(ctx context.Context)
}

// CueFactory creates a fresh Cue for each opened connection.
type CueFactory func() Cue

// Config configures the Supervisor.
type Config struct {
	Endpoint       string        // Feed URL, for logs and status
	Backoff        time.Duration // Fixed wait between iterations
	ConnectTimeout time.Duration // Upper bound on construct + handshake
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backoff:        DefaultBackoff,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// Stats is a point-in-time view of the supervisor.
type Stats struct {
	State             State
	Iterations        int64
	Opens             int64
	SetupFailures     int64
	TransportFailures int64
	MessagesRendered  int64
	RenderErrors      int64
	LastError         error
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithCue sets the per-connection audio cue factory.
func WithCue(f CueFactory) Option {
	return func(s *Supervisor) {
		s.newCue = f
	}
}

// WithClock replaces time.After for the backoff wait.
func WithClock(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Supervisor) {
		s.after = after
	}
}

// WithStateHook registers a callback run on the loop goroutine after every
// state change.
func WithStateHook(hook func(Stats)) Option {
	return func(s *Supervisor) {
		s.onChange = hook
	}
}

// Supervisor keeps exactly one connection to the feed alive, forever.
//
// Each iteration dials a new connection, renders its messages as they
// arrive, and on any failure (including a clean close by the peer) closes
// it, waits the fixed backoff and starts over. Only cancelling the context
// passed to Run ends the loop.
type Supervisor struct {
	cfg      Config
	dial     Dialer
	renderer Renderer
	newCue   CueFactory
	after    func(time.Duration) <-chan time.Time
	onChange func(Stats)
	logger   *slog.Logger

	running atomic.Bool

	mu      sync.RWMutex
	state   State
	lastErr error

	iterations        atomic.Int64
	opens             atomic.Int64
	setupFailures     atomic.Int64
	transportFailures atomic.Int64
	rendered          atomic.Int64
	renderErrors      atomic.Int64
}

// New creates a Supervisor in the Idle state.
func New(cfg Config, dial Dialer, renderer Renderer, opts ...Option) *Supervisor {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	s := &Supervisor{
		cfg:      cfg,
		dial:     dial,
		renderer: renderer,
		after:    time.After,
		logger:   slog.Default(),
		state:    StateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// WebSocketDialer returns a Dialer building connection.Client values from
// cfg, one per session.
func WebSocketDialer(cfg connection.ClientConfig, logger *slog.Logger) Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(sessionID string) (connection.Client, error) {
		cc := cfg
		cc.SessionID = sessionID
		return connection.NewClient(cc, logger.With("session", sessionID))
	}
}

// Run executes the reconnect loop until ctx is cancelled and returns
// ctx.Err(). Connection failures never end the loop. Run may be called
// again after it returns; each run starts from Idle.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	// A previous Run may have been cancelled mid-iteration
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()

	s.logger.Info("supervisor started",
		"endpoint", s.cfg.Endpoint,
		"backoff", s.cfg.Backoff,
	)

	for {
		err := s.iterate(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.logger.Info("supervisor stopped", "iterations", s.iterations.Load())
			return ctxErr
		}

		s.fail(err)

		if err := s.backoff(ctx); err != nil {
			s.logger.Info("supervisor stopped", "iterations", s.iterations.Load())
			return err
		}
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stats returns current statistics.
func (s *Supervisor) Stats() Stats {
	s.mu.RLock()
	state, lastErr := s.state, s.lastErr
	s.mu.RUnlock()

	return Stats{
		State:             state,
		Iterations:        s.iterations.Load(),
		Opens:             s.opens.Load(),
		SetupFailures:     s.setupFailures.Load(),
		TransportFailures: s.transportFailures.Load(),
		MessagesRendered:  s.rendered.Load(),
		RenderErrors:      s.renderErrors.Load(),
		LastError:         lastErr,
	}
}

// iterate runs one connection from construction to failure. The client is
// always closed before returning.
func (s *Supervisor) iterate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n := s.iterations.Add(1)
	sessionID := uuid.NewString()
	logger := s.logger.With("iteration", n, "session", sessionID)

	s.transition(SignalDial, nil)
	logger.Info("connecting", "endpoint", s.cfg.Endpoint)

	client, err := s.setup(ctx, sessionID)
	if client != nil {
		defer s.release(client, logger)
	}
	if err != nil {
		return setupFailure(n, err)
	}

	s.opens.Add(1)
	s.transition(SignalOpened, nil)
	logger.Info("connection open")

	cueCtx, cancelCue := context.WithCancel(ctx)
	defer cancelCue()
	s.startCue(cueCtx, logger)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-client.Events():
			if !ok {
				return transportFailure(n, connection.ErrNotConnected)
			}

			switch ev.Kind {
			case connection.EventMessage:
				s.render(sessionID, ev, logger)
				continue
			case connection.EventClosed:
				logger.Info("connection closed by peer",
					"code", ev.CloseCode,
					"reason", ev.CloseText,
				)
			}

			cause := ev.Err
			if cause == nil {
				cause = connection.ErrPeerClosed
			}
			return transportFailure(n, cause)
		}
	}
}

// setup constructs and connects one client. Errors and panics raised while
// doing so come back as errors. The client is returned whenever it was
// constructed so the caller can close it.
func (s *Supervisor) setup(ctx context.Context, sessionID string) (client connection.Client, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during setup: %v", r)
		}
	}()

	client, err = s.dial(sessionID)
	if err != nil {
		if client != nil {
			client.Close()
		}
		return nil, fmt.Errorf("construct connection: %w", err)
	}
	if client == nil {
		return nil, errors.New("construct connection: dialer returned no client")
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	if err := client.Connect(connectCtx); err != nil {
		return client, fmt.Errorf("connect: %w", err)
	}
	return client, nil
}

func (s *Supervisor) release(client connection.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Debug("close connection", "error", err)
	}
}

func (s *Supervisor) render(sessionID string, ev connection.Event, logger *slog.Logger) {
	if s.renderer == nil {
		s.renderErrors.Add(1)
		logger.Warn("message dropped, no renderer")
		return
	}
	if err := s.renderer.Render(sessionID, ev.Data, ev.ReceivedAt); err != nil {
		s.renderErrors.Add(1)
		logger.Warn("render failed", "error", err)
		return
	}
	s.rendered.Add(1)
}

func (s *Supervisor) startCue(ctx context.Context, logger *slog.Logger) {
	if s.newCue == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("audio cue panic", "error", r)
		}
	}()
	if cue := s.newCue(); cue != nil {
		cue.Start(ctx)
	}
}

func (s *Supervisor) fail(err error) {
	var ie *IterationError
	if errors.As(err, &ie) && ie.Kind == KindSetup {
		s.setupFailures.Add(1)
	} else {
		s.transportFailures.Add(1)
	}

	s.logger.Warn("connection failed",
		"error", err,
		"retry_in", s.cfg.Backoff,
	)
	s.transition(SignalFailed, err)
}

func (s *Supervisor) backoff(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.after(s.cfg.Backoff):
	}
	s.transition(SignalBackoffElapsed, nil)
	return nil
}

func (s *Supervisor) transition(sig Signal, cause error) {
	s.mu.Lock()
	prev := s.state
	next, err := Next(prev, sig)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("state machine", "error", err)
		return
	}
	s.state = next
	if cause != nil {
		s.lastErr = cause
	}
	s.mu.Unlock()

	s.logger.Debug("state change", "from", prev, "to", next)

	if s.onChange != nil {
		s.onChange(s.Stats())
	}
}
