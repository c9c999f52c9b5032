package supervisor

import (
	"errors"
	"fmt"
)

// State is the connection lifecycle state.
type State int

const (
	StateIdle       State = iota // No connection; about to dial
	StateConnecting              // Connection constructed, handshake in flight
	StateOpen                    // Receiving events
	StateFailed                  // Iteration ended; waiting out the backoff
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Signal drives a state transition.
type Signal int

const (
	SignalDial           Signal = iota // Start a new iteration
	SignalOpened                       // Handshake succeeded
	SignalFailed                       // Setup or transport failure, including clean close
	SignalBackoffElapsed               // Backoff wait finished
)

func (s Signal) String() string {
	switch s {
	case SignalDial:
		return "dial"
	case SignalOpened:
		return "opened"
	case SignalFailed:
		return "failed"
	case SignalBackoffElapsed:
		return "backoff_elapsed"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid state transition")

// Next is the transition function of the reconnect loop. There is no
// terminal state: Failed always leads back to Idle.
func Next(s State, sig Signal) (State, error) {
	switch {
	case s == StateIdle && sig == SignalDial:
		return StateConnecting, nil
	case s == StateConnecting && sig == SignalOpened:
		return StateOpen, nil
	case (s == StateConnecting || s == StateOpen) && sig == SignalFailed:
		return StateFailed, nil
	case s == StateFailed && sig == SignalBackoffElapsed:
		return StateIdle, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, sig, s)
}
