package supervisor

import (
	"errors"
	"fmt"
)

// Failure classes. Both are recovered by the loop and retried after the
// backoff.
var (
	ErrSetupFailure     = errors.New("setup failure")
	ErrTransportFailure = errors.New("transport failure")
)

// FailureKind classifies how an iteration ended.
type FailureKind int

const (
	KindSetup     FailureKind = iota // Constructing or dialing the connection failed
	KindTransport                    // An open connection errored or closed
)

func (k FailureKind) String() string {
	if k == KindSetup {
		return "setup"
	}
	return "transport"
}

// IterationError is the failure that ended one loop iteration.
type IterationError struct {
	Kind      FailureKind
	Iteration int64
	Err       error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("iteration %d: %s failure: %v", e.Iteration, e.Kind, e.Err)
}

// Unwrap exposes both the failure class and the cause to errors.Is/As.
func (e *IterationError) Unwrap() []error {
	class := ErrTransportFailure
	if e.Kind == KindSetup {
		class = ErrSetupFailure
	}
	return []error{class, e.Err}
}

func setupFailure(iteration int64, err error) *IterationError {
	return &IterationError{Kind: KindSetup, Iteration: iteration, Err: err}
}

func transportFailure(iteration int64, err error) *IterationError {
	return &IterationError{Kind: KindTransport, Iteration: iteration, Err: err}
}
