package experiment

import (
	"errors"
	"fmt"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// ErrExperimentNotFound is returned when an operation names a uuid the
// supervisor has no record of.
var ErrExperimentNotFound = errors.New("experiment not found")

// TransitionError reports an illegal state machine edge.
type TransitionError struct {
	From, To domain.ExperimentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// ErrInvalidTransition is the sentinel TransitionError wraps, for
// errors.Is checks that don't care about the specific states involved.
var ErrInvalidTransition = errors.New("invalid experiment state transition")

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
