package game

import (
	"errors"
	"fmt"
)

// User-facing messages for the error phase.
const (
	MsgStartFailed     = "A critical system error occurred. Could not establish a secure connection."
	MsgConnectionLost  = "The connection to the target server was lost. We need to re-route."
	MsgNoDifficulty    = "Difficulty not set. System error."
	MsgChallengeBroken = "Mission data corrupted. System error."
)

// ErrWrongPhase is returned when an operation is not valid in the current phase.
var ErrWrongPhase = errors.New("operation not allowed in current phase")

// InvariantViolation is an internal inconsistency. The game moves to the
// error phase when one is raised.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}

func wrongPhase(op string, p Phase) error {
	return fmt.Errorf("%s in %s: %w", op, p, ErrWrongPhase)
}
