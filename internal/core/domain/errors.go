package domain

import "errors"

// ErrInvalidStateTransition is the sentinel matched by errors.Is for any
// *InvalidTransitionError raised by the work order state machine.
var ErrInvalidStateTransition = errors.New("work order: invalid state transition")
