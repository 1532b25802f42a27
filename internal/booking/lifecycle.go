package booking

import "errors"

// ErrInvalidTransition indicates an illegal appointment status change.
// No state changes when it is returned.
var ErrInvalidTransition = errors.New("invalid appointment status transition")

// transitions is the appointment state machine: Pending may be confirmed
// or cancelled, Confirmed may be completed or cancelled, and Cancelled and
// Completed are terminal.
var transitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to AppointmentStatus) bool {
	return transitions[from][to]
}

// ValidStatus reports whether s names a known appointment status.
func ValidStatus(s AppointmentStatus) bool {
	_, ok := transitions[s]
	return ok
}
