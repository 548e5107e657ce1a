package scheduling

import "errors"

// Sentinel errors surfaced by the scheduling engine. Callers match with
// errors.Is; handlers translate them to HTTP statuses.
var (
	// ErrSlotTaken reports that an active appointment already occupies the
	// (doctor, date, time) slot. It is returned both by the optimistic
	// pre-check and by the unique-index violation at commit time.
	ErrSlotTaken = errors.New("scheduling: slot already booked")

	// ErrInvalidTransition reports an attempted status change the state
	// machine does not permit.
	ErrInvalidTransition = errors.New("scheduling: invalid status transition")

	// ErrInvalidSlot reports a malformed appointment date or time.
	ErrInvalidSlot = errors.New("scheduling: malformed appointment date or time")

	// ErrNotFound reports that no appointment exists with the given id.
	ErrNotFound = errors.New("scheduling: appointment not found")
)
