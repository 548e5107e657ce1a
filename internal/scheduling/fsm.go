package scheduling

import "vishubh-healthcare-server/internal/models"

var statusTransitions = map[models.AppointmentStatus]map[models.AppointmentStatus]struct{}{
	models.StatusPending: {
		models.StatusConfirmed: {},
		models.StatusCancelled: {},
	},
	models.StatusConfirmed: {
		models.StatusCompleted: {},
		models.StatusCancelled: {},
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

var paymentTransitions = map[models.PaymentStatus]map[models.PaymentStatus]struct{}{
	models.PaymentPending: {
		models.PaymentPaid:   {},
		models.PaymentFailed: {},
	},
	models.PaymentFailed: {
		models.PaymentPending: {},
	},
	models.PaymentPaid: {
		models.PaymentRefunded: {},
	},
	models.PaymentRefunded: {},
}

// CanTransition reports whether an appointment may move from one status to
// another. Completed and cancelled are terminal.
func CanTransition(from, to models.AppointmentStatus) bool {
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// CanTransitionPayment reports whether a payment status change is permitted.
// Failed payments may return to pending for a retry; paid may be refunded.
func CanTransitionPayment(from, to models.PaymentStatus) bool {
	allowed, ok := paymentTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}
