package domain

type BookingEvent string

const (
	EventActivate BookingEvent = "ACTIVATE"
	EventCancel   BookingEvent = "CANCEL"
	EventComplete BookingEvent = "COMPLETE"
)

// bookingTransitions is the single authoritative transition table. Status
// writes anywhere in the codebase must go through NextStatus; ad-hoc field
// writes are not allowed.
var bookingTransitions = map[BookingEvent]map[BookingStatus]BookingStatus{
	EventActivate: {
		BookingStatusConfirmed: BookingStatusActive,
	},
	EventCancel: {
		BookingStatusConfirmed: BookingStatusCancelled,
		BookingStatusActive:    BookingStatusCancelled,
	},
	EventComplete: {
		BookingStatusActive: BookingStatusCompleted,
	},
}

// NextStatus resolves the booking status reached by applying event to
// current. An event with no edge from the current status is an
// InvalidTransition state conflict; the caller must not mutate anything.
func NextStatus(current BookingStatus, event BookingEvent) (BookingStatus, error) {
	edges, ok := bookingTransitions[event]
	if !ok {
		return "", NewInvalidTransition("booking", string(current), string(event))
	}
	next, ok := edges[current]
	if !ok {
		return "", NewInvalidTransition("booking", string(current), string(event))
	}
	return next, nil
}

// NextPaymentStatus guards the orthogonal payment axis: PENDING is the only
// state that accepts a result.
func NextPaymentStatus(current, result PaymentStatus) (PaymentStatus, error) {
	if result != PaymentStatusCompleted && result != PaymentStatusFailed {
		return "", NewInvalidTransition("payment", string(current), string(result))
	}
	if current != PaymentStatusPending {
		return "", NewInvalidTransition("payment", string(current), string(result))
	}
	return result, nil
}

// NextCancellationStatus guards the cancellation sub-machine:
// NONE -> REQUESTED -> APPROVED | REJECTED, with both outcomes terminal.
func NextCancellationStatus(current, next CancellationStatus) (CancellationStatus, error) {
	switch {
	case current == CancellationStatusNone && next == CancellationStatusRequested:
		return next, nil
	case current == CancellationStatusRequested &&
		(next == CancellationStatusApproved || next == CancellationStatusRejected):
		return next, nil
	}
	return "", NewInvalidTransition("cancellation", string(current), string(next))
}
