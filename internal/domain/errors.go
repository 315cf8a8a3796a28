package domain

import "fmt"

// Conflict codes carried by StateConflict so callers can render an
// actionable message instead of a bare boolean.
const (
	ConflictInvalidTransition   = "INVALID_TRANSITION"
	ConflictOutOfStock          = "OUT_OF_STOCK"
	ConflictUsageLimitReached   = "USAGE_LIMIT_REACHED"
	ConflictReturnNotRecorded   = "RETURN_NOT_RECORDED"
	ConflictAlreadyReturned     = "ALREADY_RETURNED"
	ConflictDepositAlreadyPaid  = "DEPOSIT_ALREADY_RETURNED"
	ConflictPaymentNotCompleted = "PAYMENT_NOT_COMPLETED"
)

type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Ref)
}

func NewNotFound(resource, ref string) *NotFoundError {
	return &NotFoundError{Resource: resource, Ref: ref}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PolicyViolation is a business-rule rejection. Detail carries the rule's
// thresholds so the presentation layer can explain the refusal.
type PolicyViolation struct {
	Rule    string
	Message string
	Detail  map[string]string
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("policy %s: %s", e.Rule, e.Message)
}

// StateConflict rejects an operation that is illegal in the entity's current
// state. Current and Attempted let the caller show what actually happened.
type StateConflict struct {
	Code      string
	Entity    string
	Current   string
	Attempted string
	Message   string
}

func (e *StateConflict) Error() string {
	if e.Current != "" {
		return fmt.Sprintf("%s: %s (current %s, attempted %s)", e.Code, e.Message, e.Current, e.Attempted)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidTransition(entity, current, attempted string) *StateConflict {
	return &StateConflict{
		Code:      ConflictInvalidTransition,
		Entity:    entity,
		Current:   current,
		Attempted: attempted,
		Message:   "transition not permitted",
	}
}

func NewOutOfStock(kind string, itemID int64) *StateConflict {
	return &StateConflict{
		Code:    ConflictOutOfStock,
		Entity:  kind,
		Message: fmt.Sprintf("no available unit for %s %d", kind, itemID),
	}
}

func NewReturnNotRecorded(bookingID int64) *StateConflict {
	return &StateConflict{
		Code:    ConflictReturnNotRecorded,
		Entity:  "booking",
		Message: fmt.Sprintf("cycle return not recorded for booking %d", bookingID),
	}
}

type CouponFailure string

const (
	CouponInvalid            CouponFailure = "INVALID_COUPON"
	CouponExpired            CouponFailure = "EXPIRED_COUPON"
	CouponMinimumOrderNotMet CouponFailure = "MINIMUM_ORDER_NOT_MET"
	CouponUsageLimitReached  CouponFailure = "USAGE_LIMIT_REACHED"
)

type CouponError struct {
	Reason        CouponFailure
	CouponCode    string
	MinOrderPaise int64
	MaxUses       int32
}

func (e *CouponError) Error() string {
	switch e.Reason {
	case CouponMinimumOrderNotMet:
		return fmt.Sprintf("coupon %s requires a minimum order of %d paise", e.CouponCode, e.MinOrderPaise)
	case CouponUsageLimitReached:
		return fmt.Sprintf("coupon %s has reached its usage limit of %d", e.CouponCode, e.MaxUses)
	case CouponExpired:
		return fmt.Sprintf("coupon %s has expired", e.CouponCode)
	default:
		return fmt.Sprintf("coupon %s is not valid", e.CouponCode)
	}
}

// EvidenceRequiredError rejects a cycle return recorded without at least one
// photo reference.
type EvidenceRequiredError struct {
	BookingID int64
}

func (e *EvidenceRequiredError) Error() string {
	return fmt.Sprintf("at least one return photo is required for booking %d", e.BookingID)
}
