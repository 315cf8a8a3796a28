package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type CancellationStatus string

const (
	CancellationStatusNone      CancellationStatus = "NONE"
	CancellationStatusRequested CancellationStatus = "REQUESTED"
	CancellationStatusApproved  CancellationStatus = "APPROVED"
	CancellationStatusRejected  CancellationStatus = "REJECTED"
)

type DurationTier string

const (
	TierOneDay   DurationTier = "ONE_DAY"
	TierOneWeek  DurationTier = "ONE_WEEK"
	TierOneMonth DurationTier = "ONE_MONTH"
)

// Days returns the rental length of the tier in days, 0 for an unknown tier.
func (t DurationTier) Days() int32 {
	switch t {
	case TierOneDay:
		return 1
	case TierOneWeek:
		return 7
	case TierOneMonth:
		return 30
	default:
		return 0
	}
}

func (t DurationTier) Valid() bool {
	return t.Days() > 0
}

type CycleCondition string

const (
	CycleConditionExcellent CycleCondition = "EXCELLENT"
	CycleConditionGood      CycleCondition = "GOOD"
	CycleConditionFair      CycleCondition = "FAIR"
	CycleConditionDamaged   CycleCondition = "DAMAGED"
)

func (c CycleCondition) Valid() bool {
	switch c {
	case CycleConditionExcellent, CycleConditionGood, CycleConditionFair, CycleConditionDamaged:
		return true
	}
	return false
}

type Booking struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	RenterID  int64  `json:"renter_id"`
	CycleID   int64  `json:"cycle_id"`
	PartnerID int64  `json:"partner_id"`
	CouponID  *int64 `json:"coupon_id,omitempty"`

	Tier     DurationTier `json:"tier"`
	PickupAt time.Time    `json:"pickup_at"`
	ReturnAt time.Time    `json:"return_at"`

	// Money fields, all in paise. Snapshotted at creation time so the
	// breakdown stays reproducible after catalog price changes.
	CycleRentalPaise        int64  `json:"cycle_rental_paise"`
	AccessoriesPaise        int64  `json:"accessories_paise"`
	GSTPaise                int64  `json:"gst_paise"`
	DiscountPaise           int64  `json:"discount_paise"`
	SecurityDepositPaise    int64  `json:"security_deposit_paise"`
	TotalPaise              int64  `json:"total_paise"`
	LateFeePaise            int64  `json:"late_fee_paise"`
	CancellationFeePaise    int64  `json:"cancellation_fee_paise"`
	CancellationRefundPaise int64  `json:"cancellation_refund_paise"`
	DepositRefundPaise      *int64 `json:"deposit_refund_paise,omitempty"`

	Status             BookingStatus      `json:"status"`
	PaymentStatus      PaymentStatus      `json:"payment_status"`
	CancellationStatus CancellationStatus `json:"cancellation_status"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`

	ReturnCondition CycleCondition `json:"return_condition,omitempty"`
	ReturnPhotoRefs []string       `json:"return_photo_refs,omitempty"`

	// Lifecycle markers, each set exactly once.
	CycleReturnedAt         *time.Time `json:"cycle_returned_at,omitempty"`
	CycleInspectedAt        *time.Time `json:"cycle_inspected_at,omitempty"`
	DepositReturnedAt       *time.Time `json:"deposit_returned_at,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// AccessoryLineItem is owned by exactly one booking. Price and deposit are
// per-unit snapshots captured when the item was added.
type AccessoryLineItem struct {
	ID               int64 `json:"id"`
	BookingID        int64 `json:"booking_id"`
	AccessoryID      int64 `json:"accessory_id"`
	Quantity         int32 `json:"quantity"`
	Days             int32 `json:"days"`
	PricePerDayPaise int64 `json:"price_per_day_paise"`
	DepositPaise     int64 `json:"deposit_paise"`
	LineTotalPaise   int64 `json:"line_total_paise"`
}
