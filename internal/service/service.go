package service

import (
	"context"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/utils"
)

// AccessoryChoice is a renter's accessory selection by catalog id; prices
// are snapshotted by the service, never taken from the caller.
type AccessoryChoice struct {
	AccessoryID int64 `json:"accessory_id"`
	Quantity    int32 `json:"quantity"`
}

type CreateBookingRequest struct {
	RenterID    int64
	CycleID     int64
	PartnerID   int64
	Tier        domain.DurationTier
	PickupAt    time.Time
	Accessories []AccessoryChoice
	CouponCode  string
}

type QuoteRequest struct {
	CycleID     int64
	Tier        domain.DurationTier
	Accessories []AccessoryChoice
	CouponCode  string
}

type ReturnRequest struct {
	Condition         domain.CycleCondition
	DamageCostPaise   int64
	DamageDescription string
	PhotoRefs         []string
}

type CancellationQuote struct {
	Eligible      bool    `json:"eligible"`
	HoursToPickup float64 `json:"hours_to_pickup"`
	FeePaise      int64   `json:"fee_paise"`
	RefundPaise   int64   `json:"refund_paise"`
}

type BookingService interface {
	Quote(ctx context.Context, req QuoteRequest) (*utils.CostBreakdown, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, []domain.AccessoryLineItem, error)
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByPartner(ctx context.Context, partnerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	// ActivateBooking marks the pickup as having occurred. Operator action,
	// never automatic, and gated on completed payment.
	ActivateBooking(ctx context.Context, operatorID, bookingID int64) (*domain.Booking, error)
	// UpdateAccessories edits the accessory selection before the cutoff and
	// returns the price delta in paise (negative when items were removed).
	UpdateAccessories(ctx context.Context, renterID, bookingID int64, choices []AccessoryChoice) (*domain.Booking, int64, error)
	// ConfirmPayment applies the external payment-capture signal.
	ConfirmPayment(ctx context.Context, bookingCode string, result domain.PaymentStatus) (*domain.Booking, error)
}

type CouponService interface {
	// Preview validates without consuming a use.
	Preview(ctx context.Context, code string, subtotalPaise int64) (*domain.DiscountResult, error)
	// Apply validates and consumes a use atomically; only booking
	// finalization calls this.
	Apply(ctx context.Context, code string, subtotalPaise int64) (*domain.DiscountResult, error)
	Create(ctx context.Context, c *domain.Coupon) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Coupon, int32, error)
	Deactivate(ctx context.Context, code string) error
}

type CancellationService interface {
	RequestCancellation(ctx context.Context, renterID, bookingID int64, reason string) (*domain.Booking, error)
	PreviewFee(ctx context.Context, bookingID int64) (*CancellationQuote, error)
	ApproveCancellation(ctx context.Context, operatorID, bookingID int64) (*domain.Booking, error)
	RejectCancellation(ctx context.Context, operatorID, bookingID int64, reason string) (*domain.Booking, error)
}

type SettlementService interface {
	RecordCycleReturn(ctx context.Context, operatorID, bookingID int64, req ReturnRequest) (*domain.Booking, error)
	ReturnDeposit(ctx context.Context, operatorID, bookingID int64) (*domain.Booking, error)
}

type InventoryService interface {
	CreateCycle(ctx context.Context, c *domain.Cycle) error
	GetCycle(ctx context.Context, id int64) (*domain.Cycle, error)
	UpdateCycle(ctx context.Context, c *domain.Cycle) error
	ListCycles(ctx context.Context, partnerID int64, page, pageSize int32) ([]domain.Cycle, int32, error)
	CreateAccessory(ctx context.Context, a *domain.Accessory) error
	ListAccessories(ctx context.Context, page, pageSize int32) ([]domain.Accessory, int32, error)
	// StartCycleMaintenance reserves a unit without a booking;
	// CompleteCycleMaintenance releases it back.
	StartCycleMaintenance(ctx context.Context, cycleID int64) error
	CompleteCycleMaintenance(ctx context.Context, cycleID int64) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

// EmailService failures are logged and swallowed by callers; a dead mail
// relay must never fail a booking transition.
type EmailService interface {
	SendBookingConfirmation(ctx context.Context, email, name, code string, pickupAt time.Time, totalPaise int64) error
	SendPickupReminder(ctx context.Context, email, name, code string, pickupAt time.Time) error
	SendCancellationApproved(ctx context.Context, email, name, code string, feePaise, refundPaise int64) error
	SendCancellationRejected(ctx context.Context, email, name, code, reason string) error
	SendReturnRecorded(ctx context.Context, email, name, code string, lateFeePaise, damagePaise int64) error
	SendDepositReturned(ctx context.Context, email, name, code string, refundPaise int64) error
	SendOverdueReminder(ctx context.Context, email, name, code string, hoursLate int64, accruedFeePaise int64) error
}
