package repository

import (
	"context"
	"time"

	"cyclerent-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type PartnerRepository interface {
	Create(ctx context.Context, p *domain.Partner) error
	GetByID(ctx context.Context, id int64) (*domain.Partner, error)
	Update(ctx context.Context, p *domain.Partner) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Partner, int32, error)
}

type BookingRepository interface {
	// Create persists the booking and its accessory line items together.
	Create(ctx context.Context, b *domain.Booking, items []domain.AccessoryLineItem) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCode(ctx context.Context, code string) (*domain.Booking, error)
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByPartner(ctx context.Context, partnerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)

	// UpdateStatus flips booking_status only when the row still holds from;
	// false means the guard did not match and nothing changed.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error)
	// UpdatePaymentStatus is the conditional write behind the external
	// payment-capture signal.
	UpdatePaymentStatus(ctx context.Context, id int64, from, to domain.PaymentStatus) (bool, error)

	// MarkCancellationRequested succeeds only from cancellation_status NONE.
	MarkCancellationRequested(ctx context.Context, id int64, reason string, at time.Time) (bool, error)
	// ApproveCancellation atomically approves a REQUESTED cancellation:
	// cancellation_status, booking_status, fee, refund and cancelled_at in
	// one guarded update so a retried approval cannot apply twice.
	ApproveCancellation(ctx context.Context, id int64, feePaise, refundPaise int64, at time.Time) (bool, error)
	RejectCancellation(ctx context.Context, id int64, reason string) (bool, error)

	// RecordReturn writes the cycle-return fields guarded by
	// cycle_returned_at IS NULL.
	RecordReturn(ctx context.Context, b *domain.Booking) (bool, error)
	// RecordDepositReturn writes the settlement guarded by
	// deposit_returned_at IS NULL and completes the booking.
	RecordDepositReturn(ctx context.Context, id int64, refundPaise int64, at time.Time) (bool, error)

	// UpdatePricing rewrites the money fields and return date after an
	// accessory edit.
	UpdatePricing(ctx context.Context, b *domain.Booking) error

	GetAccessoryItems(ctx context.Context, bookingID int64) ([]domain.AccessoryLineItem, error)
	ReplaceAccessoryItems(ctx context.Context, bookingID int64, items []domain.AccessoryLineItem) error

	// Job queries.
	ListActivePastReturn(ctx context.Context, asOf time.Time) ([]domain.Booking, error)
	ListConfirmedPickupBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

// InventoryRepository is the inventory ledger. Reserve and release are
// single conditional updates; the bool reports whether a row changed.
type InventoryRepository interface {
	CreateCycle(ctx context.Context, c *domain.Cycle) error
	GetCycle(ctx context.Context, id int64) (*domain.Cycle, error)
	UpdateCycle(ctx context.Context, c *domain.Cycle) error
	ListCycles(ctx context.Context, partnerID int64, page, pageSize int32) ([]domain.Cycle, int32, error)

	CreateAccessory(ctx context.Context, a *domain.Accessory) error
	GetAccessory(ctx context.Context, id int64) (*domain.Accessory, error)
	UpdateAccessory(ctx context.Context, a *domain.Accessory) error
	ListAccessories(ctx context.Context, page, pageSize int32) ([]domain.Accessory, int32, error)

	// ReserveCycle decrements availability, guarded by available > 0.
	ReserveCycle(ctx context.Context, id int64) (bool, error)
	// ReleaseCycle increments availability, guarded by available < total.
	ReleaseCycle(ctx context.Context, id int64) (bool, error)
	ReserveAccessory(ctx context.Context, id int64, qty int32) (bool, error)
	ReleaseAccessory(ctx context.Context, id int64, qty int32) (bool, error)
}

type CouponRepository interface {
	Create(ctx context.Context, c *domain.Coupon) error
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Update(ctx context.Context, c *domain.Coupon) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Coupon, int32, error)

	// ConsumeUse increments used_count guarded by used_count < max_uses (or
	// unlimited); false means the cap was hit by a concurrent application.
	ConsumeUse(ctx context.Context, id int64) (bool, error)
	// ReleaseUse undoes one consumption when booking creation fails after
	// the coupon was already consumed.
	ReleaseUse(ctx context.Context, id int64) (bool, error)
}

type DamageReportRepository interface {
	Create(ctx context.Context, r *domain.DamageReport) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.DamageReport, error)
	SumCostByBooking(ctx context.Context, bookingID int64) (int64, error)
	SetDeductedFlag(ctx context.Context, bookingID int64, deducted bool) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}
