package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"cyclerent-backend/internal/domain"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking, items []domain.AccessoryLineItem) error {
	args := m.Called(ctx, b, items)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByPartner(ctx context.Context, partnerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, partnerID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) UpdatePaymentStatus(ctx context.Context, id int64, from, to domain.PaymentStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) MarkCancellationRequested(ctx context.Context, id int64, reason string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, reason, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ApproveCancellation(ctx context.Context, id int64, feePaise, refundPaise int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, feePaise, refundPaise, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) RejectCancellation(ctx context.Context, id int64, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) RecordReturn(ctx context.Context, b *domain.Booking) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) RecordDepositReturn(ctx context.Context, id int64, refundPaise int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, refundPaise, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) UpdatePricing(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetAccessoryItems(ctx context.Context, bookingID int64) ([]domain.AccessoryLineItem, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccessoryLineItem), args.Error(1)
}
func (m *MockBookingRepo) ReplaceAccessoryItems(ctx context.Context, bookingID int64, items []domain.AccessoryLineItem) error {
	args := m.Called(ctx, bookingID, items)
	return args.Error(0)
}
func (m *MockBookingRepo) ListActivePastReturn(ctx context.Context, asOf time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListConfirmedPickupBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockInventoryRepo
type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockInventoryRepo) GetCycle(ctx context.Context, id int64) (*domain.Cycle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cycle), args.Error(1)
}
func (m *MockInventoryRepo) UpdateCycle(ctx context.Context, c *domain.Cycle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockInventoryRepo) ListCycles(ctx context.Context, partnerID int64, page, pageSize int32) ([]domain.Cycle, int32, error) {
	args := m.Called(ctx, partnerID, page, pageSize)
	return args.Get(0).([]domain.Cycle), args.Get(1).(int32), args.Error(2)
}
func (m *MockInventoryRepo) CreateAccessory(ctx context.Context, a *domain.Accessory) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockInventoryRepo) GetAccessory(ctx context.Context, id int64) (*domain.Accessory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accessory), args.Error(1)
}
func (m *MockInventoryRepo) UpdateAccessory(ctx context.Context, a *domain.Accessory) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockInventoryRepo) ListAccessories(ctx context.Context, page, pageSize int32) ([]domain.Accessory, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Accessory), args.Get(1).(int32), args.Error(2)
}
func (m *MockInventoryRepo) ReserveCycle(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockInventoryRepo) ReleaseCycle(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockInventoryRepo) ReserveAccessory(ctx context.Context, id int64, qty int32) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}
func (m *MockInventoryRepo) ReleaseAccessory(ctx context.Context, id int64, qty int32) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

// MockCouponRepo
type MockCouponRepo struct {
	mock.Mock
}

func (m *MockCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}
func (m *MockCouponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCouponRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Coupon, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Coupon), args.Get(1).(int32), args.Error(2)
}
func (m *MockCouponRepo) ConsumeUse(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockCouponRepo) ReleaseUse(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockDamageRepo
type MockDamageRepo struct {
	mock.Mock
}

func (m *MockDamageRepo) Create(ctx context.Context, r *domain.DamageReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockDamageRepo) ListByBooking(ctx context.Context, bookingID int64) ([]domain.DamageReport, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DamageReport), args.Error(1)
}
func (m *MockDamageRepo) SumCostByBooking(ctx context.Context, bookingID int64) (int64, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockDamageRepo) SetDeductedFlag(ctx context.Context, bookingID int64, deducted bool) error {
	args := m.Called(ctx, bookingID, deducted)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, email, name, code string, pickupAt time.Time, totalPaise int64) error {
	args := m.Called(ctx, email, name, code, pickupAt, totalPaise)
	return args.Error(0)
}
func (m *MockEmailService) SendPickupReminder(ctx context.Context, email, name, code string, pickupAt time.Time) error {
	args := m.Called(ctx, email, name, code, pickupAt)
	return args.Error(0)
}
func (m *MockEmailService) SendCancellationApproved(ctx context.Context, email, name, code string, feePaise, refundPaise int64) error {
	args := m.Called(ctx, email, name, code, feePaise, refundPaise)
	return args.Error(0)
}
func (m *MockEmailService) SendCancellationRejected(ctx context.Context, email, name, code, reason string) error {
	args := m.Called(ctx, email, name, code, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnRecorded(ctx context.Context, email, name, code string, lateFeePaise, damagePaise int64) error {
	args := m.Called(ctx, email, name, code, lateFeePaise, damagePaise)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositReturned(ctx context.Context, email, name, code string, refundPaise int64) error {
	args := m.Called(ctx, email, name, code, refundPaise)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name, code string, hoursLate int64, accruedFeePaise int64) error {
	args := m.Called(ctx, email, name, code, hoursLate, accruedFeePaise)
	return args.Error(0)
}
