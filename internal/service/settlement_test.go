package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cyclerent-backend/internal/domain"
)

func newSettlementFixture(now time.Time) (*MockBookingRepo, *MockInventoryRepo, *MockDamageRepo, *MockUserRepo, *MockEmailService, *MockNotificationRepo, SettlementService) {
	bookingRepo := new(MockBookingRepo)
	inventoryRepo := new(MockInventoryRepo)
	damageRepo := new(MockDamageRepo)
	userRepo := new(MockUserRepo)
	emailSvc := new(MockEmailService)
	noteRepo := new(MockNotificationRepo)
	svc := NewSettlementService(bookingRepo, inventoryRepo, damageRepo, userRepo, emailSvc, noteRepo, testPolicy(), fixedClock(now))
	return bookingRepo, inventoryRepo, damageRepo, userRepo, emailSvc, noteRepo, svc
}

func activeBooking(returnAt time.Time) *domain.Booking {
	return &domain.Booking{
		ID:                   1,
		Code:                 "CYC-AAAA-BBBB",
		RenterID:             10,
		CycleID:              20,
		PartnerID:            30,
		Tier:                 domain.TierOneDay,
		PickupAt:             returnAt.AddDate(0, 0, -1),
		ReturnAt:             returnAt,
		TotalPaise:           282500,
		SecurityDepositPaise: 200000,
		Status:               domain.BookingStatusActive,
		PaymentStatus:        domain.PaymentStatusCompleted,
		CancellationStatus:   domain.CancellationStatusNone,
	}
}

func TestLateFeePaise(t *testing.T) {
	scheduled := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	perHour := int64(5000)

	tests := []struct {
		name   string
		actual time.Time
		want   int64
	}{
		{"early return", scheduled.Add(-time.Hour), 0},
		{"exactly on time", scheduled, 0},
		{"one minute late counts a full hour", scheduled.Add(time.Minute), 5000},
		{"exactly one hour late", scheduled.Add(time.Hour), 5000},
		{"two and a half hours late rounds up", scheduled.Add(150 * time.Minute), 15000},
		{"a full day late", scheduled.Add(24 * time.Hour), 120000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LateFeePaise(scheduled, tt.actual, perHour))
		})
	}
}

func TestSettlementService_RecordCycleReturn(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC)
	returnAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	bookingRepo, inventoryRepo, _, userRepo, emailSvc, noteRepo, svc := newSettlementFixture(now)

	booking := activeBooking(returnAt)
	bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	bookingRepo.On("RecordReturn", mock.Anything, booking).Return(true, nil)
	bookingRepo.On("GetAccessoryItems", mock.Anything, int64(1)).Return([]domain.AccessoryLineItem{
		{AccessoryID: 40, Quantity: 1},
	}, nil)
	inventoryRepo.On("ReleaseCycle", mock.Anything, int64(20)).Return(true, nil)
	inventoryRepo.On("ReleaseAccessory", mock.Anything, int64(40), int32(1)).Return(true, nil)
	userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, Email: "r@test.com", Name: "Renter"}, nil)
	emailSvc.On("SendReturnRecorded", mock.Anything, "r@test.com", "Renter", "CYC-AAAA-BBBB", int64(15000), int64(0)).Return(nil)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	result, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
		Condition: domain.CycleConditionGood,
		PhotoRefs: []string{"s3://returns/1/front.jpg"},
	})
	require.NoError(t, err)

	// 2.5 hours late bills three full hours.
	assert.Equal(t, int64(15000), result.LateFeePaise)
	require.NotNil(t, result.CycleReturnedAt)
	assert.Equal(t, now, *result.CycleReturnedAt)
	// The late fee is still owed, so completion waits for deposit settlement.
	assert.Equal(t, domain.BookingStatusActive, result.Status)
	inventoryRepo.AssertCalled(t, "ReleaseCycle", mock.Anything, int64(20))
	inventoryRepo.AssertCalled(t, "ReleaseAccessory", mock.Anything, int64(40), int32(1))
}

func TestSettlementService_RecordCycleReturnValidation(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	returnAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("photos required", func(t *testing.T) {
		bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(activeBooking(returnAt), nil)

		_, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
			Condition: domain.CycleConditionGood,
		})
		var evidence *domain.EvidenceRequiredError
		assert.ErrorAs(t, err, &evidence)
	})

	t.Run("damage cost needs a description", func(t *testing.T) {
		bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(activeBooking(returnAt), nil)

		_, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
			Condition:       domain.CycleConditionFair,
			PhotoRefs:       []string{"s3://returns/1/a.jpg"},
			DamageCostPaise: 5000,
		})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("damaged condition needs a cost", func(t *testing.T) {
		bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(activeBooking(returnAt), nil)

		_, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
			Condition: domain.CycleConditionDamaged,
			PhotoRefs: []string{"s3://returns/1/a.jpg"},
		})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("already returned", func(t *testing.T) {
		bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)
		booking := activeBooking(returnAt)
		returned := now.Add(-time.Hour)
		booking.CycleReturnedAt = &returned
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

		_, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
			Condition: domain.CycleConditionGood,
			PhotoRefs: []string{"s3://returns/1/a.jpg"},
		})
		var conflict *domain.StateConflict
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, domain.ConflictAlreadyReturned, conflict.Code)
	})

	t.Run("not active", func(t *testing.T) {
		bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)
		booking := activeBooking(returnAt)
		booking.Status = domain.BookingStatusConfirmed
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

		_, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
			Condition: domain.CycleConditionGood,
			PhotoRefs: []string{"s3://returns/1/a.jpg"},
		})
		var conflict *domain.StateConflict
		assert.ErrorAs(t, err, &conflict)
	})
}

func TestSettlementService_RecordCycleReturnFilesDamageReport(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	returnAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	bookingRepo, inventoryRepo, damageRepo, userRepo, emailSvc, noteRepo, svc := newSettlementFixture(now)

	booking := activeBooking(returnAt)
	bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	bookingRepo.On("RecordReturn", mock.Anything, booking).Return(true, nil)
	bookingRepo.On("GetAccessoryItems", mock.Anything, int64(1)).Return([]domain.AccessoryLineItem{}, nil)
	inventoryRepo.On("ReleaseCycle", mock.Anything, int64(20)).Return(true, nil)
	damageRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.DamageReport) bool {
		return r.BookingID == 1 && r.CycleID == 20 && r.CostPaise == 30000 && r.Description == "bent front wheel"
	})).Return(nil)
	userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, Email: "r@test.com", Name: "Renter"}, nil)
	emailSvc.On("SendReturnRecorded", mock.Anything, "r@test.com", "Renter", "CYC-AAAA-BBBB", int64(0), int64(30000)).Return(nil)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	result, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
		Condition:         domain.CycleConditionDamaged,
		PhotoRefs:         []string{"s3://returns/1/wheel.jpg"},
		DamageCostPaise:   30000,
		DamageDescription: "bent front wheel",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.LateFeePaise)
	// The damage cost still has to come out of the deposit.
	assert.Equal(t, domain.BookingStatusActive, result.Status)
	damageRepo.AssertExpectations(t)
}

func TestSettlementService_CleanReturnCompletesBooking(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	returnAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	bookingRepo, inventoryRepo, _, userRepo, emailSvc, noteRepo, svc := newSettlementFixture(now)

	booking := activeBooking(returnAt)
	bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	bookingRepo.On("RecordReturn", mock.Anything, booking).Return(true, nil)
	bookingRepo.On("GetAccessoryItems", mock.Anything, int64(1)).Return([]domain.AccessoryLineItem{}, nil)
	inventoryRepo.On("ReleaseCycle", mock.Anything, int64(20)).Return(true, nil)
	userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, Email: "r@test.com", Name: "Renter"}, nil)
	emailSvc.On("SendReturnRecorded", mock.Anything, "r@test.com", "Renter", "CYC-AAAA-BBBB", int64(0), int64(0)).Return(nil)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	result, err := svc.RecordCycleReturn(context.Background(), 5, 1, ReturnRequest{
		Condition: domain.CycleConditionExcellent,
		PhotoRefs: []string{"s3://returns/1/front.jpg"},
	})
	require.NoError(t, err)

	// Nothing owed against the deposit, so the booking completes right away.
	assert.Equal(t, int64(0), result.LateFeePaise)
	assert.Equal(t, domain.BookingStatusCompleted, result.Status)
}

func TestSettlementService_ReturnDepositBeforeReturn(t *testing.T) {
	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)

	booking := activeBooking(now.Add(-24 * time.Hour))
	bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	_, err := svc.ReturnDeposit(context.Background(), 5, 1)
	var conflict *domain.StateConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictReturnNotRecorded, conflict.Code)
}

func TestSettlementService_ReturnDeposit(t *testing.T) {
	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	returnedAt := now.Add(-2 * time.Hour)

	t.Run("clean return refunds the full deposit", func(t *testing.T) {
		bookingRepo, _, damageRepo, userRepo, emailSvc, noteRepo, svc := newSettlementFixture(now)

		booking := activeBooking(returnedAt)
		booking.CycleReturnedAt = &returnedAt
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
		damageRepo.On("SumCostByBooking", mock.Anything, int64(1)).Return(int64(0), nil)
		bookingRepo.On("RecordDepositReturn", mock.Anything, int64(1), int64(200000), now).Return(true, nil)
		userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, Email: "r@test.com", Name: "Renter"}, nil)
		emailSvc.On("SendDepositReturned", mock.Anything, "r@test.com", "Renter", "CYC-AAAA-BBBB", int64(200000)).Return(nil)
		noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

		result, err := svc.ReturnDeposit(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, result.Status)
		require.NotNil(t, result.DepositRefundPaise)
		assert.Equal(t, int64(200000), *result.DepositRefundPaise)
		damageRepo.AssertNotCalled(t, "SetDeductedFlag", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deductions can exceed the deposit", func(t *testing.T) {
		bookingRepo, _, damageRepo, userRepo, emailSvc, noteRepo, svc := newSettlementFixture(now)

		booking := activeBooking(returnedAt)
		booking.CycleReturnedAt = &returnedAt
		booking.LateFeePaise = 50000
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
		damageRepo.On("SumCostByBooking", mock.Anything, int64(1)).Return(int64(180000), nil)
		// 200000 - 50000 - 180000 leaves a 30000 balance owed.
		bookingRepo.On("RecordDepositReturn", mock.Anything, int64(1), int64(-30000), now).Return(true, nil)
		damageRepo.On("SetDeductedFlag", mock.Anything, int64(1), false).Return(nil)
		userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, Email: "r@test.com", Name: "Renter"}, nil)
		emailSvc.On("SendDepositReturned", mock.Anything, "r@test.com", "Renter", "CYC-AAAA-BBBB", int64(-30000)).Return(nil)
		noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

		result, err := svc.ReturnDeposit(context.Background(), 5, 1)
		require.NoError(t, err)
		require.NotNil(t, result.DepositRefundPaise)
		assert.Equal(t, int64(-30000), *result.DepositRefundPaise)
		damageRepo.AssertCalled(t, "SetDeductedFlag", mock.Anything, int64(1), false)
	})

	t.Run("already settled", func(t *testing.T) {
		bookingRepo, _, _, _, _, _, svc := newSettlementFixture(now)

		booking := activeBooking(returnedAt)
		booking.CycleReturnedAt = &returnedAt
		booking.DepositReturnedAt = &returnedAt
		bookingRepo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

		_, err := svc.ReturnDeposit(context.Background(), 5, 1)
		var conflict *domain.StateConflict
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, domain.ConflictDepositAlreadyPaid, conflict.Code)
	})
}
