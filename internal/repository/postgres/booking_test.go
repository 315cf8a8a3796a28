package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"cyclerent-backend/internal/domain"
)

var bookingColumnNames = []string{
	"id", "code", "renter_id", "cycle_id", "partner_id", "coupon_id", "tier", "pickup_at", "return_at",
	"cycle_rental_paise", "accessories_paise", "gst_paise", "discount_paise", "security_deposit_paise", "total_paise",
	"late_fee_paise", "cancellation_fee_paise", "cancellation_refund_paise", "deposit_refund_paise",
	"status", "payment_status", "cancellation_status", "cancellation_reason", "rejection_reason",
	"return_condition", "return_photo_refs",
	"cycle_returned_at", "cycle_inspected_at", "deposit_returned_at", "cancellation_requested_at", "cancelled_at",
	"created_on", "updated_on",
}

func bookingRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumnNames).AddRow(
		1, "CYC-AAAA-BBBB", 10, 20, 30, nil, "ONE_DAY", now.AddDate(0, 0, 2), now.AddDate(0, 0, 3),
		49900, 20000, 12600, 0, 200000, 282500,
		0, 0, 0, nil,
		"CONFIRMED", "PENDING", "NONE", "", "",
		nil, "{}",
		nil, nil, nil, nil, nil,
		now, now)
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id =").
			WithArgs(int64(1)).
			WillReturnRows(bookingRow(now))

		b, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "CYC-AAAA-BBBB", b.Code)
		assert.Equal(t, domain.TierOneDay, b.Tier)
		assert.Equal(t, int64(282500), b.TotalPaise)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.Nil(t, b.CycleReturnedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id =").
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows(bookingColumnNames))

		_, err := repo.GetByID(ctx, 999)
		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET status =").
			WithArgs(domain.BookingStatusActive, sqlmock.AnyArg(), int64(1), domain.BookingStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(ctx, 1, domain.BookingStatusConfirmed, domain.BookingStatusActive)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("StaleFromState", func(t *testing.T) {
		// Someone else moved the booking first; the guard protects the write.
		mock.ExpectExec("UPDATE bookings SET status =").
			WithArgs(domain.BookingStatusActive, sqlmock.AnyArg(), int64(1), domain.BookingStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(ctx, 1, domain.BookingStatusConfirmed, domain.BookingStatusActive)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_ApproveCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.CancellationStatusApproved, domain.BookingStatusCancelled, int64(10000),
				int64(272500), now, int64(1), domain.CancellationStatusRequested,
				domain.BookingStatusConfirmed, domain.BookingStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ApproveCancellation(ctx, 1, 10000, 272500, now)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("AlreadySettled", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.CancellationStatusApproved, domain.BookingStatusCancelled, int64(10000),
				int64(272500), now, int64(1), domain.CancellationStatusRequested,
				domain.BookingStatusConfirmed, domain.BookingStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ApproveCancellation(ctx, 1, 10000, 272500, now)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_RecordReturn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC)

	b := &domain.Booking{
		ID:               1,
		Status:           domain.BookingStatusActive,
		ReturnCondition:  domain.CycleConditionGood,
		ReturnPhotoRefs:  []string{"s3://returns/1/front.jpg"},
		LateFeePaise:     15000,
		CycleReturnedAt:  &now,
		CycleInspectedAt: &now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("cycle_returned_at IS NULL").
			WithArgs(&now, &now, domain.CycleConditionGood, sqlmock.AnyArg(), int64(15000),
				domain.BookingStatusActive, sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.RecordReturn(ctx, b)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("AlreadyReturned", func(t *testing.T) {
		mock.ExpectExec("cycle_returned_at IS NULL").
			WithArgs(&now, &now, domain.CycleConditionGood, sqlmock.AnyArg(), int64(15000),
				domain.BookingStatusActive, sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.RecordReturn(ctx, b)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_RecordDepositReturn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("cycle_returned_at IS NOT NULL AND deposit_returned_at IS NULL").
			WithArgs(int64(185000), now, domain.BookingStatusCompleted, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.RecordDepositReturn(ctx, 1, 185000, now)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ReturnNotRecordedOrAlreadyPaid", func(t *testing.T) {
		mock.ExpectExec("cycle_returned_at IS NOT NULL AND deposit_returned_at IS NULL").
			WithArgs(int64(185000), now, domain.BookingStatusCompleted, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.RecordDepositReturn(ctx, 1, 185000, now)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
