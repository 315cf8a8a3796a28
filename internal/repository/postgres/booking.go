package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, code, renter_id, cycle_id, partner_id, coupon_id, tier, pickup_at, return_at,
	cycle_rental_paise, accessories_paise, gst_paise, discount_paise, security_deposit_paise, total_paise,
	late_fee_paise, cancellation_fee_paise, cancellation_refund_paise, deposit_refund_paise,
	status, payment_status, cancellation_status, cancellation_reason, rejection_reason,
	return_condition, return_photo_refs,
	cycle_returned_at, cycle_inspected_at, deposit_returned_at, cancellation_requested_at, cancelled_at,
	created_on, updated_on`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		returnCondition sql.NullString
		photoRefs       pq.StringArray
	)
	err := row.Scan(
		&b.ID, &b.Code, &b.RenterID, &b.CycleID, &b.PartnerID, &b.CouponID, &b.Tier, &b.PickupAt, &b.ReturnAt,
		&b.CycleRentalPaise, &b.AccessoriesPaise, &b.GSTPaise, &b.DiscountPaise, &b.SecurityDepositPaise, &b.TotalPaise,
		&b.LateFeePaise, &b.CancellationFeePaise, &b.CancellationRefundPaise, &b.DepositRefundPaise,
		&b.Status, &b.PaymentStatus, &b.CancellationStatus, &b.CancellationReason, &b.RejectionReason,
		&returnCondition, &photoRefs,
		&b.CycleReturnedAt, &b.CycleInspectedAt, &b.DepositReturnedAt, &b.CancellationRequestedAt, &b.CancelledAt,
		&b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	b.ReturnCondition = domain.CycleCondition(returnCondition.String)
	b.ReturnPhotoRefs = photoRefs
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking, items []domain.AccessoryLineItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO bookings (code, renter_id, cycle_id, partner_id, coupon_id, tier, pickup_at, return_at,
		cycle_rental_paise, accessories_paise, gst_paise, discount_paise, security_deposit_paise, total_paise,
		status, payment_status, cancellation_status, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`
	now := time.Now()
	err = tx.QueryRowContext(ctx, query,
		b.Code, b.RenterID, b.CycleID, b.PartnerID, b.CouponID, b.Tier, b.PickupAt, b.ReturnAt,
		b.CycleRentalPaise, b.AccessoriesPaise, b.GSTPaise, b.DiscountPaise, b.SecurityDepositPaise, b.TotalPaise,
		b.Status, b.PaymentStatus, b.CancellationStatus, now, now,
	).Scan(&b.ID)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].BookingID = b.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO accessory_line_items (booking_id, accessory_id, quantity, days, price_per_day_paise, deposit_paise, line_total_paise)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			items[i].BookingID, items[i].AccessoryID, items[i].Quantity, items[i].Days,
			items[i].PricePerDayPaise, items[i].DepositPaise, items[i].LineTotalPaise,
		).Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("booking", fmt.Sprintf("%d", id))
	}
	return b, err
}

func (r *bookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("booking", code)
	}
	return b, err
}

func (r *bookingRepository) list(ctx context.Context, field string, ownerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + field + ` = $1`

	args := []interface{}{ownerID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *bookingRepository) ListByPartner(ctx context.Context, partnerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "partner_id", partnerID, status, page, pageSize)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_on = $2 WHERE id = $3 AND status = $4`,
		to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, from, to domain.PaymentStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = $1, updated_on = $2 WHERE id = $3 AND payment_status = $4`,
		to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) MarkCancellationRequested(ctx context.Context, id int64, reason string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET cancellation_status = $1, cancellation_reason = $2, cancellation_requested_at = $3, updated_on = $3
		 WHERE id = $4 AND cancellation_status = $5`,
		domain.CancellationStatusRequested, reason, at, id, domain.CancellationStatusNone)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) ApproveCancellation(ctx context.Context, id int64, feePaise, refundPaise int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET cancellation_status = $1, status = $2, cancellation_fee_paise = $3,
		     cancellation_refund_paise = $4, cancelled_at = $5, updated_on = $5
		 WHERE id = $6 AND cancellation_status = $7 AND status IN ($8, $9)`,
		domain.CancellationStatusApproved, domain.BookingStatusCancelled, feePaise,
		refundPaise, at, id, domain.CancellationStatusRequested,
		domain.BookingStatusConfirmed, domain.BookingStatusActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) RejectCancellation(ctx context.Context, id int64, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET cancellation_status = $1, rejection_reason = $2, updated_on = $3
		 WHERE id = $4 AND cancellation_status = $5`,
		domain.CancellationStatusRejected, reason, time.Now(), id, domain.CancellationStatusRequested)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) RecordReturn(ctx context.Context, b *domain.Booking) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET cycle_returned_at = $1, cycle_inspected_at = $2, return_condition = $3,
		     return_photo_refs = $4, late_fee_paise = $5, status = $6, updated_on = $7
		 WHERE id = $8 AND cycle_returned_at IS NULL`,
		b.CycleReturnedAt, b.CycleInspectedAt, b.ReturnCondition,
		pq.Array(b.ReturnPhotoRefs), b.LateFeePaise, b.Status, time.Now(), b.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) RecordDepositReturn(ctx context.Context, id int64, refundPaise int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET deposit_refund_paise = $1, deposit_returned_at = $2, status = $3, updated_on = $2
		 WHERE id = $4 AND cycle_returned_at IS NOT NULL AND deposit_returned_at IS NULL`,
		refundPaise, at, domain.BookingStatusCompleted, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bookingRepository) UpdatePricing(ctx context.Context, b *domain.Booking) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET accessories_paise = $1, gst_paise = $2, discount_paise = $3,
		     security_deposit_paise = $4, total_paise = $5, return_at = $6, updated_on = $7
		 WHERE id = $8`,
		b.AccessoriesPaise, b.GSTPaise, b.DiscountPaise,
		b.SecurityDepositPaise, b.TotalPaise, b.ReturnAt, time.Now(), b.ID)
	return err
}

func (r *bookingRepository) GetAccessoryItems(ctx context.Context, bookingID int64) ([]domain.AccessoryLineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, accessory_id, quantity, days, price_per_day_paise, deposit_paise, line_total_paise
		 FROM accessory_line_items WHERE booking_id = $1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AccessoryLineItem
	for rows.Next() {
		var it domain.AccessoryLineItem
		if err := rows.Scan(&it.ID, &it.BookingID, &it.AccessoryID, &it.Quantity, &it.Days,
			&it.PricePerDayPaise, &it.DepositPaise, &it.LineTotalPaise); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *bookingRepository) ReplaceAccessoryItems(ctx context.Context, bookingID int64, items []domain.AccessoryLineItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accessory_line_items WHERE booking_id = $1`, bookingID); err != nil {
		return err
	}
	for i := range items {
		items[i].BookingID = bookingID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO accessory_line_items (booking_id, accessory_id, quantity, days, price_per_day_paise, deposit_paise, line_total_paise)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			bookingID, items[i].AccessoryID, items[i].Quantity, items[i].Days,
			items[i].PricePerDayPaise, items[i].DepositPaise, items[i].LineTotalPaise,
		).Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *bookingRepository) ListActivePastReturn(ctx context.Context, asOf time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = $1 AND return_at < $2 AND cycle_returned_at IS NULL
		ORDER BY return_at`
	return r.queryBookings(ctx, query, domain.BookingStatusActive, asOf)
}

func (r *bookingRepository) ListConfirmedPickupBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = $1 AND pickup_at >= $2 AND pickup_at < $3
		ORDER BY pickup_at`
	return r.queryBookings(ctx, query, domain.BookingStatusConfirmed, from, to)
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
