package postgres

import (
	"context"
	"database/sql"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"
)

type damageReportRepository struct {
	db *sql.DB
}

func NewDamageReportRepository(db *sql.DB) repository.DamageReportRepository {
	return &damageReportRepository{db: db}
}

func (r *damageReportRepository) Create(ctx context.Context, rep *domain.DamageReport) error {
	query := `INSERT INTO damage_reports (booking_id, cycle_id, description, cost_paise, deducted_from_deposit, created_on)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rep.BookingID, rep.CycleID, rep.Description, rep.CostPaise, rep.DeductedFromDeposit, time.Now(),
	).Scan(&rep.ID)
}

func (r *damageReportRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.DamageReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, cycle_id, description, cost_paise, deducted_from_deposit, created_on
		 FROM damage_reports WHERE booking_id = $1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.DamageReport
	for rows.Next() {
		var rep domain.DamageReport
		if err := rows.Scan(&rep.ID, &rep.BookingID, &rep.CycleID, &rep.Description,
			&rep.CostPaise, &rep.DeductedFromDeposit, &rep.CreatedOn); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *damageReportRepository) SumCostByBooking(ctx context.Context, bookingID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_paise), 0) FROM damage_reports WHERE booking_id = $1`, bookingID).Scan(&sum)
	return sum, err
}

func (r *damageReportRepository) SetDeductedFlag(ctx context.Context, bookingID int64, deducted bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE damage_reports SET deducted_from_deposit = $1 WHERE booking_id = $2`, deducted, bookingID)
	return err
}
