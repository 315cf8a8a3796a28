package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"
)

type inventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	details, err := marshalDetails(c.Details)
	if err != nil {
		return err
	}
	query := `INSERT INTO cycles (partner_id, name, model,
		price_per_day_paise, price_per_week_paise, price_per_month_paise,
		deposit_day_paise, deposit_week_paise, deposit_month_paise,
		total_quantity, available_quantity, is_active, details, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.PartnerID, c.Name, c.Model,
		c.PricePerDayPaise, c.PricePerWeekPaise, c.PricePerMonthPaise,
		c.DepositDayPaise, c.DepositWeekPaise, c.DepositMonthPaise,
		c.TotalQuantity, c.AvailableQuantity, c.IsActive, details, time.Now(),
	).Scan(&c.ID)
}

func (r *inventoryRepository) GetCycle(ctx context.Context, id int64) (*domain.Cycle, error) {
	c := &domain.Cycle{}
	var details []byte
	query := `SELECT id, partner_id, name, model,
		price_per_day_paise, price_per_week_paise, price_per_month_paise,
		deposit_day_paise, deposit_week_paise, deposit_month_paise,
		total_quantity, available_quantity, is_active, details, created_on
		FROM cycles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.PartnerID, &c.Name, &c.Model,
		&c.PricePerDayPaise, &c.PricePerWeekPaise, &c.PricePerMonthPaise,
		&c.DepositDayPaise, &c.DepositWeekPaise, &c.DepositMonthPaise,
		&c.TotalQuantity, &c.AvailableQuantity, &c.IsActive, &details, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("cycle", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		c.Details = &domain.CycleDetails{}
		if err := json.Unmarshal(details, c.Details); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *inventoryRepository) UpdateCycle(ctx context.Context, c *domain.Cycle) error {
	details, err := marshalDetails(c.Details)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE cycles SET name = $1, model = $2,
		 price_per_day_paise = $3, price_per_week_paise = $4, price_per_month_paise = $5,
		 deposit_day_paise = $6, deposit_week_paise = $7, deposit_month_paise = $8,
		 total_quantity = $9, is_active = $10, details = $11
		 WHERE id = $12`,
		c.Name, c.Model,
		c.PricePerDayPaise, c.PricePerWeekPaise, c.PricePerMonthPaise,
		c.DepositDayPaise, c.DepositWeekPaise, c.DepositMonthPaise,
		c.TotalQuantity, c.IsActive, details, c.ID)
	return err
}

func (r *inventoryRepository) ListCycles(ctx context.Context, partnerID int64, page, pageSize int32) ([]domain.Cycle, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, partner_id, name, model,
		price_per_day_paise, price_per_week_paise, price_per_month_paise,
		deposit_day_paise, deposit_week_paise, deposit_month_paise,
		total_quantity, available_quantity, is_active, details, created_on
		FROM cycles`
	args := []interface{}{}
	if partnerID > 0 {
		query += ` WHERE partner_id = $1`
		args = append(args, partnerID)
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cycles []domain.Cycle
	for rows.Next() {
		var c domain.Cycle
		var details []byte
		if err := rows.Scan(&c.ID, &c.PartnerID, &c.Name, &c.Model,
			&c.PricePerDayPaise, &c.PricePerWeekPaise, &c.PricePerMonthPaise,
			&c.DepositDayPaise, &c.DepositWeekPaise, &c.DepositMonthPaise,
			&c.TotalQuantity, &c.AvailableQuantity, &c.IsActive, &details, &c.CreatedOn); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			c.Details = &domain.CycleDetails{}
			if err := json.Unmarshal(details, c.Details); err != nil {
				return nil, 0, err
			}
		}
		cycles = append(cycles, c)
	}
	return cycles, count, rows.Err()
}

func (r *inventoryRepository) CreateAccessory(ctx context.Context, a *domain.Accessory) error {
	query := `INSERT INTO accessories (name, price_per_day_paise, deposit_paise,
		total_quantity, available_quantity, is_active, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		a.Name, a.PricePerDayPaise, a.DepositPaise,
		a.TotalQuantity, a.AvailableQuantity, a.IsActive, time.Now(),
	).Scan(&a.ID)
}

func (r *inventoryRepository) GetAccessory(ctx context.Context, id int64) (*domain.Accessory, error) {
	a := &domain.Accessory{}
	query := `SELECT id, name, price_per_day_paise, deposit_paise, total_quantity, available_quantity, is_active, created_on
		FROM accessories WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.PricePerDayPaise, &a.DepositPaise,
		&a.TotalQuantity, &a.AvailableQuantity, &a.IsActive, &a.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("accessory", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *inventoryRepository) UpdateAccessory(ctx context.Context, a *domain.Accessory) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accessories SET name = $1, price_per_day_paise = $2, deposit_paise = $3,
		 total_quantity = $4, is_active = $5 WHERE id = $6`,
		a.Name, a.PricePerDayPaise, a.DepositPaise, a.TotalQuantity, a.IsActive, a.ID)
	return err
}

func (r *inventoryRepository) ListAccessories(ctx context.Context, page, pageSize int32) ([]domain.Accessory, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM accessories`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price_per_day_paise, deposit_paise, total_quantity, available_quantity, is_active, created_on
		 FROM accessories ORDER BY id LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accessories []domain.Accessory
	for rows.Next() {
		var a domain.Accessory
		if err := rows.Scan(&a.ID, &a.Name, &a.PricePerDayPaise, &a.DepositPaise,
			&a.TotalQuantity, &a.AvailableQuantity, &a.IsActive, &a.CreatedOn); err != nil {
			return nil, 0, err
		}
		accessories = append(accessories, a)
	}
	return accessories, count, rows.Err()
}

// ReserveCycle is the atomic conditional decrement: two concurrent
// reservations of the last unit cannot both match the guard.
func (r *inventoryRepository) ReserveCycle(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cycles SET available_quantity = available_quantity - 1
		 WHERE id = $1 AND available_quantity > 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ReleaseCycle never pushes availability past total; a no-op here indicates
// a double release upstream.
func (r *inventoryRepository) ReleaseCycle(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cycles SET available_quantity = available_quantity + 1
		 WHERE id = $1 AND available_quantity < total_quantity`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *inventoryRepository) ReserveAccessory(ctx context.Context, id int64, qty int32) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accessories SET available_quantity = available_quantity - $2
		 WHERE id = $1 AND available_quantity >= $2`, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *inventoryRepository) ReleaseAccessory(ctx context.Context, id int64, qty int32) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accessories SET available_quantity = available_quantity + $2
		 WHERE id = $1 AND available_quantity + $2 <= total_quantity`, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func marshalDetails(d *domain.CycleDetails) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}
