package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"
)

type couponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id, code, type, value, min_order_paise, max_uses, valid_until, is_active, used_count, created_on`

func (r *couponRepository) Create(ctx context.Context, c *domain.Coupon) error {
	query := `INSERT INTO coupons (code, type, value, min_order_paise, max_uses, valid_until, is_active, used_count, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.Code, c.Type, c.Value, c.MinOrderPaise, c.MaxUses, c.ValidUntil, c.IsActive, time.Now(),
	).Scan(&c.ID)
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE LOWER(code) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrderPaise, &c.MaxUses,
		&c.ValidUntil, &c.IsActive, &c.UsedCount, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("coupon", code)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *couponRepository) Update(ctx context.Context, c *domain.Coupon) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET type = $1, value = $2, min_order_paise = $3, max_uses = $4,
		 valid_until = $5, is_active = $6 WHERE id = $7`,
		c.Type, c.Value, c.MinOrderPaise, c.MaxUses, c.ValidUntil, c.IsActive, c.ID)
	return err
}

func (r *couponRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Coupon, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM coupons`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY id LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrderPaise, &c.MaxUses,
			&c.ValidUntil, &c.IsActive, &c.UsedCount, &c.CreatedOn); err != nil {
			return nil, 0, err
		}
		coupons = append(coupons, c)
	}
	return coupons, count, rows.Err()
}

// ConsumeUse is the conditional increment that keeps used_count at or below
// the cap under concurrent applications.
func (r *couponRepository) ConsumeUse(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET used_count = used_count + 1
		 WHERE id = $1 AND is_active AND (max_uses IS NULL OR used_count < max_uses)`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *couponRepository) ReleaseUse(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET used_count = used_count - 1
		 WHERE id = $1 AND used_count > 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
