package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"
)

type partnerRepository struct {
	db *sql.DB
}

func NewPartnerRepository(db *sql.DB) repository.PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, p *domain.Partner) error {
	query := `INSERT INTO partners (name, address, city, phone, email, is_active, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		p.Name, p.Address, p.City, p.Phone, p.Email, p.IsActive, time.Now()).Scan(&p.ID)
}

func (r *partnerRepository) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	p := &domain.Partner{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, city, phone, email, is_active, created_on FROM partners WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.Phone, &p.Email, &p.IsActive, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("partner", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *partnerRepository) Update(ctx context.Context, p *domain.Partner) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE partners SET name = $1, address = $2, city = $3, phone = $4, email = $5, is_active = $6 WHERE id = $7`,
		p.Name, p.Address, p.City, p.Phone, p.Email, p.IsActive, p.ID)
	return err
}

func (r *partnerRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Partner, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM partners`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, city, phone, email, is_active, created_on
		 FROM partners ORDER BY id LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var partners []domain.Partner
	for rows.Next() {
		var p domain.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.Phone, &p.Email, &p.IsActive, &p.CreatedOn); err != nil {
			return nil, 0, err
		}
		partners = append(partners, p)
	}
	return partners, count, rows.Err()
}
