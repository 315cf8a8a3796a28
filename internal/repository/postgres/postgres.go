package postgres

import (
	"database/sql"

	"cyclerent-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.PartnerRepository
	repository.BookingRepository
	repository.InventoryRepository
	repository.CouponRepository
	repository.DamageReportRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		PartnerRepository:      NewPartnerRepository(db),
		BookingRepository:      NewBookingRepository(db),
		InventoryRepository:    NewInventoryRepository(db),
		CouponRepository:       NewCouponRepository(db),
		DamageReportRepository: NewDamageReportRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
