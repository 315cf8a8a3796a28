package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"cyclerent-backend/internal/domain"
)

func TestInventoryRepository_ReserveCycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewInventoryRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE cycles SET available_quantity = available_quantity - 1").
			WithArgs(int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ReserveCycle(ctx, 20)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NoStock", func(t *testing.T) {
		// The guard matched no row: availability was already zero.
		mock.ExpectExec("UPDATE cycles SET available_quantity = available_quantity - 1").
			WithArgs(int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ReserveCycle(ctx, 20)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInventoryRepository_ReleaseCycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewInventoryRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("available_quantity < total_quantity").
			WithArgs(int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ReleaseCycle(ctx, 20)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("AlreadyAtCapacity", func(t *testing.T) {
		// A double release must not push availability past total.
		mock.ExpectExec("available_quantity < total_quantity").
			WithArgs(int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ReleaseCycle(ctx, 20)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInventoryRepository_ReserveAccessory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewInventoryRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE accessories SET available_quantity = available_quantity - ").
			WithArgs(int64(40), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ReserveAccessory(ctx, 40, 2)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("InsufficientQuantity", func(t *testing.T) {
		mock.ExpectExec("UPDATE accessories SET available_quantity = available_quantity - ").
			WithArgs(int64(40), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ReserveAccessory(ctx, 40, 5)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInventoryRepository_GetCycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewInventoryRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "partner_id", "name", "model",
			"price_per_day_paise", "price_per_week_paise", "price_per_month_paise",
			"deposit_day_paise", "deposit_week_paise", "deposit_month_paise",
			"total_quantity", "available_quantity", "is_active", "details", "created_on",
		}).AddRow(
			20, 30, "City Cruiser", "CC-2024",
			49900, 299900, 999900,
			180000, 180000, 180000,
			5, 3, true, []byte(`{"vendor":"Hero"}`), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM cycles WHERE id =").
			WithArgs(int64(20)).
			WillReturnRows(rows)

		c, err := repo.GetCycle(ctx, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(49900), c.PricePerDayPaise)
		assert.Equal(t, int32(3), c.AvailableQuantity)
		assert.NotNil(t, c.Details)
		assert.Equal(t, "Hero", c.Details.Vendor)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cycles WHERE id =").
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetCycle(ctx, 999)
		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}
