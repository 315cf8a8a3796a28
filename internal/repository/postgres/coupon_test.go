package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"cyclerent-backend/internal/domain"
)

func TestCouponRepository_GetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewCouponRepository(db)
	ctx := context.Background()

	t.Run("CaseInsensitive", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "code", "type", "value", "min_order_paise", "max_uses",
			"valid_until", "is_active", "used_count", "created_on",
		}).AddRow(7, "SAVE10", "PERCENTAGE", 10, nil, nil, nil, true, 2, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM coupons WHERE LOWER\\(code\\) = LOWER").
			WithArgs("save10").
			WillReturnRows(rows)

		c, err := repo.GetByCode(ctx, "save10")
		assert.NoError(t, err)
		assert.Equal(t, "SAVE10", c.Code)
		assert.Equal(t, int32(2), c.UsedCount)
		assert.Nil(t, c.MaxUses)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM coupons WHERE LOWER\\(code\\) = LOWER").
			WithArgs("NOPE").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByCode(ctx, "NOPE")
		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestCouponRepository_ConsumeUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewCouponRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE coupons SET used_count = used_count \\+ 1").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ConsumeUse(ctx, 7)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("CapReached", func(t *testing.T) {
		// used_count already equals max_uses; the guard matches nothing.
		mock.ExpectExec("UPDATE coupons SET used_count = used_count \\+ 1").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ConsumeUse(ctx, 7)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCouponRepository_ReleaseUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewCouponRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE coupons SET used_count = used_count - 1").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ReleaseUse(ctx, 7)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NeverGoesNegative", func(t *testing.T) {
		mock.ExpectExec("UPDATE coupons SET used_count = used_count - 1").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ReleaseUse(ctx, 7)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
