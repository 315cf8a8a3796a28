package service

import (
	"context"
	"errors"
	"strings"

	"cyclerent-backend/internal/clock"
	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"
	"cyclerent-backend/internal/utils"
)

type couponService struct {
	couponRepo repository.CouponRepository
	clk        clock.Clock
}

func NewCouponService(couponRepo repository.CouponRepository, clk clock.Clock) CouponService {
	return &couponService{couponRepo: couponRepo, clk: clk}
}

// validate runs the check sequence in a fixed order: existence and active
// flag, then expiry, then minimum order, then usage cap. The first failure
// wins so a renter always sees the most fundamental problem.
func (s *couponService) validate(ctx context.Context, code string, subtotalPaise int64) (*domain.Coupon, int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, 0, &domain.CouponError{Reason: domain.CouponInvalid, CouponCode: code}
	}

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, 0, &domain.CouponError{Reason: domain.CouponInvalid, CouponCode: code}
		}
		return nil, 0, err
	}
	if !coupon.IsActive {
		return nil, 0, &domain.CouponError{Reason: domain.CouponInvalid, CouponCode: code}
	}

	if coupon.ValidUntil != nil && s.clk.Now().After(*coupon.ValidUntil) {
		return nil, 0, &domain.CouponError{Reason: domain.CouponExpired, CouponCode: code}
	}

	if coupon.MinOrderPaise != nil && subtotalPaise < *coupon.MinOrderPaise {
		return nil, 0, &domain.CouponError{
			Reason:        domain.CouponMinimumOrderNotMet,
			CouponCode:    code,
			MinOrderPaise: *coupon.MinOrderPaise,
		}
	}

	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return nil, 0, &domain.CouponError{
			Reason:     domain.CouponUsageLimitReached,
			CouponCode: code,
			MaxUses:    *coupon.MaxUses,
		}
	}

	return coupon, discountFor(coupon, subtotalPaise), nil
}

// discountFor computes the discount in paise, capped at the subtotal so a
// large fixed coupon can zero an order but never invert it.
func discountFor(c *domain.Coupon, subtotalPaise int64) int64 {
	var discount int64
	switch c.Type {
	case domain.CouponTypePercentage:
		discount = utils.PercentOfPaise(subtotalPaise, c.Value)
	case domain.CouponTypeFixed:
		discount = c.Value
	}
	if discount > subtotalPaise {
		discount = subtotalPaise
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func (s *couponService) Preview(ctx context.Context, code string, subtotalPaise int64) (*domain.DiscountResult, error) {
	coupon, discount, err := s.validate(ctx, code, subtotalPaise)
	if err != nil {
		return nil, err
	}
	return &domain.DiscountResult{CouponID: coupon.ID, DiscountPaise: discount}, nil
}

func (s *couponService) Apply(ctx context.Context, code string, subtotalPaise int64) (*domain.DiscountResult, error) {
	coupon, discount, err := s.validate(ctx, code, subtotalPaise)
	if err != nil {
		return nil, err
	}

	// The usage cap is enforced by the conditional increment, not the read
	// above; a concurrent application surfaces here as ok == false.
	ok, err := s.couponRepo.ConsumeUse(ctx, coupon.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		maxUses := int32(0)
		if coupon.MaxUses != nil {
			maxUses = *coupon.MaxUses
		}
		return nil, &domain.CouponError{
			Reason:     domain.CouponUsageLimitReached,
			CouponCode: code,
			MaxUses:    maxUses,
		}
	}

	return &domain.DiscountResult{CouponID: coupon.ID, DiscountPaise: discount}, nil
}

func (s *couponService) Create(ctx context.Context, c *domain.Coupon) error {
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" {
		return domain.NewValidation("code", "must not be empty")
	}
	switch c.Type {
	case domain.CouponTypePercentage:
		if c.Value <= 0 || c.Value > 100 {
			return domain.NewValidation("value", "percentage must be between 1 and 100")
		}
	case domain.CouponTypeFixed:
		if c.Value <= 0 {
			return domain.NewValidation("value", "fixed amount must be positive")
		}
	default:
		return domain.NewValidation("type", "unknown coupon type")
	}
	if c.MinOrderPaise != nil && *c.MinOrderPaise < 0 {
		return domain.NewValidation("min_order_paise", "must not be negative")
	}
	if c.MaxUses != nil && *c.MaxUses <= 0 {
		return domain.NewValidation("max_uses", "must be positive")
	}
	c.IsActive = true
	return s.couponRepo.Create(ctx, c)
}

func (s *couponService) List(ctx context.Context, page, pageSize int32) ([]domain.Coupon, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.couponRepo.List(ctx, page, pageSize)
}

func (s *couponService) Deactivate(ctx context.Context, code string) error {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	coupon.IsActive = false
	return s.couponRepo.Update(ctx, coupon)
}
