package domain

import "time"

type CouponType string

const (
	CouponTypePercentage CouponType = "PERCENTAGE"
	CouponTypeFixed      CouponType = "FIXED"
)

// Coupon codes are unique case-insensitively; lookups lower-case both sides.
// UsedCount is advanced only by the repository's conditional increment so the
// cap holds under concurrent applications.
type Coupon struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	Type          CouponType `json:"type"`
	// Value is a percent for PERCENTAGE coupons and paise for FIXED ones.
	Value         int64      `json:"value"`
	MinOrderPaise *int64     `json:"min_order_paise,omitempty"`
	MaxUses       *int32     `json:"max_uses,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	IsActive      bool       `json:"is_active"`
	UsedCount     int32      `json:"used_count"`
	CreatedOn     time.Time  `json:"created_on"`
}

// DiscountResult is what a successful validation yields.
type DiscountResult struct {
	CouponID      int64 `json:"coupon_id"`
	DiscountPaise int64 `json:"discount_paise"`
}
