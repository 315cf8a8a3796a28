package utils

import (
	"cyclerent-backend/internal/domain"
)

// RateTable is the price snapshot of a cycle used to quote a booking. The
// deposit is tier-specific; week and month deposits fall back to the day
// deposit when unset.
type RateTable struct {
	PricePerDayPaise   int64
	PricePerWeekPaise  int64
	PricePerMonthPaise int64
	DepositDayPaise    int64
	DepositWeekPaise   int64
	DepositMonthPaise  int64
}

// AccessorySelection carries the per-day price and per-unit deposit snapshot
// of one accessory choice.
type AccessorySelection struct {
	AccessoryID      int64
	Quantity         int32
	Days             int32
	PricePerDayPaise int64
	DepositPaise     int64
}

// CostBreakdown is the full quote for a booking. All amounts are paise.
// Invariant: TotalPaise == CycleRentalPaise + AccessoriesPaise + GSTPaise -
// DiscountPaise + SecurityDepositPaise.
type CostBreakdown struct {
	CycleRentalPaise     int64 `json:"cycle_rental_paise"`
	AccessoriesPaise     int64 `json:"accessories_paise"`
	SubtotalPaise        int64 `json:"subtotal_paise"`
	DiscountPaise        int64 `json:"discount_paise"`
	GSTPaise             int64 `json:"gst_paise"`
	RentalTotalPaise     int64 `json:"rental_total_paise"`
	SecurityDepositPaise int64 `json:"security_deposit_paise"`
	TotalPaise           int64 `json:"total_paise"`
}

// DefaultGSTPercent is the single fixed tax rate the engine operates with.
const DefaultGSTPercent = 18

const monthFallbackDays = 30

// PercentOfPaise returns pct percent of amount, rounded half-up to the
// nearest paise.
func PercentOfPaise(amount, pct int64) int64 {
	return (amount*pct + 50) / 100
}

// RoundPaiseToRupee rounds a non-negative paise amount half-up to the
// nearest whole rupee.
func RoundPaiseToRupee(p int64) int64 {
	return (p + 50) / 100 * 100
}

// QuoteBooking prices a rental deterministically from snapshotted inputs.
// GST is always computed on the post-discount subtotal. A discount can floor
// the subtotal at zero but never invert its sign. The day-count of every
// accessory is capped at the tier's day-count.
func QuoteBooking(tier domain.DurationTier, rates RateTable, selections []AccessorySelection, discountPaise int64, gstPercent int64) (CostBreakdown, error) {
	if !tier.Valid() {
		return CostBreakdown{}, domain.NewValidation("tier", "unknown duration tier")
	}
	if discountPaise < 0 {
		return CostBreakdown{}, domain.NewValidation("discount", "must not be negative")
	}

	basePaise := basePriceForTier(tier, rates)

	var accessoriesPaise, accessoryDepositPaise int64
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return CostBreakdown{}, domain.NewValidation("accessory_quantity", "must be positive")
		}
		if sel.Days <= 0 {
			return CostBreakdown{}, domain.NewValidation("accessory_days", "must be positive")
		}
		days := sel.Days
		if days > tier.Days() {
			days = tier.Days()
		}
		accessoriesPaise += sel.PricePerDayPaise * int64(sel.Quantity) * int64(days)
		accessoryDepositPaise += sel.DepositPaise * int64(sel.Quantity)
	}

	subtotal := basePaise + accessoriesPaise
	discounted := subtotal - discountPaise
	if discounted < 0 {
		discounted = 0
	}

	gst := RoundPaiseToRupee(PercentOfPaise(discounted, gstPercent))
	rentalTotal := discounted + gst
	deposit := depositForTier(tier, rates) + accessoryDepositPaise

	return CostBreakdown{
		CycleRentalPaise:     basePaise,
		AccessoriesPaise:     accessoriesPaise,
		SubtotalPaise:        subtotal,
		DiscountPaise:        subtotal - discounted,
		GSTPaise:             gst,
		RentalTotalPaise:     rentalTotal,
		SecurityDepositPaise: deposit,
		TotalPaise:           rentalTotal + deposit,
	}, nil
}

func basePriceForTier(tier domain.DurationTier, rates RateTable) int64 {
	switch tier {
	case domain.TierOneWeek:
		return rates.PricePerWeekPaise
	case domain.TierOneMonth:
		if rates.PricePerMonthPaise == 0 {
			return rates.PricePerDayPaise * monthFallbackDays
		}
		return rates.PricePerMonthPaise
	default:
		return rates.PricePerDayPaise
	}
}

func depositForTier(tier domain.DurationTier, rates RateTable) int64 {
	switch tier {
	case domain.TierOneWeek:
		if rates.DepositWeekPaise == 0 {
			return rates.DepositDayPaise
		}
		return rates.DepositWeekPaise
	case domain.TierOneMonth:
		if rates.DepositMonthPaise == 0 {
			return rates.DepositDayPaise
		}
		return rates.DepositMonthPaise
	default:
		return rates.DepositDayPaise
	}
}

// RatesForCycle snapshots a cycle's current price table.
func RatesForCycle(c *domain.Cycle) RateTable {
	return RateTable{
		PricePerDayPaise:   c.PricePerDayPaise,
		PricePerWeekPaise:  c.PricePerWeekPaise,
		PricePerMonthPaise: c.PricePerMonthPaise,
		DepositDayPaise:    c.DepositDayPaise,
		DepositWeekPaise:   c.DepositWeekPaise,
		DepositMonthPaise:  c.DepositMonthPaise,
	}
}
