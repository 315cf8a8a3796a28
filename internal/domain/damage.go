package domain

import "time"

// DamageReport is created during the return step when damage cost > 0.
// DeductedFromDeposit is finalized at deposit return: true when the deposit
// fully absorbed the settlement (refund >= 0).
type DamageReport struct {
	ID                  int64     `json:"id"`
	BookingID           int64     `json:"booking_id"`
	CycleID             int64     `json:"cycle_id"`
	Description         string    `json:"description"`
	CostPaise           int64     `json:"cost_paise"`
	DeductedFromDeposit bool      `json:"deducted_from_deposit"`
	CreatedOn           time.Time `json:"created_on"`
}
