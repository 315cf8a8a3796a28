package domain

import "time"

// CycleDetails is the structured optional record behind the old free-form
// "internal_details" blob: every consumer expects these exact keys.
type CycleDetails struct {
	Vendor             string     `json:"vendor,omitempty"`
	PurchasePricePaise int64      `json:"purchase_price_paise,omitempty"`
	PurchasedOn        *time.Time `json:"purchased_on,omitempty"`
	WarrantyUntil      *time.Time `json:"warranty_until,omitempty"`
	InvoiceRef         string     `json:"invoice_ref,omitempty"`
	DocumentRefs       []string   `json:"document_refs,omitempty"`
}

// Cycle is a rentable bicycle model stocked at a partner location.
// AvailableQuantity is mutated only through the inventory ledger's atomic
// conditional reserve/release, never read-then-write.
type Cycle struct {
	ID        int64  `json:"id"`
	PartnerID int64  `json:"partner_id"`
	Name      string `json:"name"`
	Model     string `json:"model"`

	PricePerDayPaise   int64 `json:"price_per_day_paise"`
	PricePerWeekPaise  int64 `json:"price_per_week_paise"`
	PricePerMonthPaise int64 `json:"price_per_month_paise"`
	DepositDayPaise    int64 `json:"deposit_day_paise"`
	DepositWeekPaise   int64 `json:"deposit_week_paise"`
	DepositMonthPaise  int64 `json:"deposit_month_paise"`

	TotalQuantity     int32         `json:"total_quantity"`
	AvailableQuantity int32         `json:"available_quantity"`
	IsActive          bool          `json:"is_active"`
	Details           *CycleDetails `json:"details,omitempty"`
	CreatedOn         time.Time     `json:"created_on"`
}

type Accessory struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	PricePerDayPaise  int64     `json:"price_per_day_paise"`
	DepositPaise      int64     `json:"deposit_paise"`
	TotalQuantity     int32     `json:"total_quantity"`
	AvailableQuantity int32     `json:"available_quantity"`
	IsActive          bool      `json:"is_active"`
	CreatedOn         time.Time `json:"created_on"`
}
