package http

import (
	"net/http"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/repository"
	"cyclerent-backend/internal/service"
)

// AdminHandler carries the operator-facing catalog surfaces: cycles,
// accessories, coupons and partners.
type AdminHandler struct {
	inventorySvc service.InventoryService
	couponSvc    service.CouponService
	partnerRepo  repository.PartnerRepository
}

func NewAdminHandler(
	inventorySvc service.InventoryService,
	couponSvc service.CouponService,
	partnerRepo repository.PartnerRepository,
) *AdminHandler {
	return &AdminHandler{
		inventorySvc: inventorySvc,
		couponSvc:    couponSvc,
		partnerRepo:  partnerRepo,
	}
}

type cycleDetailsPayload struct {
	Vendor             string     `json:"vendor"`
	PurchasePricePaise int64      `json:"purchase_price_paise" validate:"gte=0"`
	PurchasedOn        *time.Time `json:"purchased_on"`
	WarrantyUntil      *time.Time `json:"warranty_until"`
	InvoiceRef         string     `json:"invoice_ref"`
	DocumentRefs       []string   `json:"document_refs"`
}

type cyclePayload struct {
	PartnerID          int64                `json:"partner_id" validate:"required,gt=0"`
	Name               string               `json:"name" validate:"required"`
	Model              string               `json:"model"`
	PricePerDayPaise   int64                `json:"price_per_day_paise" validate:"required,gt=0"`
	PricePerWeekPaise  int64                `json:"price_per_week_paise" validate:"gte=0"`
	PricePerMonthPaise int64                `json:"price_per_month_paise" validate:"gte=0"`
	DepositDayPaise    int64                `json:"deposit_day_paise" validate:"gte=0"`
	DepositWeekPaise   int64                `json:"deposit_week_paise" validate:"gte=0"`
	DepositMonthPaise  int64                `json:"deposit_month_paise" validate:"gte=0"`
	TotalQuantity      int32                `json:"total_quantity" validate:"required,gt=0"`
	Details            *cycleDetailsPayload `json:"details"`
}

func (p *cyclePayload) toDomain() *domain.Cycle {
	c := &domain.Cycle{
		PartnerID:          p.PartnerID,
		Name:               p.Name,
		Model:              p.Model,
		PricePerDayPaise:   p.PricePerDayPaise,
		PricePerWeekPaise:  p.PricePerWeekPaise,
		PricePerMonthPaise: p.PricePerMonthPaise,
		DepositDayPaise:    p.DepositDayPaise,
		DepositWeekPaise:   p.DepositWeekPaise,
		DepositMonthPaise:  p.DepositMonthPaise,
		TotalQuantity:      p.TotalQuantity,
	}
	if p.Details != nil {
		c.Details = &domain.CycleDetails{
			Vendor:             p.Details.Vendor,
			PurchasePricePaise: p.Details.PurchasePricePaise,
			PurchasedOn:        p.Details.PurchasedOn,
			WarrantyUntil:      p.Details.WarrantyUntil,
			InvoiceRef:         p.Details.InvoiceRef,
			DocumentRefs:       p.Details.DocumentRefs,
		}
	}
	return c
}

func (h *AdminHandler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var payload cyclePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}
	cycle := payload.toDomain()
	if err := h.inventorySvc.CreateCycle(r.Context(), cycle); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cycle)
}

func (h *AdminHandler) GetCycle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	cycle, err := h.inventorySvc.GetCycle(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	// Purchase details stay internal to the operator console.
	if claims := claimsFrom(r); claims == nil || claims.Role != domain.RoleOperator {
		cycle.Details = nil
	}
	respondJSON(w, http.StatusOK, cycle)
}

func (h *AdminHandler) UpdateCycle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var payload cyclePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}
	cycle := payload.toDomain()
	cycle.ID = id
	cycle.IsActive = true
	if err := h.inventorySvc.UpdateCycle(r.Context(), cycle); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

func (h *AdminHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	var partnerID int64
	if v := r.URL.Query().Get("partner_id"); v != "" {
		id, err := parseID(v, "partner_id")
		if err != nil {
			respondError(w, err)
			return
		}
		partnerID = id
	}
	page, pageSize := pageParams(r)
	cycles, total, err := h.inventorySvc.ListCycles(r.Context(), partnerID, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}

	if claims := claimsFrom(r); claims == nil || claims.Role != domain.RoleOperator {
		for i := range cycles {
			cycles[i].Details = nil
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"cycles": cycles, "total": total})
}

func (h *AdminHandler) StartMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.inventorySvc.StartCycleMaintenance(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "maintenance_started"})
}

func (h *AdminHandler) CompleteMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.inventorySvc.CompleteCycleMaintenance(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "maintenance_completed"})
}

type accessoryPayload struct {
	Name             string `json:"name" validate:"required"`
	PricePerDayPaise int64  `json:"price_per_day_paise" validate:"gte=0"`
	DepositPaise     int64  `json:"deposit_paise" validate:"gte=0"`
	TotalQuantity    int32  `json:"total_quantity" validate:"required,gt=0"`
}

func (h *AdminHandler) CreateAccessory(w http.ResponseWriter, r *http.Request) {
	var payload accessoryPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}
	acc := &domain.Accessory{
		Name:             payload.Name,
		PricePerDayPaise: payload.PricePerDayPaise,
		DepositPaise:     payload.DepositPaise,
		TotalQuantity:    payload.TotalQuantity,
	}
	if err := h.inventorySvc.CreateAccessory(r.Context(), acc); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, acc)
}

func (h *AdminHandler) ListAccessories(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	accessories, total, err := h.inventorySvc.ListAccessories(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accessories": accessories, "total": total})
}

type couponPayload struct {
	Code          string     `json:"code" validate:"required"`
	Type          string     `json:"type" validate:"required,oneof=PERCENTAGE FIXED"`
	Value         int64      `json:"value" validate:"required,gt=0"`
	MinOrderPaise *int64     `json:"min_order_paise"`
	MaxUses       *int32     `json:"max_uses"`
	ValidUntil    *time.Time `json:"valid_until"`
}

func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var payload couponPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}
	coupon := &domain.Coupon{
		Code:          payload.Code,
		Type:          domain.CouponType(payload.Type),
		Value:         payload.Value,
		MinOrderPaise: payload.MinOrderPaise,
		MaxUses:       payload.MaxUses,
		ValidUntil:    payload.ValidUntil,
	}
	if err := h.couponSvc.Create(r.Context(), coupon); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, coupon)
}

func (h *AdminHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	coupons, total, err := h.couponSvc.List(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"coupons": coupons, "total": total})
}

func (h *AdminHandler) DeactivateCoupon(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, domain.NewValidation("code", "must not be empty"))
		return
	}
	if err := h.couponSvc.Deactivate(r.Context(), code); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

type couponPreviewPayload struct {
	Code          string `json:"code" validate:"required"`
	SubtotalPaise int64  `json:"subtotal_paise" validate:"required,gt=0"`
}

func (h *AdminHandler) PreviewCoupon(w http.ResponseWriter, r *http.Request) {
	var payload couponPreviewPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}
	result, err := h.couponSvc.Preview(r.Context(), payload.Code, payload.SubtotalPaise)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type partnerPayload struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	City    string `json:"city" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (h *AdminHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var payload partnerPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}
	partner := &domain.Partner{
		Name:     payload.Name,
		Address:  payload.Address,
		City:     payload.City,
		Phone:    payload.Phone,
		Email:    payload.Email,
		IsActive: true,
	}
	if err := h.partnerRepo.Create(r.Context(), partner); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, partner)
}

func (h *AdminHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	partners, total, err := h.partnerRepo.List(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"partners": partners, "total": total})
}
