package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc      service.BookingService
	cancellationSvc service.CancellationService
	settlementSvc   service.SettlementService
}

func NewBookingHandler(
	bookingSvc service.BookingService,
	cancellationSvc service.CancellationService,
	settlementSvc service.SettlementService,
) *BookingHandler {
	return &BookingHandler{
		bookingSvc:      bookingSvc,
		cancellationSvc: cancellationSvc,
		settlementSvc:   settlementSvc,
	}
}

type accessoryChoicePayload struct {
	AccessoryID int64 `json:"accessory_id" validate:"required,gt=0"`
	Quantity    int32 `json:"quantity" validate:"required,gt=0"`
}

type createBookingPayload struct {
	CycleID     int64                    `json:"cycle_id" validate:"required,gt=0"`
	PartnerID   int64                    `json:"partner_id" validate:"omitempty,gt=0"`
	Tier        string                   `json:"tier" validate:"required,oneof=ONE_DAY ONE_WEEK ONE_MONTH"`
	PickupAt    time.Time                `json:"pickup_at" validate:"required"`
	Accessories []accessoryChoicePayload `json:"accessories" validate:"dive"`
	CouponCode  string                   `json:"coupon_code"`
}

type quotePayload struct {
	CycleID     int64                    `json:"cycle_id" validate:"required,gt=0"`
	Tier        string                   `json:"tier" validate:"required,oneof=ONE_DAY ONE_WEEK ONE_MONTH"`
	Accessories []accessoryChoicePayload `json:"accessories" validate:"dive"`
	CouponCode  string                   `json:"coupon_code"`
}

func toChoices(payload []accessoryChoicePayload) []service.AccessoryChoice {
	choices := make([]service.AccessoryChoice, 0, len(payload))
	for _, p := range payload {
		choices = append(choices, service.AccessoryChoice{AccessoryID: p.AccessoryID, Quantity: p.Quantity})
	}
	return choices
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseID(mux.Vars(r)[name], name)
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidation(name, "must be a positive integer")
	}
	return id, nil
}

func pageParams(r *http.Request) (int32, int32) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32)
	pageSize, _ := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32)
	return int32(page), int32(pageSize)
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var payload quotePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	quote, err := h.bookingSvc.Quote(r.Context(), service.QuoteRequest{
		CycleID:     payload.CycleID,
		Tier:        domain.DurationTier(payload.Tier),
		Accessories: toChoices(payload.Accessories),
		CouponCode:  payload.CouponCode,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createBookingPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.bookingSvc.CreateBooking(r.Context(), service.CreateBookingRequest{
		RenterID:    claims.UserID,
		CycleID:     payload.CycleID,
		PartnerID:   payload.PartnerID,
		Tier:        domain.DurationTier(payload.Tier),
		PickupAt:    payload.PickupAt,
		Accessories: toChoices(payload.Accessories),
		CouponCode:  payload.CouponCode,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	booking, items, err := h.bookingSvc.GetBooking(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	// Renters only see their own bookings; operators see everything.
	claims := claimsFrom(r)
	if claims.Role != domain.RoleOperator && booking.RenterID != claims.UserID {
		respondError(w, domain.NewNotFound("booking", mux.Vars(r)["id"]))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"booking":     booking,
		"accessories": items,
	})
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	page, pageSize := pageParams(r)
	bookings, total, err := h.bookingSvc.ListByRenter(r.Context(), claims.UserID, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "total": total})
}

func (h *BookingHandler) ListByPartner(w http.ResponseWriter, r *http.Request) {
	partnerID, err := pathID(r, "partnerID")
	if err != nil {
		respondError(w, err)
		return
	}
	page, pageSize := pageParams(r)
	bookings, total, err := h.bookingSvc.ListByPartner(r.Context(), partnerID, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "total": total})
}

type updateAccessoriesPayload struct {
	Accessories []accessoryChoicePayload `json:"accessories" validate:"dive"`
}

func (h *BookingHandler) UpdateAccessories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var payload updateAccessoriesPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, delta, err := h.bookingSvc.UpdateAccessories(r.Context(), claims.UserID, id, toChoices(payload.Accessories))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"booking": booking, "delta_paise": delta})
}

func (h *BookingHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.bookingSvc.ActivateBooking(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type cancellationRequestPayload struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var payload cancellationRequestPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.cancellationSvc.RequestCancellation(r.Context(), claims.UserID, id, payload.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) PreviewCancellation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	quote, err := h.cancellationSvc.PreviewFee(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *BookingHandler) ApproveCancellation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.cancellationSvc.ApproveCancellation(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type rejectCancellationPayload struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *BookingHandler) RejectCancellation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var payload rejectCancellationPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.cancellationSvc.RejectCancellation(r.Context(), claims.UserID, id, payload.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type recordReturnPayload struct {
	Condition         string   `json:"condition" validate:"required,oneof=EXCELLENT GOOD FAIR DAMAGED"`
	DamageCostPaise   int64    `json:"damage_cost_paise" validate:"gte=0"`
	DamageDescription string   `json:"damage_description"`
	PhotoRefs         []string `json:"photo_refs"`
}

func (h *BookingHandler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var payload recordReturnPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.settlementSvc.RecordCycleReturn(r.Context(), claims.UserID, id, service.ReturnRequest{
		Condition:         domain.CycleCondition(payload.Condition),
		DamageCostPaise:   payload.DamageCostPaise,
		DamageDescription: payload.DamageDescription,
		PhotoRefs:         payload.PhotoRefs,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ReturnDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	claims := claimsFrom(r)
	booking, err := h.settlementSvc.ReturnDeposit(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}
