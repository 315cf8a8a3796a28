package http

import (
	"encoding/json"
	"net/http"

	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/payment"
	"cyclerent-backend/internal/service"
)

// PaymentHandler receives gateway webhooks. The payload itself is untrusted:
// only the order id is read, the status is fetched from the gateway.
type PaymentHandler struct {
	gateway    payment.Gateway
	bookingSvc service.BookingService
}

func NewPaymentHandler(gateway payment.Gateway, bookingSvc service.BookingService) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, bookingSvc: bookingSvc}
}

func (h *PaymentHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON"})
		return
	}

	orderID, _ := payload["order_id"].(string)
	if orderID == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing order_id"})
		return
	}

	status, final, err := h.gateway.ResolveStatus(r.Context(), orderID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to resolve payment status", "order_id", orderID, "error", err)
		// 200 keeps the gateway from hammering retries for a transaction we
		// cannot resolve; the next notification will try again.
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	if !final {
		respondJSON(w, http.StatusOK, map[string]string{"status": "pending"})
		return
	}

	if _, err := h.bookingSvc.ConfirmPayment(r.Context(), orderID, status); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
