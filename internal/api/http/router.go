package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/security"
)

// NewRouter wires all handlers onto the API surface. The webhook endpoint is
// unauthenticated; everything else requires a bearer token.
func NewRouter(
	tokens security.TokenManager,
	bookings *BookingHandler,
	admin *AdminHandler,
	payments *PaymentHandler,
	notifications *NotificationHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Gateway webhook, verified server-side against the gateway itself.
	router.HandleFunc("/api/v1/payments/midtrans/notify", payments.HandleNotification).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(tokens))

	// Renter surface.
	api.HandleFunc("/bookings/quote", bookings.Quote).Methods("POST")
	api.HandleFunc("/bookings", requireRole(domain.RoleRenter, bookings.Create)).Methods("POST")
	api.HandleFunc("/bookings", requireRole(domain.RoleRenter, bookings.ListMine)).Methods("GET")
	api.HandleFunc("/bookings/{id}", bookings.Get).Methods("GET")
	api.HandleFunc("/bookings/{id}/accessories", requireRole(domain.RoleRenter, bookings.UpdateAccessories)).Methods("PUT")
	api.HandleFunc("/bookings/{id}/cancellation", requireRole(domain.RoleRenter, bookings.RequestCancellation)).Methods("POST")
	api.HandleFunc("/bookings/{id}/cancellation/preview", bookings.PreviewCancellation).Methods("GET")
	api.HandleFunc("/coupons/preview", admin.PreviewCoupon).Methods("POST")
	api.HandleFunc("/notifications", notifications.List).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods("POST")

	// Operator surface.
	api.HandleFunc("/partners/{partnerID}/bookings", requireRole(domain.RoleOperator, bookings.ListByPartner)).Methods("GET")
	api.HandleFunc("/bookings/{id}/activate", requireRole(domain.RoleOperator, bookings.Activate)).Methods("POST")
	api.HandleFunc("/bookings/{id}/cancellation/approve", requireRole(domain.RoleOperator, bookings.ApproveCancellation)).Methods("POST")
	api.HandleFunc("/bookings/{id}/cancellation/reject", requireRole(domain.RoleOperator, bookings.RejectCancellation)).Methods("POST")
	api.HandleFunc("/bookings/{id}/return", requireRole(domain.RoleOperator, bookings.RecordReturn)).Methods("POST")
	api.HandleFunc("/bookings/{id}/deposit", requireRole(domain.RoleOperator, bookings.ReturnDeposit)).Methods("POST")

	// Catalog.
	api.HandleFunc("/cycles", admin.ListCycles).Methods("GET")
	api.HandleFunc("/cycles/{id}", admin.GetCycle).Methods("GET")
	api.HandleFunc("/cycles", requireRole(domain.RoleOperator, admin.CreateCycle)).Methods("POST")
	api.HandleFunc("/cycles/{id}", requireRole(domain.RoleOperator, admin.UpdateCycle)).Methods("PUT")
	api.HandleFunc("/cycles/{id}/maintenance/start", requireRole(domain.RoleOperator, admin.StartMaintenance)).Methods("POST")
	api.HandleFunc("/cycles/{id}/maintenance/complete", requireRole(domain.RoleOperator, admin.CompleteMaintenance)).Methods("POST")
	api.HandleFunc("/accessories", admin.ListAccessories).Methods("GET")
	api.HandleFunc("/accessories", requireRole(domain.RoleOperator, admin.CreateAccessory)).Methods("POST")
	api.HandleFunc("/coupons", requireRole(domain.RoleOperator, admin.CreateCoupon)).Methods("POST")
	api.HandleFunc("/coupons", requireRole(domain.RoleOperator, admin.ListCoupons)).Methods("GET")
	api.HandleFunc("/coupons/deactivate", requireRole(domain.RoleOperator, admin.DeactivateCoupon)).Methods("POST")
	api.HandleFunc("/partners", requireRole(domain.RoleOperator, admin.CreatePartner)).Methods("POST")
	api.HandleFunc("/partners", admin.ListPartners).Methods("GET")

	return router
}
