package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/logger"
)

var validate = validator.New()

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Detail map[string]string `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

// respondError maps domain error types onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		policy     *domain.PolicyViolation
		conflict   *domain.StateConflict
		coupon     *domain.CouponError
		evidence   *domain.EvidenceRequiredError
	)
	switch {
	case errors.As(err, &notFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: notFound.Error()})
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error()})
	case errors.As(err, &evidence):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: evidence.Error(), Code: "EVIDENCE_REQUIRED"})
	case errors.As(err, &policy):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: policy.Error(), Code: policy.Rule, Detail: policy.Detail})
	case errors.As(err, &coupon):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: coupon.Error(), Code: string(coupon.Reason)})
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: conflict.Error(), Code: conflict.Code})
	default:
		logger.Error("internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// decodeAndValidate parses the JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidation("body", "malformed JSON")
	}
	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return domain.NewValidation("body", "not validatable")
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewValidation(verrs[0].Field(), "failed "+verrs[0].Tag()+" validation")
		}
		return domain.NewValidation("body", err.Error())
	}
	return nil
}
