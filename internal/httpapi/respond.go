package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/orders"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/payment"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/pricing"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/repository"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/settlement"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retryable tells the client whether to offer "try again" or a
	// contact-support fallback.
	Retryable bool `json:"retryable"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, retryable bool) {
	respondJSON(w, status, errorResponse{Code: code, Message: message, Retryable: retryable})
}

// handleDomainError maps pipeline errors onto HTTP responses. Invalid state
// transitions are defects: logged, reported as a generic 500, never echoed
// to users.
func handleDomainError(w http.ResponseWriter, err error) {
	var validationErr *orders.ValidationError
	var backendErr *gateway.BackendError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "validation_error", validationErr.Error(), false)
	case errors.Is(err, pricing.ErrInvalidCartState):
		respondError(w, http.StatusBadRequest, "invalid_cart_state", err.Error(), false)
	case errors.Is(err, repository.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "payment session not found", false)
	case errors.Is(err, gateway.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order not found", false)
	case errors.Is(err, payment.ErrConfirmationRequired):
		respondError(w, http.StatusConflict, "confirmation_required",
			"abandoning an in-flight payment requires confirmation", false)
	case errors.Is(err, payment.ErrInitializationFailed):
		respondError(w, http.StatusBadGateway, "initialization_error",
			"could not initialize the payment, please try again", true)
	case errors.Is(err, settlement.ErrVerificationTimeout):
		respondError(w, http.StatusBadGateway, "verification_timeout",
			"could not confirm the payment yet, please try again", true)
	case errors.Is(err, settlement.ErrInvalidReference):
		log.Printf("verification without a reference: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error", false)
	case errors.Is(err, payment.ErrInvalidStateTransition):
		log.Printf("invalid state transition: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error", false)
	case errors.As(err, &backendErr):
		respondError(w, http.StatusBadRequest, "backend_rejected", backendErr.Message, false)
	case errors.Is(err, gateway.ErrNetwork):
		respondError(w, http.StatusBadGateway, "network_error",
			"the backend is unreachable, please try again", true)
	default:
		log.Printf("unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error", false)
	}
}
