package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/payment"
)

// OrderReader is the backend read surface needed to start a payment against
// an existing order.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type PaymentsHandler struct {
	controller *payment.Controller
	orders     OrderReader
	timeout    time.Duration
}

func NewPaymentsHandler(controller *payment.Controller, orders OrderReader, timeout time.Duration) *PaymentsHandler {
	return &PaymentsHandler{
		controller: controller,
		orders:     orders,
		timeout:    timeout,
	}
}

type startPaymentRequestDTO struct {
	PayerEmail string `json:"payer_email"`
}

type startPaymentResponseDTO struct {
	SessionID        string `json:"session_id"`
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// POST /api/v1/orders/{order_id}/payments
//
// Opens a fresh payment session for an order whose earlier attempt failed or
// was abandoned. Any prior live session for the order is superseded.
func (h *PaymentsHandler) StartPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required", false)
		return
	}

	var dto startPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", false)
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		respondError(w, http.StatusConflict, "already_paid", "order is already paid", false)
		return
	}

	session, err := h.controller.Start(ctx, order.ID, order.TotalAmount, "GHS", dto.PayerEmail)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, startPaymentResponseDTO{
		SessionID:        session.ID.String(),
		AuthorizationURL: session.AuthorizationURL,
		Reference:        session.Reference,
	})
}

type navigationEventDTO struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type outcomeResponseDTO struct {
	Outcome string      `json:"outcome"`
	Message string      `json:"message,omitempty"`
	Order   interface{} `json:"order,omitempty"`
}

// POST /api/v1/payments/events
func (h *PaymentsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var dto navigationEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", false)
		return
	}

	sessionID, err := uuid.Parse(dto.SessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be a UUID", false)
		return
	}

	outcome, err := h.controller.HandleEvent(ctx, payment.NavigationEvent{
		SessionID: sessionID,
		URL:       dto.URL,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondOutcome(w, outcome)
}

// POST /api/v1/payments/{session_id}/verify
func (h *PaymentsHandler) RetryVerification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	outcome, err := h.controller.RetryVerification(ctx, sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondOutcome(w, outcome)
}

type abandonRequestDTO struct {
	Confirmed bool `json:"confirmed"`
}

// POST /api/v1/payments/{session_id}/abandon
func (h *PaymentsHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var dto abandonRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", false)
		return
	}

	if err := h.controller.Abandon(ctx, sessionID, dto.Confirmed); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type retryLoadResponseDTO struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// POST /api/v1/payments/{session_id}/retry-load
func (h *PaymentsHandler) RetryLoad(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	url, reference, err := h.controller.RetryLoad(ctx, sessionID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, retryLoadResponseDTO{
		AuthorizationURL: url,
		Reference:        reference,
	})
}

func respondOutcome(w http.ResponseWriter, outcome payment.Outcome) {
	resp := outcomeResponseDTO{
		Outcome: string(outcome.Kind),
		Message: payment.UserMessage(outcome.Kind),
	}
	if outcome.Order != nil {
		resp.Order = outcome.Order
	}
	respondJSON(w, http.StatusOK, resp)
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "session_id")
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be a UUID", false)
		return uuid.Nil, false
	}
	return sessionID, true
}

func contextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}
