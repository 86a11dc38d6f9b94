package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/orders"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/payment"
)

type CheckoutHandler struct {
	orchestrator *orders.Orchestrator
	controller   *payment.Controller
	timeout      time.Duration
}

func NewCheckoutHandler(orchestrator *orders.Orchestrator, controller *payment.Controller, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		orchestrator: orchestrator,
		controller:   controller,
		timeout:      timeout,
	}
}

type cartItemDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SellerID    string `json:"seller_id"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

type checkoutRequestDTO struct {
	DeliveryAddress string        `json:"delivery_address"`
	PhoneNumber     string        `json:"phone_number"`
	Notes           string        `json:"notes"`
	PaymentMethod   string        `json:"payment_method"`
	DeliveryMethod  string        `json:"delivery_method"`
	PayerEmail      string        `json:"payer_email"`
	Items           []cartItemDTO `json:"items"`
}

// checkoutPaymentFailureDTO is returned when the order was created but the
// payment session could not be opened. The order id lets the client retry
// the payment without re-submitting the cart.
type checkoutPaymentFailureDTO struct {
	OrderID     string        `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	TotalAmount string        `json:"total_amount"`
	Error       errorResponse `json:"error"`
}

type checkoutResponseDTO struct {
	OrderID          string `json:"order_id"`
	OrderNumber      string `json:"order_number"`
	TotalAmount      string `json:"total_amount"`
	PriceMismatch    bool   `json:"price_mismatch"`
	SessionID        string `json:"session_id,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	Reference        string `json:"reference,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", false)
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, dto := range req.Items {
		price, err := decimal.NewFromString(dto.UnitPrice)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid unit price: "+dto.UnitPrice, false)
			return
		}
		items = append(items, domain.CartItem{
			ProductID:   dto.ProductID,
			ProductName: dto.ProductName,
			SellerID:    dto.SellerID,
			UnitPrice:   price,
			Quantity:    dto.Quantity,
		})
	}

	result, err := h.orchestrator.CreateOrder(ctx, &orders.CreateOrderRequest{
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
		DeliveryMethod:  domain.DeliveryMethod(req.DeliveryMethod),
		Items:           items,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := checkoutResponseDTO{
		OrderID:       result.OrderID,
		OrderNumber:   result.OrderNumber,
		TotalAmount:   result.TotalAmount.StringFixed(2),
		PriceMismatch: result.Mismatch != nil,
	}

	// hosted payment methods open a session right away; anything else
	// (e.g. cash on delivery) stops at order creation
	if req.PaymentMethod == "card" || req.PaymentMethod == "mobile_money" {
		session, err := h.controller.Start(ctx, result.OrderID, result.TotalAmount, "GHS", req.PayerEmail)
		if errors.Is(err, payment.ErrInitializationFailed) {
			// the order exists even though the payment could not start; hand
			// its id back so the client can retry against it
			respondJSON(w, http.StatusBadGateway, checkoutPaymentFailureDTO{
				OrderID:     result.OrderID,
				OrderNumber: result.OrderNumber,
				TotalAmount: result.TotalAmount.StringFixed(2),
				Error: errorResponse{
					Code:      "initialization_error",
					Message:   "could not initialize the payment, please try again",
					Retryable: true,
				},
			})
			return
		}
		if err != nil {
			handleDomainError(w, err)
			return
		}
		resp.SessionID = session.ID.String()
		resp.AuthorizationURL = session.AuthorizationURL
		resp.Reference = session.Reference
	}

	respondJSON(w, http.StatusCreated, resp)
}
