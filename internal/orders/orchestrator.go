// Package orders creates orders out of priced carts. The backend stays the
// source of truth for the final total; the orchestrator cross-checks it
// against the locally computed price.
package orders

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/pricing"
)

// priceTolerance is one currency minor unit. Anything beyond it between the
// local and authoritative totals is flagged as a mismatch.
var priceTolerance = decimal.NewFromFloat(0.01)

// ValidationError reports the first missing user-supplied field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// PriceMismatch is a warning, not a failure: the backend total won the
// disagreement, but the caller should surface it.
type PriceMismatch struct {
	LocalTotal         decimal.Decimal `json:"local_total"`
	AuthoritativeTotal decimal.Decimal `json:"authoritative_total"`
}

type CreateOrderRequest struct {
	DeliveryAddress string
	PhoneNumber     string
	Notes           string
	PaymentMethod   string
	DeliveryMethod  domain.DeliveryMethod
	Items           []domain.CartItem
}

type OrderCreationResult struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	// Mismatch is nil when local and backend totals agree within tolerance.
	Mismatch *PriceMismatch `json:"price_mismatch,omitempty"`
}

// Gateway is the backend surface the orchestrator needs.
type Gateway interface {
	CreateOrder(ctx context.Context, req *gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error)
}

type Orchestrator struct {
	gw Gateway
}

func NewOrchestrator(gw Gateway) *Orchestrator {
	return &Orchestrator{gw: gw}
}

// CreateOrder validates the delivery inputs, prices the cart and submits the
// order. The returned total is the backend's authoritative one.
func (o *Orchestrator) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderCreationResult, error) {
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, &ValidationError{Field: "delivery address"}
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, &ValidationError{Field: "phone number"}
	}

	summary, err := pricing.Price(req.Items, req.DeliveryMethod)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SellerID:    item.SellerID,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	resp, err := o.gw.CreateOrder(ctx, &gateway.CreateOrderRequest{
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
		TotalAmount:     summary.Total.StringFixed(2),
	})
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	authoritative, err := decimal.NewFromString(resp.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("parse backend total %q: %w", resp.TotalAmount, err)
	}

	result := &OrderCreationResult{
		OrderID:     resp.OrderID,
		OrderNumber: resp.OrderNumber,
		TotalAmount: authoritative,
	}

	if authoritative.Sub(summary.Total).Abs().GreaterThan(priceTolerance) {
		log.Printf("price mismatch on order %s: local %s, backend %s",
			resp.OrderID, summary.Total.StringFixed(2), authoritative.StringFixed(2))
		result.Mismatch = &PriceMismatch{
			LocalTotal:         summary.Total,
			AuthoritativeTotal: authoritative,
		}
	}

	return result, nil
}
