// Package pricing turns a cart snapshot plus delivery method into a priced
// summary. It is pure: the same cart and method always produce the same
// rounded output, which lets the client-side display and the server-side
// order validation share one implementation.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

var ErrInvalidCartState = errors.New("invalid cart state")

var (
	deliveryFee       = decimal.NewFromInt(20)
	discountThreshold = decimal.NewFromInt(500)
	discountRate      = decimal.NewFromFloat(0.05)
)

// Price computes subtotal, delivery fee, discount and total for the given
// cart. Monetary figures are rounded half-up to 2 decimal places at output
// time only; the discount threshold is evaluated against the pre-rounding
// subtotal.
func Price(items []domain.CartItem, method domain.DeliveryMethod) (domain.PricedSummary, error) {
	if !method.Valid() {
		return domain.PricedSummary{}, fmt.Errorf("%w: unknown delivery method %q", ErrInvalidCartState, method)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return domain.PricedSummary{}, fmt.Errorf("%w: product %s has quantity %d", ErrInvalidCartState, item.ProductID, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return domain.PricedSummary{}, fmt.Errorf("%w: product %s has negative unit price", ErrInvalidCartState, item.ProductID)
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	fee := decimal.Zero
	if method == domain.DeliveryMethodDelivery {
		fee = deliveryFee
	}

	discount := decimal.Zero
	if subtotal.GreaterThan(discountThreshold) {
		discount = subtotal.Mul(discountRate)
	}

	total := subtotal.Add(fee).Sub(discount)

	// decimal.Round is round-half-away-from-zero, which is round-half-up
	// for the non-negative amounts money can take here.
	return domain.PricedSummary{
		Subtotal:    subtotal.Round(2),
		DeliveryFee: fee.Round(2),
		Discount:    discount.Round(2),
		Total:       total.Round(2),
	}, nil
}
