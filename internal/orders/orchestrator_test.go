package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/pricing"
)

// MockGateway implements Gateway for testing
type MockGateway struct {
	Response *gateway.CreateOrderResponse
	Err      error
	// Captured holds the request passed to CreateOrder
	Captured *gateway.CreateOrderRequest
}

func (m *MockGateway) CreateOrder(_ context.Context, req *gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error) {
	m.Captured = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		DeliveryAddress: "12 Ring Road",
		PhoneNumber:     "0244000000",
		PaymentMethod:   "card",
		DeliveryMethod:  domain.DeliveryMethodDelivery,
		Items: []domain.CartItem{
			{ProductID: "p1", SellerID: "s1", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 1},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	mock := &MockGateway{
		Response: &gateway.CreateOrderResponse{
			OrderID:     "ord-1",
			OrderNumber: "UN-1001",
			TotalAmount: "120.00",
		},
	}
	orchestrator := NewOrchestrator(mock)

	result, err := orchestrator.CreateOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "ord-1", result.OrderID)
	assert.Equal(t, "UN-1001", result.OrderNumber)
	assert.Equal(t, "120.00", result.TotalAmount.StringFixed(2))
	assert.Nil(t, result.Mismatch)
	// 100.00 subtotal + 20 delivery fee, trimmed fields submitted
	require.NotNil(t, mock.Captured)
	assert.Equal(t, "120.00", mock.Captured.TotalAmount)
	assert.Equal(t, "12 Ring Road", mock.Captured.DeliveryAddress)
}

func TestCreateOrder_MissingAddressIsFirstFieldReported(t *testing.T) {
	req := validRequest()
	req.DeliveryAddress = "   "
	req.PhoneNumber = ""
	orchestrator := NewOrchestrator(&MockGateway{})

	_, err := orchestrator.CreateOrder(context.Background(), req)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "delivery address", validationErr.Field)
}

func TestCreateOrder_MissingPhone(t *testing.T) {
	req := validRequest()
	req.PhoneNumber = " "
	orchestrator := NewOrchestrator(&MockGateway{})

	_, err := orchestrator.CreateOrder(context.Background(), req)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "phone number", validationErr.Field)
}

func TestCreateOrder_InvalidCartRejectedBeforeSubmit(t *testing.T) {
	req := validRequest()
	req.Items[0].Quantity = 0
	mock := &MockGateway{}
	orchestrator := NewOrchestrator(mock)

	_, err := orchestrator.CreateOrder(context.Background(), req)

	assert.True(t, errors.Is(err, pricing.ErrInvalidCartState))
	assert.Nil(t, mock.Captured)
}

func TestCreateOrder_MismatchWithinToleranceIgnored(t *testing.T) {
	// backend total differs by exactly one minor unit
	mock := &MockGateway{
		Response: &gateway.CreateOrderResponse{OrderID: "ord-1", OrderNumber: "UN-1", TotalAmount: "120.01"},
	}
	orchestrator := NewOrchestrator(mock)

	result, err := orchestrator.CreateOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Nil(t, result.Mismatch)
}

func TestCreateOrder_MismatchBeyondToleranceFlagged(t *testing.T) {
	mock := &MockGateway{
		Response: &gateway.CreateOrderResponse{OrderID: "ord-1", OrderNumber: "UN-1", TotalAmount: "125.00"},
	}
	orchestrator := NewOrchestrator(mock)

	result, err := orchestrator.CreateOrder(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, result.Mismatch)
	assert.Equal(t, "120.00", result.Mismatch.LocalTotal.StringFixed(2))
	assert.Equal(t, "125.00", result.Mismatch.AuthoritativeTotal.StringFixed(2))
	// the backend total still wins
	assert.Equal(t, "125.00", result.TotalAmount.StringFixed(2))
}

func TestCreateOrder_GatewayError(t *testing.T) {
	mock := &MockGateway{Err: gateway.ErrNetwork}
	orchestrator := NewOrchestrator(mock)

	_, err := orchestrator.CreateOrder(context.Background(), validRequest())

	assert.True(t, errors.Is(err, gateway.ErrNetwork))
}
