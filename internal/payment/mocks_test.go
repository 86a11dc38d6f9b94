package payment

import (
	"context"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/settlement"
)

// MockGateway implements Gateway for testing
type MockGateway struct {
	InitResponse *gateway.InitializePaymentResponse
	InitErr      error
	InitCalls    int
}

func (m *MockGateway) InitializePayment(_ context.Context, _ *gateway.InitializePaymentRequest) (*gateway.InitializePaymentResponse, error) {
	m.InitCalls++
	if m.InitErr != nil {
		return nil, m.InitErr
	}
	return m.InitResponse, nil
}

// MockVerifier implements Verifier for testing. Errs are consumed in order;
// once exhausted the Result is returned.
type MockVerifier struct {
	Result      settlement.Result
	Errs        []error
	Calls       int
	LastRef     string
	AlwaysError error
}

func (m *MockVerifier) Verify(_ context.Context, reference string) (settlement.Result, error) {
	m.Calls++
	m.LastRef = reference
	if m.AlwaysError != nil {
		return settlement.Result{}, m.AlwaysError
	}
	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return settlement.Result{}, err
		}
	}
	return m.Result, nil
}
