package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentPhase string

const (
	PhaseIdle               PaymentPhase = "IDLE"
	PhaseInitializing       PaymentPhase = "INITIALIZING"
	PhaseAwaitingUserAction PaymentPhase = "AWAITING_USER_ACTION"
	PhaseVerifying          PaymentPhase = "VERIFYING"
	PhaseSucceeded          PaymentPhase = "SUCCEEDED"
	PhaseCancelled          PaymentPhase = "CANCELLED"
	PhaseFailed             PaymentPhase = "FAILED"
)

func (p PaymentPhase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseCancelled || p == PhaseFailed
}

// String representation (for logging)
func (p PaymentPhase) String() string {
	return string(p)
}

// CanTransitionTo encodes the payment phase machine. Terminal phases absorb:
// nothing leaves them without a new session.
func (p PaymentPhase) CanTransitionTo(next PaymentPhase) bool {
	switch p {
	case PhaseIdle:
		return next == PhaseInitializing
	case PhaseInitializing:
		return next == PhaseAwaitingUserAction || next == PhaseFailed
	case PhaseAwaitingUserAction:
		return next == PhaseVerifying || next == PhaseCancelled
	case PhaseVerifying:
		return next == PhaseSucceeded || next == PhaseFailed || next == PhaseCancelled
	default:
		return false
	}
}

// PaymentSession tracks one hosted-payment attempt for an order. At most one
// session per order is live; starting a new one supersedes the previous.
type PaymentSession struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          string          `json:"order_id"`
	Reference        string          `json:"reference"`
	AuthorizationURL string          `json:"authorization_url"`
	Phase            PaymentPhase    `json:"phase"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	VerifyAttempts   int             `json:"verify_attempts"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
