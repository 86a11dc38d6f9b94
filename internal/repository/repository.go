package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

var ErrSessionNotFound = errors.New("payment session not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// SessionStore persists payment sessions. CreateSession supersedes any
// prior live session for the same order, so stale sessions stop receiving
// transitions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.PaymentSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*domain.PaymentSession, error)
	UpdateSession(ctx context.Context, session *domain.PaymentSession) error
	ActiveSessionForOrder(ctx context.Context, orderID string) (*domain.PaymentSession, error)
	Close() error
}
