package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

// MemoryStore is an in-memory SessionStore for tests and single-node runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.PaymentSession
	// activeByOrder tracks the one live session per order
	activeByOrder map[string]uuid.UUID
}

var _ SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:      make(map[uuid.UUID]*domain.PaymentSession),
		activeByOrder: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) CreateSession(_ context.Context, session *domain.PaymentSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	cp := *session
	s.sessions[session.ID] = &cp
	s.activeByOrder[session.OrderID] = session.ID
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*domain.PaymentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *MemoryStore) UpdateSession(_ context.Context, session *domain.PaymentSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	session.UpdatedAt = time.Now()
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *MemoryStore) ActiveSessionForOrder(_ context.Context, orderID string) (*domain.PaymentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.activeByOrder[orderID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session, ok := s.sessions[id]
	if !ok || session.Phase.IsTerminal() {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
