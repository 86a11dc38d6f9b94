package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	store, err := NewPostgresStore(creds)
	require.NoError(t, err)

	err = store.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		store.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return store, cleanup
}

func TestPostgresStore_CreateAndGet(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	session := &domain.PaymentSession{
		ID:       uuid.New(),
		OrderID:  "ord-1",
		Phase:    domain.PhaseInitializing,
		Amount:   decimal.RequireFromString("514.00"),
		Currency: "GHS",
	}
	require.NoError(t, store.CreateSession(ctx, session))

	got, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", got.OrderID)
	assert.Equal(t, domain.PhaseInitializing, got.Phase)
	assert.True(t, got.Amount.Equal(session.Amount))
	assert.Equal(t, "GHS", got.Currency)
}

func TestPostgresStore_GetUnknownSession(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.GetSession(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestPostgresStore_UpdateSession(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	session := &domain.PaymentSession{
		ID:      uuid.New(),
		OrderID: "ord-2",
		Phase:   domain.PhaseInitializing,
		Amount:  decimal.RequireFromString("10.00"),
	}
	require.NoError(t, store.CreateSession(ctx, session))

	session.Phase = domain.PhaseAwaitingUserAction
	session.Reference = "REF-7"
	session.AuthorizationURL = "https://pay.example.com/x"
	session.VerifyAttempts = 2
	require.NoError(t, store.UpdateSession(ctx, session))

	got, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingUserAction, got.Phase)
	assert.Equal(t, "REF-7", got.Reference)
	assert.Equal(t, 2, got.VerifyAttempts)
}

func TestPostgresStore_CreateSupersedesPriorActive(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	first := &domain.PaymentSession{
		ID:      uuid.New(),
		OrderID: "ord-3",
		Phase:   domain.PhaseAwaitingUserAction,
		Amount:  decimal.RequireFromString("10.00"),
	}
	require.NoError(t, store.CreateSession(ctx, first))

	second := &domain.PaymentSession{
		ID:      uuid.New(),
		OrderID: "ord-3",
		Phase:   domain.PhaseInitializing,
		Amount:  decimal.RequireFromString("10.00"),
	}
	require.NoError(t, store.CreateSession(ctx, second))

	active, err := store.ActiveSessionForOrder(ctx, "ord-3")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestPostgresStore_TerminalSessionNotActive(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	session := &domain.PaymentSession{
		ID:      uuid.New(),
		OrderID: "ord-4",
		Phase:   domain.PhaseFailed,
		Amount:  decimal.RequireFromString("10.00"),
	}
	require.NoError(t, store.CreateSession(ctx, session))

	_, err := store.ActiveSessionForOrder(ctx, "ord-4")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}
