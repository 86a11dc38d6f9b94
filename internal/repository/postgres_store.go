package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

type PostgresStore struct {
	db *sql.DB
}

var _ SessionStore = (*PostgresStore)(nil)

func NewPostgresStore(cred *Credentials) (*PostgresStore, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(s.db, &postgres.Config{
		MigrationsTable: "payment_sessions_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateSession inserts the new session and marks any prior live session for
// the order as superseded, in one transaction.
func (s *PostgresStore) CreateSession(ctx context.Context, session *domain.PaymentSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE payment_sessions SET superseded = TRUE, updated_at = NOW()
		 WHERE order_id = $1 AND NOT superseded`,
		session.OrderID)
	if err != nil {
		return fmt.Errorf("supersede prior sessions: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment_sessions
		 (id, order_id, reference, authorization_url, phase, amount, currency, verify_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
		session.ID,
		session.OrderID,
		session.Reference,
		session.AuthorizationURL,
		session.Phase.String(),
		session.Amount.StringFixed(2),
		session.Currency,
		session.VerifyAttempts)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.PaymentSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, order_id, reference, authorization_url, phase, amount, currency, verify_attempts, created_at, updated_at
		 FROM payment_sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (s *PostgresStore) UpdateSession(ctx context.Context, session *domain.PaymentSession) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_sessions
		 SET reference = $2, authorization_url = $3, phase = $4, verify_attempts = $5, updated_at = NOW()
		 WHERE id = $1`,
		session.ID,
		session.Reference,
		session.AuthorizationURL,
		session.Phase.String(),
		session.VerifyAttempts)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) ActiveSessionForOrder(ctx context.Context, orderID string) (*domain.PaymentSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, order_id, reference, authorization_url, phase, amount, currency, verify_attempts, created_at, updated_at
		 FROM payment_sessions
		 WHERE order_id = $1 AND NOT superseded
		   AND phase NOT IN ('SUCCEEDED', 'CANCELLED', 'FAILED')`,
		orderID)
	return scanSession(row)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanSession(row *sql.Row) (*domain.PaymentSession, error) {
	var session domain.PaymentSession
	var phase, amount string
	err := row.Scan(
		&session.ID,
		&session.OrderID,
		&session.Reference,
		&session.AuthorizationURL,
		&phase,
		&amount,
		&session.Currency,
		&session.VerifyAttempts,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.Phase = domain.PaymentPhase(phase)
	session.Amount, err = decimalFromDB(amount)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
