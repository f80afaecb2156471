package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// runs unchanged inside or outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgRepositories struct {
	db dbtx
}

func (r pgRepositories) Users() UserRepository { return &PGUserRepository{db: r.db} }
func (r pgRepositories) Flights() FlightRepository { return &PGFlightRepository{db: r.db} }
func (r pgRepositories) Bookings() BookingRepository { return &PGBookingRepository{db: r.db} }
func (r pgRepositories) Ledger() LedgerRepository { return &PGLedgerRepository{db: r.db} }
func (r pgRepositories) Attempts() AttemptRepository { return &PGAttemptRepository{db: r.db} }

type PGStore struct {
	pgRepositories
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pgRepositories: pgRepositories{db: pool}, pool: pool}
}

// WithinTx runs fn in a READ COMMITTED transaction. Seat and balance
// mutations are conditional UPDATEs, so the row lock they take plus the
// re-evaluated WHERE clause keeps concurrent writers from overselling.
func (s *PGStore) WithinTx(ctx context.Context, fn TxFunc) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, pgRepositories{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PGStore)(nil)
