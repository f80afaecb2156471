package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type sqliteRepositories struct {
	db sqlx.ExtContext
}

func (r sqliteRepositories) Users() UserRepository { return &SQLiteUserRepository{db: r.db} }
func (r sqliteRepositories) Flights() FlightRepository { return &SQLiteFlightRepository{db: r.db} }
func (r sqliteRepositories) Bookings() BookingRepository { return &SQLiteBookingRepository{db: r.db} }
func (r sqliteRepositories) Ledger() LedgerRepository { return &SQLiteLedgerRepository{db: r.db} }
func (r sqliteRepositories) Attempts() AttemptRepository { return &SQLiteAttemptRepository{db: r.db} }

// SQLiteStore is the embedded backend. Transactions start with BEGIN
// IMMEDIATE, so writers are serialized by the database lock.
type SQLiteStore struct {
	sqliteRepositories
	db *sqlx.DB
}

// NewSQLiteStore opens path (":memory:" for a private in-memory database).
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	dsn := path
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"
	if path != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps a :memory: database shared by every caller and
	// serializes writers on file databases too.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{sqliteRepositories: sqliteRepositories{db: db}, db: db}, nil
}

func (s *SQLiteStore) WithinTx(ctx context.Context, fn TxFunc) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, sqliteRepositories{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

var _ Store = (*SQLiteStore)(nil)
