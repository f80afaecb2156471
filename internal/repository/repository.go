package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
)

// ErrPNRTaken is returned by BookingRepository.Create when the PNR is already
// used by another booking.
var ErrPNRTaken = errors.New("pnr already taken")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Debit subtracts amount only if the balance covers it and returns the new
	// balance. A refused debit returns *domain.InsufficientFundsError.
	Debit(ctx context.Context, userID, amount int64) (int64, error)
	// Credit atomically increments the balance and returns the new balance.
	Credit(ctx context.Context, userID, amount int64) (int64, error)
}

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// ReserveSeats decrements available seats only if at least n remain.
	ReserveSeats(ctx context.Context, flightID int64, n int) error
	// ReleaseSeats increments available seats, never beyond total seats.
	ReleaseSeats(ctx context.Context, flightID int64, n int) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	// MarkCancelled moves a Confirmed booking to Cancelled and returns it.
	MarkCancelled(ctx context.Context, pnr string) (*domain.Booking, error)
}

type LedgerRepository interface {
	Append(ctx context.Context, tx *domain.WalletTransaction) error
	ListByUser(ctx context.Context, userID int64) ([]domain.WalletTransaction, error)
}

type AttemptRepository interface {
	Record(ctx context.Context, attempt *domain.BookingAttempt) error
	CountSince(ctx context.Context, userID, flightID int64, since time.Time) (int, error)
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}

type Repositories interface {
	Users() UserRepository
	Flights() FlightRepository
	Bookings() BookingRepository
	Ledger() LedgerRepository
	Attempts() AttemptRepository
}

// TxFunc runs inside a transaction. Returning an error rolls back every
// mutation made through repos.
type TxFunc func(ctx context.Context, repos Repositories) error

type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn TxFunc) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
