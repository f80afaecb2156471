package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	bookingColumns = `id, pnr, user_id, flight_id, passengers, total_amount, status, created_at, updated_at`

	pgUniqueViolation = "23505"
	pgPNRConstraint   = "bookings_pnr_key"
)

type PGBookingRepository struct {
	db dbtx
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b          domain.Booking
		passengers []byte
	)
	if err := row.Scan(&b.ID, &b.PNR, &b.UserID, &b.FlightID, &passengers, &b.TotalAmount, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passengers, &b.Passengers); err != nil {
		return nil, fmt.Errorf("decode passengers of %s: %w", b.PNR, err)
	}
	return &b, nil
}

// Create inserts the booking under a savepoint so a PNR clash leaves the
// surrounding transaction usable for a retry with a fresh code.
func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	passengers, err := json.Marshal(b.Passengers)
	if err != nil {
		return fmt.Errorf("encode passengers: %w", err)
	}

	sp, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer sp.Rollback(ctx)

	err = sp.QueryRow(ctx, `INSERT INTO bookings (pnr, user_id, flight_id, passengers, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		b.PNR, b.UserID, b.FlightID, string(passengers), b.TotalAmount, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == pgPNRConstraint {
			return ErrPNRTaken
		}
		return err
	}

	return sp.Commit(ctx)
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) MarkCancelled(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now()
		WHERE pnr=$1 AND status=$3
		RETURNING `+bookingColumns, pnr, domain.BookingStatusCancelled, domain.BookingStatusConfirmed))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err := r.GetByPNR(ctx, pnr); err != nil {
		return nil, err
	}
	return nil, domain.ErrAlreadyCancelled
}

var _ BookingRepository = (*PGBookingRepository)(nil)
