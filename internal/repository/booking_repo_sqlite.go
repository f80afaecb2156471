package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jmoiron/sqlx"
)

type bookingRow struct {
	ID          int64  `db:"id"`
	PNR         string `db:"pnr"`
	UserID      int64  `db:"user_id"`
	FlightID    int64  `db:"flight_id"`
	Passengers  string `db:"passengers"`
	TotalAmount int64  `db:"total_amount"`
	Status      string `db:"status"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r bookingRow) toDomain() (*domain.Booking, error) {
	b := &domain.Booking{
		ID:          r.ID,
		PNR:         r.PNR,
		UserID:      r.UserID,
		FlightID:    r.FlightID,
		TotalAmount: r.TotalAmount,
		Status:      domain.BookingStatus(r.Status),
		CreatedAt:   fromNanos(r.CreatedAt),
		UpdatedAt:   fromNanos(r.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(r.Passengers), &b.Passengers); err != nil {
		return nil, fmt.Errorf("decode passengers of %s: %w", r.PNR, err)
	}
	return b, nil
}

type SQLiteBookingRepository struct {
	db sqlx.ExtContext
}

func (r *SQLiteBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	passengers, err := json.Marshal(b.Passengers)
	if err != nil {
		return fmt.Errorf("encode passengers: %w", err)
	}

	now := time.Now().UTC()
	err = sqlx.GetContext(ctx, r.db, &b.ID, `INSERT INTO bookings (pnr, user_id, flight_id, passengers, total_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		b.PNR, b.UserID, b.FlightID, string(passengers), b.TotalAmount, string(b.Status), toNanos(now), toNanos(now))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPNRTaken
		}
		return err
	}
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

func (r *SQLiteBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	var row bookingRow
	if err := sqlx.GetContext(ctx, r.db, &row, `SELECT * FROM bookings WHERE pnr=?`, pnr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *SQLiteBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT * FROM bookings WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID); err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

func (r *SQLiteBookingRepository) MarkCancelled(ctx context.Context, pnr string) (*domain.Booking, error) {
	var row bookingRow
	err := sqlx.GetContext(ctx, r.db, &row, `UPDATE bookings SET status=?, updated_at=?
		WHERE pnr=? AND status=?
		RETURNING *`, string(domain.BookingStatusCancelled), toNanos(time.Now()), pnr, string(domain.BookingStatusConfirmed))
	if err == nil {
		return row.toDomain()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := r.GetByPNR(ctx, pnr); err != nil {
		return nil, err
	}
	return nil, domain.ErrAlreadyCancelled
}

var _ BookingRepository = (*SQLiteBookingRepository)(nil)
