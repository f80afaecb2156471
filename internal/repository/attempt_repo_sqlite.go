package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jmoiron/sqlx"
)

type SQLiteAttemptRepository struct {
	db sqlx.ExtContext
}

func (r *SQLiteAttemptRepository) Record(ctx context.Context, a *domain.BookingAttempt) error {
	return sqlx.GetContext(ctx, r.db, &a.ID, `INSERT INTO booking_attempts (user_id, flight_id, attempted_at)
		VALUES (?, ?, ?) RETURNING id`, a.UserID, a.FlightID, toNanos(a.AttemptedAt))
}

func (r *SQLiteAttemptRepository) CountSince(ctx context.Context, userID, flightID int64, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT count(*) FROM booking_attempts
		WHERE user_id=? AND flight_id=? AND attempted_at >= ?`, userID, flightID, toNanos(since))
	return n, err
}

func (r *SQLiteAttemptRepository) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM booking_attempts WHERE attempted_at < ?`, toNanos(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ AttemptRepository = (*SQLiteAttemptRepository)(nil)
