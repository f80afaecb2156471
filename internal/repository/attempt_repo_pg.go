package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAttemptRepository struct {
	db dbtx
}

func NewAttemptRepository(db *pgxpool.Pool) AttemptRepository {
	return &PGAttemptRepository{db: db}
}

func (r *PGAttemptRepository) Record(ctx context.Context, a *domain.BookingAttempt) error {
	return r.db.QueryRow(ctx, `INSERT INTO booking_attempts (user_id, flight_id, attempted_at)
		VALUES ($1, $2, $3)
		RETURNING id`, a.UserID, a.FlightID, a.AttemptedAt).Scan(&a.ID)
}

func (r *PGAttemptRepository) CountSince(ctx context.Context, userID, flightID int64, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM booking_attempts
		WHERE user_id=$1 AND flight_id=$2 AND attempted_at >= $3`, userID, flightID, since).Scan(&n)
	return n, err
}

func (r *PGAttemptRepository) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM booking_attempts WHERE attempted_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ AttemptRepository = (*PGAttemptRepository)(nil)
