package attempts

import (
	"context"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/repository"
)

// Window is the trailing interval booking attempts are counted over.
const Window = 5 * time.Minute

// Tracker logs booking attempts per (user, flight) and counts the recent ones.
type Tracker struct {
	repo repository.AttemptRepository
}

func NewTracker(repo repository.AttemptRepository) *Tracker {
	return &Tracker{repo: repo}
}

func (t *Tracker) Record(ctx context.Context, userID, flightID int64, now time.Time) error {
	return t.repo.Record(ctx, &domain.BookingAttempt{UserID: userID, FlightID: flightID, AttemptedAt: now})
}

// CountRecent returns the attempts for exactly this (user, flight) pair with a
// timestamp at or after now-Window.
func (t *Tracker) CountRecent(ctx context.Context, userID, flightID int64, now time.Time) (int, error) {
	return t.repo.CountSince(ctx, userID, flightID, now.Add(-Window))
}

// Prune drops attempts older than retention. Retention shorter than Window is
// raised to Window so counting is never affected.
func (t *Tracker) Prune(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	if retention < Window {
		retention = Window
	}
	return t.repo.PruneBefore(ctx, now.Add(-retention))
}
