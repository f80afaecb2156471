package kafka

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventFundsAdded       = "funds_added"
)

// Event is the payload published after a booking or wallet change commits.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	UserID       int64     `json:"user_id"`
	PNR          string    `json:"pnr,omitempty"`
	FlightID     int64     `json:"flight_id,omitempty"`
	FlightNumber string    `json:"flight_number,omitempty"`
	Seats        int       `json:"seats,omitempty"`
	Amount       int64     `json:"amount"`
	Refund       int64     `json:"refund,omitempty"`
	Surge        bool      `json:"surge,omitempty"`
	Balance      int64     `json:"balance"`
	Status       string    `json:"status,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, userID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// Key keeps a booking's events on one partition.
func (e Event) Key() string {
	if e.PNR != "" {
		return e.PNR
	}
	return e.ID
}
