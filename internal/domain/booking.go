package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

const DefaultGender = "Other"

type Passenger struct {
	Name   string  `json:"name"`
	Age    float64 `json:"age"`
	Gender string  `json:"gender"`
}

type Booking struct {
	ID          int64         `json:"id"`
	PNR         string        `json:"pnr"`
	UserID      int64         `json:"user_id"`
	FlightID    int64         `json:"flight_id"`
	Passengers  []Passenger   `json:"passengers"`
	TotalAmount int64         `json:"total_amount"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Flight is populated by read paths that join the catalog.
	Flight *Flight `json:"flight,omitempty"`
}

// Seats is the number of seats the booking holds.
func (b *Booking) Seats() int {
	return len(b.Passengers)
}

// BookingAttempt is one booking request, successful or not.
type BookingAttempt struct {
	ID          int64
	UserID      int64
	FlightID    int64
	AttemptedAt time.Time
}
