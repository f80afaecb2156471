package domain

import "time"

type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Airline        string    `json:"airline"`
	FromAirport    string    `json:"from_airport"`
	ToAirport      string    `json:"to_airport"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	BasePrice      int64     `json:"base_price"`
	CurrentPrice   int64     `json:"current_price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReferenceFare is the fare bookings are priced from: the advisory current
// price when set, otherwise the base price.
func (f *Flight) ReferenceFare() int64 {
	if f.CurrentPrice > 0 {
		return f.CurrentPrice
	}
	return f.BasePrice
}
