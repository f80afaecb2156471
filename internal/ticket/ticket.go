package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
)

const layout = `AIRWALLET FLIGHT TICKET
PNR: {{.Booking.PNR}}
Status: {{.Booking.Status}}

Airline: {{.Flight.Airline}}
Flight No: {{.Flight.FlightNumber}}
From: {{.Flight.FromAirport}}
To: {{.Flight.ToAirport}}
Departure: {{fmtTime .Flight.DepartureTime}}
Arrival: {{fmtTime .Flight.ArrivalTime}}

Booked by: {{.User.Name}} <{{.User.Email}}>
Passengers:
{{range $i, $p := .Booking.Passengers}}  {{inc $i}}. {{$p.Name}} ({{$p.Age}} yrs, {{$p.Gender}})
{{end}}
Booking Date: {{fmtDate .Booking.CreatedAt}}
Total Paid: {{.Booking.TotalAmount}}

Thank you for flying with us!
`

var tmpl = template.Must(template.New("ticket").Funcs(template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"fmtTime": func(t time.Time) string { return t.UTC().Format("02 Jan 2006 15:04 MST") },
	"fmtDate": func(t time.Time) string { return t.UTC().Format("02 Jan 2006") },
}).Parse(layout))

// FileName is the download name for a booking's ticket.
func FileName(pnr string) string {
	return fmt.Sprintf("Ticket-%s.txt", pnr)
}

// Render produces the plain-text ticket for a booking loaded with its flight.
func Render(booking *domain.Booking, user *domain.User) ([]byte, error) {
	if booking == nil || booking.Flight == nil || user == nil {
		return nil, errors.New("ticket needs a booking with its flight and holder")
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Booking *domain.Booking
		Flight  *domain.Flight
		User    *domain.User
	}{booking, booking.Flight, user})
	if err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", booking.PNR, err)
	}
	return buf.Bytes(), nil
}
