package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/jmoiron/sqlx"
)

type flightRow struct {
	ID             int64  `db:"id"`
	FlightNumber   string `db:"flight_number"`
	Airline        string `db:"airline"`
	FromAirport    string `db:"from_airport"`
	ToAirport      string `db:"to_airport"`
	DepartureTime  int64  `db:"departure_time"`
	ArrivalTime    int64  `db:"arrival_time"`
	TotalSeats     int    `db:"total_seats"`
	AvailableSeats int    `db:"available_seats"`
	BasePrice      int64  `db:"base_price"`
	CurrentPrice   int64  `db:"current_price"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

func (r flightRow) toDomain() domain.Flight {
	return domain.Flight{
		ID:             r.ID,
		FlightNumber:   r.FlightNumber,
		Airline:        r.Airline,
		FromAirport:    r.FromAirport,
		ToAirport:      r.ToAirport,
		DepartureTime:  fromNanos(r.DepartureTime),
		ArrivalTime:    fromNanos(r.ArrivalTime),
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		BasePrice:      r.BasePrice,
		CurrentPrice:   r.CurrentPrice,
		CreatedAt:      fromNanos(r.CreatedAt),
		UpdatedAt:      fromNanos(r.UpdatedAt),
	}
}

type SQLiteFlightRepository struct {
	db sqlx.ExtContext
}

func (r *SQLiteFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	now := time.Now().UTC()
	err := sqlx.GetContext(ctx, r.db, &f.ID, `INSERT INTO flights (flight_number, airline, from_airport, to_airport, departure_time, arrival_time,
		total_seats, available_seats, base_price, current_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		f.FlightNumber, f.Airline, f.FromAirport, f.ToAirport, toNanos(f.DepartureTime), toNanos(f.ArrivalTime),
		f.TotalSeats, f.AvailableSeats, f.BasePrice, f.CurrentPrice, toNanos(now), toNanos(now))
	if err != nil {
		return err
	}
	f.CreatedAt, f.UpdatedAt = now, now
	return nil
}

func (r *SQLiteFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	var rows []flightRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT * FROM flights ORDER BY departure_time`); err != nil {
		return nil, err
	}
	flights := make([]domain.Flight, 0, len(rows))
	for _, row := range rows {
		flights = append(flights, row.toDomain())
	}
	return flights, nil
}

func (r *SQLiteFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var row flightRow
	if err := sqlx.GetContext(ctx, r.db, &row, `SELECT * FROM flights WHERE id=?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	f := row.toDomain()
	return &f, nil
}

func (r *SQLiteFlightRepository) ReserveSeats(ctx context.Context, flightID int64, n int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE flights SET available_seats = available_seats - ?, updated_at = ?
		WHERE id=? AND available_seats >= ?`, n, toNanos(time.Now()), flightID, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, flightID); err != nil {
			return err
		}
		return domain.ErrInsufficientSeats
	}
	return nil
}

func (r *SQLiteFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, n int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE flights SET available_seats = available_seats + ?, updated_at = ?
		WHERE id=? AND available_seats + ? <= total_seats`, n, toNanos(time.Now()), flightID, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, flightID); err != nil {
			return err
		}
		return domain.ErrSeatCapacityExceeded
	}
	return nil
}

var _ FlightRepository = (*SQLiteFlightRepository)(nil)
