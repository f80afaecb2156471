package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airwallet/internal/attempts"
	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/kafka"
	"github.com/Domenick1991/airwallet/internal/pricing"
	"github.com/Domenick1991/airwallet/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPNRMaxAttempts = 5

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	CancelBooking(ctx context.Context, userID int64, pnr string) (*CancelBookingResult, error)
	GetBooking(ctx context.Context, userID int64, pnr string) (*domain.Booking, error)
	GetTicket(ctx context.Context, userID int64, pnr string) (*domain.Booking, *domain.User, error)
	ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// FlightCache is dropped whenever seat counts change.
type FlightCache interface {
	InvalidateFlights(ctx context.Context) error
}

type PassengerInput struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

type CreateBookingInput struct {
	UserID     int64
	FlightID   int64
	Passengers []PassengerInput
}

type CreateBookingResult struct {
	Booking      *domain.Booking
	SurgeApplied bool
	PricePerSeat int64
}

type CancelBookingResult struct {
	Booking         *domain.Booking
	RefundAmount    int64
	DeductionAmount int64
	NewBalance      int64
}

type BookingService struct {
	store              repository.Store
	tracker            *attempts.Tracker
	cache              FlightCache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	pnrMaxAttempts     int
	newPNR             func() string
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithFlightCache(cache FlightCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithPNRGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newPNR = gen
	}
}

func WithPNRMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.pnrMaxAttempts = n
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(store repository.Store, producer Producer, bookingTopic string, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		store:          store,
		tracker:        attempts.NewTracker(store.Attempts()),
		producer:       producer,
		bookingTopic:   bookingTopic,
		pnrMaxAttempts: defaultPNRMaxAttempts,
		newPNR:         NewPNR,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// NewPNR returns eight uppercase alphanumerics taken from a random UUID.
func NewPNR() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if input.FlightID <= 0 {
		return nil, domain.ErrInvalidFlightID
	}
	passengers, err := sanitizePassengers(input.Passengers)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	// Recorded before anything can fail so rejected requests still count toward surge.
	if err := s.tracker.Record(ctx, input.UserID, input.FlightID, now); err != nil {
		return nil, s.internal("record booking attempt", err, zap.Int64("user_id", input.UserID), zap.Int64("flight_id", input.FlightID))
	}

	flight, err := s.store.Flights().GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, s.internal("load flight", err, zap.Int64("flight_id", input.FlightID))
	}
	seats := len(passengers)
	if flight.AvailableSeats < seats {
		return nil, domain.ErrInsufficientSeats
	}

	recent, err := s.tracker.CountRecent(ctx, input.UserID, input.FlightID, now)
	if err != nil {
		return nil, s.internal("count booking attempts", err, zap.Int64("user_id", input.UserID))
	}
	quote, err := pricing.Price(flight.ReferenceFare(), recent)
	if err != nil {
		return nil, err
	}
	total, err := pricing.Total(quote.PricePerSeat, seats)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, input.UserID)
	if err != nil {
		return nil, s.internal("load user", err, zap.Int64("user_id", input.UserID))
	}
	if user.WalletBalance < total {
		return nil, &domain.InsufficientFundsError{Balance: user.WalletBalance, Required: total}
	}

	booking := &domain.Booking{
		UserID:      input.UserID,
		FlightID:    flight.ID,
		Passengers:  passengers,
		TotalAmount: total,
		Status:      domain.BookingStatusConfirmed,
	}

	var balance int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// User row first, then flight row. Cancellation takes them in the same order.
		var err error
		balance, err = repos.Users().Debit(ctx, input.UserID, total)
		if err != nil {
			return err
		}
		if err := repos.Ledger().Append(ctx, &domain.WalletTransaction{
			UserID:      input.UserID,
			Amount:      total,
			Type:        domain.TransactionDebit,
			Description: fmt.Sprintf("Booking for flight %s", flight.FlightNumber),
		}); err != nil {
			return err
		}
		if err := repos.Flights().ReserveSeats(ctx, flight.ID, seats); err != nil {
			return err
		}
		return s.insertWithPNR(ctx, repos.Bookings(), booking)
	})
	if err != nil {
		return nil, s.internal("create booking", err, zap.Int64("user_id", input.UserID), zap.Int64("flight_id", flight.ID))
	}

	flight.AvailableSeats -= seats
	booking.Flight = flight

	zap.L().Info("Booking created",
		zap.String("pnr", booking.PNR),
		zap.Int64("user_id", booking.UserID),
		zap.Int64("flight_id", booking.FlightID),
		zap.Int("seats", seats),
		zap.Int64("total", total),
		zap.Bool("surge", quote.SurgeApplied))

	s.invalidateFlights(ctx)
	event := kafka.NewEvent(kafka.EventBookingCreated, booking.UserID)
	event.PNR = booking.PNR
	event.FlightID = flight.ID
	event.FlightNumber = flight.FlightNumber
	event.Seats = seats
	event.Amount = total
	event.Surge = quote.SurgeApplied
	event.Balance = balance
	event.Status = string(booking.Status)
	s.publish(ctx, event)

	return &CreateBookingResult{
		Booking:      booking,
		SurgeApplied: quote.SurgeApplied,
		PricePerSeat: quote.PricePerSeat,
	}, nil
}

// insertWithPNR retries with a fresh PNR while the unique index rejects it.
func (s *BookingService) insertWithPNR(ctx context.Context, bookings repository.BookingRepository, booking *domain.Booking) error {
	for i := 0; i < s.pnrMaxAttempts; i++ {
		booking.PNR = s.newPNR()
		err := bookings.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrPNRTaken) {
			return err
		}
		zap.L().Warn("PNR collision, regenerating", zap.String("pnr", booking.PNR), zap.Int("attempt", i+1))
	}
	booking.PNR = ""
	return domain.ErrPNRCollision
}

func (s *BookingService) CancelBooking(ctx context.Context, userID int64, pnr string) (*CancelBookingResult, error) {
	current, err := s.ownedBooking(ctx, userID, pnr)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrAlreadyCancelled
	}

	refund, deduction := pricing.Refund(current.TotalAmount)

	var (
		cancelled *domain.Booking
		balance   int64
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// The status flip is conditional, so a concurrent cancel loses here
		// before any money or seats move.
		var err error
		cancelled, err = repos.Bookings().MarkCancelled(ctx, current.PNR)
		if err != nil {
			return err
		}
		balance, err = repos.Users().Credit(ctx, cancelled.UserID, refund)
		if err != nil {
			return err
		}
		if err := repos.Ledger().Append(ctx, &domain.WalletTransaction{
			UserID:      cancelled.UserID,
			Amount:      refund,
			Type:        domain.TransactionCredit,
			Description: fmt.Sprintf("Refund for cancelled booking %s (20%% cancellation fee applied)", cancelled.PNR),
		}); err != nil {
			return err
		}
		return repos.Flights().ReleaseSeats(ctx, cancelled.FlightID, cancelled.Seats())
	})
	if err != nil {
		return nil, s.internal("cancel booking", err, zap.String("pnr", pnr), zap.Int64("user_id", userID))
	}

	zap.L().Info("Booking cancelled",
		zap.String("pnr", cancelled.PNR),
		zap.Int64("user_id", userID),
		zap.Int64("refund", refund),
		zap.Int64("deduction", deduction))

	s.invalidateFlights(ctx)
	event := kafka.NewEvent(kafka.EventBookingCancelled, userID)
	event.PNR = cancelled.PNR
	event.FlightID = cancelled.FlightID
	event.Seats = cancelled.Seats()
	event.Amount = cancelled.TotalAmount
	event.Refund = refund
	event.Balance = balance
	event.Status = string(cancelled.Status)
	s.publish(ctx, event)

	return &CancelBookingResult{
		Booking:         cancelled,
		RefundAmount:    refund,
		DeductionAmount: deduction,
		NewBalance:      balance,
	}, nil
}

// GetBooking returns the caller's booking with its flight populated.
func (s *BookingService) GetBooking(ctx context.Context, userID int64, pnr string) (*domain.Booking, error) {
	booking, err := s.ownedBooking(ctx, userID, pnr)
	if err != nil {
		return nil, err
	}
	flight, err := s.store.Flights().GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, s.internal("load booking flight", err, zap.String("pnr", pnr))
	}
	booking.Flight = flight
	return booking, nil
}

func (s *BookingService) GetTicket(ctx context.Context, userID int64, pnr string) (*domain.Booking, *domain.User, error) {
	booking, err := s.GetBooking(ctx, userID, pnr)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, s.internal("load ticket holder", err, zap.Int64("user_id", userID))
	}
	return booking, user, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings, err := s.store.Bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, s.internal("list bookings", err, zap.Int64("user_id", userID))
	}

	flights := make(map[int64]*domain.Flight)
	for i := range bookings {
		id := bookings[i].FlightID
		flight, ok := flights[id]
		if !ok {
			flight, err = s.store.Flights().GetByID(ctx, id)
			if err != nil {
				return nil, s.internal("load booking flight", err, zap.Int64("flight_id", id))
			}
			flights[id] = flight
		}
		bookings[i].Flight = flight
	}
	return bookings, nil
}

func (s *BookingService) ownedBooking(ctx context.Context, userID int64, pnr string) (*domain.Booking, error) {
	pnr = strings.ToUpper(strings.TrimSpace(pnr))
	if pnr == "" {
		return nil, domain.ErrBookingNotFound
	}
	booking, err := s.store.Bookings().GetByPNR(ctx, pnr)
	if err != nil {
		return nil, s.internal("load booking", err, zap.String("pnr", pnr))
	}
	if booking.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return booking, nil
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		zap.L().Warn("Failed to invalidate flights cache", zap.Error(err))
	}
}

// publish never fails the caller: the transaction has already committed.
func (s *BookingService) publish(ctx context.Context, event kafka.Event) {
	if s.producer == nil {
		return
	}
	for _, topic := range []string{s.bookingTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.Key(), event); err != nil {
			zap.L().Warn("Failed to publish event",
				zap.String("topic", topic),
				zap.String("type", event.Type),
				zap.String("pnr", event.PNR),
				zap.Error(err))
		}
	}
}

// internal passes business errors through and logs and wraps the rest.
func (s *BookingService) internal(msg string, err error, fields ...zap.Field) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	zap.L().Error("Failed to "+msg, append(fields, zap.Error(err))...)
	return domain.Internal(err)
}

func sanitizePassengers(in []PassengerInput) ([]domain.Passenger, error) {
	if len(in) == 0 {
		return nil, domain.ErrInvalidPassengerData
	}
	out := make([]domain.Passenger, 0, len(in))
	for _, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, domain.ErrInvalidPassengerData
		}
		age, err := parseAge(p.Age)
		if err != nil {
			return nil, domain.ErrInvalidPassengerData
		}
		gender := strings.TrimSpace(p.Gender)
		if gender == "" {
			gender = domain.DefaultGender
		}
		out = append(out, domain.Passenger{Name: name, Age: age, Gender: gender})
	}
	return out, nil
}

// parseAge accepts any finite positive number and keeps it as given.
func parseAge(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("age %q out of range", raw)
	}
	return v, nil
}

var _ BookingUseCase = (*BookingService)(nil)
