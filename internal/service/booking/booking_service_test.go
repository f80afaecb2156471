package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/kafka"
	"github.com/Domenick1991/airwallet/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockFlightCache struct {
	mock.Mock
}

func (m *MockFlightCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func newService(store repository.Store, opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{WithClock(func() time.Time { return testNow })}, opts...)
	return NewBookingService(store, nil, "", opts...)
}

func seedUser(t *testing.T, store repository.Store, balance int64) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Jane Doe", Email: uuid.NewString() + "@example.com", WalletBalance: balance}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedFlight(t *testing.T, store repository.Store, seats int, basePrice, currentPrice int64) *domain.Flight {
	t.Helper()
	f := &domain.Flight{
		FlightNumber:   "AI-101",
		Airline:        "Air India",
		FromAirport:    "Delhi",
		ToAirport:      "Bengaluru",
		DepartureTime:  time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC),
		ArrivalTime:    time.Date(2026, 2, 1, 8, 45, 0, 0, time.UTC),
		TotalSeats:     seats,
		AvailableSeats: seats,
		BasePrice:      basePrice,
		CurrentPrice:   currentPrice,
	}
	require.NoError(t, store.Flights().Create(context.Background(), f))
	return f
}

func passengers(n int) []PassengerInput {
	out := make([]PassengerInput, n)
	for i := range out {
		out[i] = PassengerInput{Name: "Passenger", Age: "30", Gender: "Female"}
	}
	return out
}

func availableSeats(t *testing.T, store repository.Store, flightID int64) int {
	t.Helper()
	f, err := store.Flights().GetByID(context.Background(), flightID)
	require.NoError(t, err)
	return f.AvailableSeats
}

func balanceOf(t *testing.T, store repository.Store, userID int64) int64 {
	t.Helper()
	u, err := store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.WalletBalance
}

func ledgerOf(t *testing.T, store repository.Store, userID int64) []domain.WalletTransaction {
	t.Helper()
	entries, err := store.Ledger().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return entries
}

func ledgerSum(entries []domain.WalletTransaction) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Signed()
	}
	return sum
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)

	mockProducer := &MockProducer{}
	mockCache := &MockFlightCache{}
	mockProducer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.AnythingOfType("kafka.Event")).Return(nil).Once()
	mockProducer.On("Publish", mock.Anything, "notifications", mock.Anything, mock.AnythingOfType("kafka.Event")).Return(nil).Once()
	mockCache.On("InvalidateFlights", mock.Anything).Return(nil).Once()

	service := NewBookingService(store, mockProducer, "booking-events",
		WithNotificationsTopic("notifications"),
		WithFlightCache(mockCache),
		WithClock(func() time.Time { return testNow }))

	result, err := service.CreateBooking(ctx, CreateBookingInput{
		UserID:   user.ID,
		FlightID: flight.ID,
		Passengers: []PassengerInput{
			{Name: "  Asha Rao ", Age: "34", Gender: "Female"},
			{Name: "Ravi Rao", Age: "7.5"},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.SurgeApplied)
	assert.Equal(t, int64(4500), result.PricePerSeat)
	assert.Equal(t, int64(9000), result.Booking.TotalAmount)
	assert.Equal(t, domain.BookingStatusConfirmed, result.Booking.Status)
	assert.Len(t, result.Booking.PNR, 8)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, result.Booking.PNR)
	assert.Equal(t, []domain.Passenger{
		{Name: "Asha Rao", Age: 34, Gender: "Female"},
		{Name: "Ravi Rao", Age: 7.5, Gender: domain.DefaultGender},
	}, result.Booking.Passengers)
	require.NotNil(t, result.Booking.Flight)
	assert.Equal(t, 8, result.Booking.Flight.AvailableSeats)

	stored, err := store.Bookings().GetByPNR(ctx, result.Booking.PNR)
	require.NoError(t, err)
	assert.Equal(t, result.Booking.Passengers, stored.Passengers)

	assert.Equal(t, int64(91000), balanceOf(t, store, user.ID))
	assert.Equal(t, 8, availableSeats(t, store, flight.ID))

	entries := ledgerOf(t, store, user.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.TransactionDebit, entries[0].Type)
	assert.Equal(t, int64(9000), entries[0].Amount)
	assert.Equal(t, "Booking for flight AI-101", entries[0].Description)

	stored, err = store.Bookings().GetByPNR(ctx, result.Booking.PNR)
	require.NoError(t, err)
	assert.Equal(t, result.Booking.ID, stored.ID)

	mockProducer.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestBookingService_CreateBooking_PublishesCreatedEvent(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)

	mockProducer := &MockProducer{}
	var published kafka.Event
	mockProducer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(3).(kafka.Event) }).
		Return(nil).Once()

	service := NewBookingService(store, mockProducer, "booking-events", WithClock(func() time.Time { return testNow }))
	result, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)

	assert.Equal(t, kafka.EventBookingCreated, published.Type)
	assert.Equal(t, result.Booking.PNR, published.PNR)
	assert.Equal(t, "AI-101", published.FlightNumber)
	assert.Equal(t, int64(4500), published.Amount)
	assert.Equal(t, int64(95500), published.Balance)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_PublishFailureKeepsBooking(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)

	mockProducer := &MockProducer{}
	mockProducer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	mockCache := &MockFlightCache{}
	mockCache.On("InvalidateFlights", mock.Anything).Return(errors.New("redis down"))

	service := NewBookingService(store, mockProducer, "booking-events",
		WithFlightCache(mockCache),
		WithClock(func() time.Time { return testNow }))

	result, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Booking.PNR)
	assert.Equal(t, int64(95500), balanceOf(t, store, user.ID))
}

func TestBookingService_CreateBooking_InvalidPassengers(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)

	cases := []struct {
		name  string
		input []PassengerInput
	}{
		{"no passengers", nil},
		{"blank name", []PassengerInput{{Name: "   ", Age: "30"}}},
		{"age not a number", []PassengerInput{{Name: "A", Age: "thirty"}}},
		{"zero age", []PassengerInput{{Name: "A", Age: "0"}}},
		{"negative age", []PassengerInput{{Name: "A", Age: "-4"}}},
		{"NaN age", []PassengerInput{{Name: "A", Age: "NaN"}}},
		{"infinite age", []PassengerInput{{Name: "A", Age: "Inf"}}},
		{"one bad among good", []PassengerInput{{Name: "A", Age: "30"}, {Name: "", Age: "30"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: tc.input})
			assert.ErrorIs(t, err, domain.ErrInvalidPassengerData)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}

	count, err := store.Attempts().CountSince(context.Background(), user.ID, flight.ID, testNow.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBookingService_CreateBooking_MissingFlightID(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	service := newService(store)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, Passengers: passengers(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidFlightID)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	count, err := store.Attempts().CountSince(context.Background(), user.ID, 0, testNow.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBookingService_CreateBooking_FlightNotFoundStillRecordsAttempt(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	service := newService(store)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: 404, Passengers: passengers(1)})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	count, err := store.Attempts().CountSince(context.Background(), user.ID, 404, testNow.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookingService_CreateBooking_InsufficientSeats(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 2, 4500, 4500)
	service := newService(store)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(3)})
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
	assert.Equal(t, 2, availableSeats(t, store, flight.ID))
	assert.Equal(t, int64(100000), balanceOf(t, store, user.ID))
}

func TestBookingService_CreateBooking_InvalidFare(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 2, 0, 0)
	service := newService(store)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidFare)
}

func TestBookingService_CreateBooking_FallsBackToBasePrice(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 5, 5200, 0)
	service := newService(store)

	result, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(5200), result.PricePerSeat)
}

func TestBookingService_CreateBooking_UsesCurrentPrice(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 5, 5200, 6100)
	service := newService(store)

	result, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(6100), result.PricePerSeat)
}

func TestBookingService_CreateBooking_UserNotFound(t *testing.T) {
	store := setupStore(t)
	flight := seedFlight(t, store, 5, 4500, 4500)
	service := newService(store)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 999, FlightID: flight.ID, Passengers: passengers(1)})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, 5, availableSeats(t, store, flight.ID))
}

func TestBookingService_CreateBooking_InsufficientFundsReportsBalance(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 8000)
	flight := seedFlight(t, store, 5, 4500, 4500)
	service := newService(store)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(2)})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var fe *domain.InsufficientFundsError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(8000), fe.Balance)
	assert.Equal(t, int64(9000), fe.Required)

	assert.Equal(t, int64(8000), balanceOf(t, store, user.ID))
	assert.Equal(t, 5, availableSeats(t, store, flight.ID))
	assert.Empty(t, ledgerOf(t, store, user.ID))
}

func TestBookingService_SurgeOnThirdAttempt(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	other := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		result, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
		require.NoError(t, err)
		assert.False(t, result.SurgeApplied, "attempt %d", i)
		assert.Equal(t, int64(4500), result.PricePerSeat)
	}

	result, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(2)})
	require.NoError(t, err)
	assert.True(t, result.SurgeApplied)
	assert.Equal(t, int64(4950), result.PricePerSeat)
	assert.Equal(t, int64(9900), result.Booking.TotalAmount)

	// Attempts on another flight are counted separately.
	result, err = service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: other.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	assert.False(t, result.SurgeApplied)
}

func TestBookingService_FailedAttemptsCountTowardSurge(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 4600)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(2)})
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	}

	// The surged fare no longer fits the wallet.
	_, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	var fe *domain.InsufficientFundsError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(4950), fe.Required)
}

func TestBookingService_SurgeWindowExpires(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	ctx := context.Background()

	now := testNow
	service := NewBookingService(store, nil, "", WithClock(func() time.Time { return now }))

	for i := 0; i < 2; i++ {
		_, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
		require.NoError(t, err)
	}

	now = testNow.Add(5*time.Minute + time.Second)
	result, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	assert.False(t, result.SurgeApplied)
}

func TestBookingService_CancelBooking(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4950, 4950)

	mockCache := &MockFlightCache{}
	mockCache.On("InvalidateFlights", mock.Anything).Return(nil).Twice()
	service := newService(store, WithFlightCache(mockCache))

	created, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(2)})
	require.NoError(t, err)
	require.Equal(t, int64(9900), created.Booking.TotalAmount)

	result, err := service.CancelBooking(ctx, user.ID, created.Booking.PNR)
	require.NoError(t, err)

	assert.Equal(t, int64(7920), result.RefundAmount)
	assert.Equal(t, int64(1980), result.DeductionAmount)
	assert.Equal(t, created.Booking.TotalAmount, result.RefundAmount+result.DeductionAmount)
	assert.Equal(t, int64(100000-9900+7920), result.NewBalance)
	assert.Equal(t, domain.BookingStatusCancelled, result.Booking.Status)

	assert.Equal(t, result.NewBalance, balanceOf(t, store, user.ID))
	assert.Equal(t, 10, availableSeats(t, store, flight.ID))

	entries := ledgerOf(t, store, user.ID)
	require.Len(t, entries, 2)
	var credit domain.WalletTransaction
	for _, e := range entries {
		if e.Type == domain.TransactionCredit {
			credit = e
		}
	}
	assert.Equal(t, int64(7920), credit.Amount)
	assert.Contains(t, credit.Description, created.Booking.PNR)
	assert.Contains(t, credit.Description, "cancellation fee")

	mockCache.AssertExpectations(t)
}

func TestBookingService_CancelBooking_Twice(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)

	created, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	_, err = service.CancelBooking(ctx, user.ID, created.Booking.PNR)
	require.NoError(t, err)

	balance := balanceOf(t, store, user.ID)
	seats := availableSeats(t, store, flight.ID)
	entries := len(ledgerOf(t, store, user.ID))

	for i := 0; i < 3; i++ {
		_, err = service.CancelBooking(ctx, user.ID, created.Booking.PNR)
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	}

	assert.Equal(t, balance, balanceOf(t, store, user.ID))
	assert.Equal(t, seats, availableSeats(t, store, flight.ID))
	assert.Len(t, ledgerOf(t, store, user.ID), entries)
}

func TestBookingService_CancelBooking_Errors(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, 100000)
	stranger := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)

	created, err := service.CreateBooking(ctx, CreateBookingInput{UserID: owner.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)

	_, err = service.CancelBooking(ctx, owner.ID, "NOPE0000")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = service.CancelBooking(ctx, stranger.ID, created.Booking.PNR)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

	stored, err := store.Bookings().GetByPNR(ctx, created.Booking.PNR)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Status)
}

func TestBookingService_ConcurrentCancelRefundsOnce(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)

	created, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(2)})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CancelBooking(ctx, user.ID, created.Booking.PNR)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 10, availableSeats(t, store, flight.ID))
	assert.Equal(t, int64(100000-9000+7200), balanceOf(t, store, user.ID))
}

func TestBookingService_PNRCollisionRegenerates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)

	codes := []string{"AAAA1111", "AAAA1111", "AAAA1111", "BBBB2222"}
	var mu sync.Mutex
	gen := func() string {
		mu.Lock()
		defer mu.Unlock()
		code := codes[0]
		codes = codes[1:]
		return code
	}
	service := newService(store, WithPNRGenerator(gen))

	first, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)
	second, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)

	assert.Equal(t, "AAAA1111", first.Booking.PNR)
	assert.Equal(t, "BBBB2222", second.Booking.PNR)

	bookings, err := store.Bookings().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestBookingService_PNRCollisionExhaustedRollsBack(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store, WithPNRGenerator(func() string { return "SAME0000" }), WithPNRMaxAttempts(3))

	_, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)

	_, err = service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(2)})
	assert.ErrorIs(t, err, domain.ErrPNRCollision)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	assert.Equal(t, int64(95500), balanceOf(t, store, user.ID))
	assert.Equal(t, 9, availableSeats(t, store, flight.ID))
	assert.Len(t, ledgerOf(t, store, user.ID), 1)
}

func TestBookingService_PNRsAreUnique(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	flight := seedFlight(t, store, 200, 100, 100)
	service := newService(store)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		user := seedUser(t, store, 1000)
		result, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
		require.NoError(t, err)
		assert.False(t, seen[result.Booking.PNR], "duplicate PNR %s", result.Booking.PNR)
		seen[result.Booking.PNR] = true
	}
}

func TestBookingService_NoOversellUnderConcurrency(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	const seats, requests = 5, 12
	flight := seedFlight(t, store, seats, 4500, 4500)
	service := newService(store)

	users := make([]*domain.User, requests)
	for i := range users {
		users[i] = seedUser(t, store, 10000)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := service.CreateBooking(ctx, CreateBookingInput{UserID: userID, FlightID: flight.ID, Passengers: passengers(1)})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, seats, succeeded)
	assert.Equal(t, 0, availableSeats(t, store, flight.ID))

	charged := 0
	for _, u := range users {
		if balanceOf(t, store, u.ID) == 10000-4500 {
			charged++
		}
	}
	assert.Equal(t, seats, charged)
}

func TestBookingService_NoOverdraftUnderConcurrency(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 10000)
	flights := make([]*domain.Flight, 6)
	for i := range flights {
		flights[i] = seedFlight(t, store, 10, 4000, 4000)
	}
	service := newService(store)

	var wg sync.WaitGroup
	for _, f := range flights {
		wg.Add(1)
		go func(flightID int64) {
			defer wg.Done()
			_, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flightID, Passengers: passengers(1)})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			}
		}(f.ID)
	}
	wg.Wait()

	balance := balanceOf(t, store, user.ID)
	assert.Equal(t, int64(2000), balance)
	assert.Equal(t, int64(10000)+ledgerSum(ledgerOf(t, store, user.ID)), balance)
}

func TestBookingService_SeatAndBalanceConservation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	const capacity = 20
	flight := seedFlight(t, store, capacity, 1500, 1500)
	users := []*domain.User{seedUser(t, store, 50000), seedUser(t, store, 50000)}
	service := newService(store)

	var pnrs []string
	for i := 0; i < 6; i++ {
		u := users[i%2]
		result, err := service.CreateBooking(ctx, CreateBookingInput{UserID: u.ID, FlightID: flight.ID, Passengers: passengers(i%3 + 1)})
		require.NoError(t, err)
		pnrs = append(pnrs, result.Booking.PNR)

		if i%2 == 1 {
			_, err := service.CancelBooking(ctx, users[(i-1)%2].ID, pnrs[i-1])
			require.NoError(t, err)
		}

		confirmed := 0
		for _, owner := range users {
			bookings, err := service.ListBookings(ctx, owner.ID)
			require.NoError(t, err)
			for _, b := range bookings {
				if b.Status == domain.BookingStatusConfirmed {
					confirmed += b.Seats()
				}
			}
		}
		assert.Equal(t, capacity, availableSeats(t, store, flight.ID)+confirmed)
	}

	for _, u := range users {
		assert.Equal(t, int64(50000)+ledgerSum(ledgerOf(t, store, u.ID)), balanceOf(t, store, u.ID))
	}
}

func TestBookingService_GetTicketAndList(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := seedUser(t, store, 100000)
	stranger := seedUser(t, store, 100000)
	flight := seedFlight(t, store, 10, 4500, 4500)
	service := newService(store)

	created, err := service.CreateBooking(ctx, CreateBookingInput{UserID: user.ID, FlightID: flight.ID, Passengers: passengers(1)})
	require.NoError(t, err)

	booking, holder, err := service.GetTicket(ctx, user.ID, created.Booking.PNR)
	require.NoError(t, err)
	assert.Equal(t, created.Booking.PNR, booking.PNR)
	require.NotNil(t, booking.Flight)
	assert.Equal(t, "AI-101", booking.Flight.FlightNumber)
	assert.Equal(t, user.Email, holder.Email)

	_, _, err = service.GetTicket(ctx, stranger.ID, created.Booking.PNR)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	lowered, err := service.GetBooking(ctx, user.ID, " "+strings.ToLower(created.Booking.PNR)+" ")
	require.NoError(t, err)
	assert.Equal(t, created.Booking.ID, lowered.ID)

	list, err := service.ListBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Flight)

	list, err = service.ListBookings(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestParseAge(t *testing.T) {
	age, err := parseAge("42")
	require.NoError(t, err)
	assert.Equal(t, 42.0, age)

	age, err = parseAge(" 0.5 ")
	require.NoError(t, err)
	assert.Equal(t, 0.5, age)

	for _, raw := range []string{"", "abc", "0", "-1", "-0.5", "NaN", "+Inf", "1e400"} {
		_, err := parseAge(raw)
		assert.Error(t, err, raw)
	}
}
