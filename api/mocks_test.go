package api

import (
	"context"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/service/booking"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.CreateBookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateBookingResult), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, userID int64, pnr string) (*booking.CancelBookingResult, error) {
	args := m.Called(ctx, userID, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CancelBookingResult), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, userID int64, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetTicket(ctx context.Context, userID int64, pnr string) (*domain.Booking, *domain.User, error) {
	args := m.Called(ctx, userID, pnr)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.User), args.Error(2)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockWalletUseCase struct {
	mock.Mock
}

func (m *MockWalletUseCase) AddFunds(ctx context.Context, userID, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletUseCase) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletUseCase) History(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.WalletTransaction), args.Error(1)
}
