package bookings_service_api

import (
	"context"

	"github.com/Domenick1991/airwallet/internal/api/grpcutil"
	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/service/booking"
	"github.com/Domenick1991/airwallet/internal/service/wallet"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements BookingsServiceServer over the booking and wallet cores.
type Server struct {
	bookings booking.BookingUseCase
	wallet   wallet.WalletUseCase
}

func NewServer(bookings booking.BookingUseCase, wallet wallet.WalletUseCase) *Server {
	return &Server{bookings: bookings, wallet: wallet}
}

func (s *Server) CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := grpcutil.UserID(ctx)
	if err != nil {
		return nil, err
	}
	flightID, err := grpcutil.Int64(req, "flight_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	input := booking.CreateBookingInput{UserID: userID, FlightID: flightID}
	for _, v := range req.GetFields()["passengers"].GetListValue().GetValues() {
		p := v.GetStructValue()
		if p == nil {
			return nil, grpcutil.Status(domain.ErrInvalidPassengerData)
		}
		input.Passengers = append(input.Passengers, booking.PassengerInput{
			Name:   grpcutil.String(p, "name"),
			Age:    grpcutil.String(p, "age"),
			Gender: grpcutil.String(p, "gender"),
		})
	}

	result, err := s.bookings.CreateBooking(ctx, input)
	if err != nil {
		return nil, grpcutil.Status(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"booking":        bookingFields(result.Booking),
		"surge_applied":  result.SurgeApplied,
		"price_per_seat": result.PricePerSeat,
	})
}

func (s *Server) CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := grpcutil.UserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.bookings.CancelBooking(ctx, userID, grpcutil.String(req, "pnr"))
	if err != nil {
		return nil, grpcutil.Status(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"booking":            bookingFields(result.Booking),
		"refund_amount":      result.RefundAmount,
		"deduction_amount":   result.DeductionAmount,
		"new_wallet_balance": result.NewBalance,
	})
}

func (s *Server) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := grpcutil.UserID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetBooking(ctx, userID, grpcutil.String(req, "pnr"))
	if err != nil {
		return nil, grpcutil.Status(err)
	}
	return structpb.NewStruct(map[string]interface{}{"booking": bookingFields(b)})
}

func (s *Server) AddFunds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := grpcutil.UserID(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := grpcutil.Int64(req, "amount")
	if err != nil {
		return nil, grpcutil.Status(domain.ErrInvalidAmount)
	}

	balance, err := s.wallet.AddFunds(ctx, userID, amount)
	if err != nil {
		return nil, grpcutil.Status(err)
	}
	return structpb.NewStruct(map[string]interface{}{"balance": balance})
}

func bookingFields(b *domain.Booking) map[string]interface{} {
	if b == nil {
		return nil
	}

	passengers := make([]interface{}, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		passengers = append(passengers, map[string]interface{}{
			"name":   p.Name,
			"age":    p.Age,
			"gender": p.Gender,
		})
	}

	fields := map[string]interface{}{
		"id":           b.ID,
		"pnr":          b.PNR,
		"user_id":      b.UserID,
		"flight_id":    b.FlightID,
		"passengers":   passengers,
		"total_amount": b.TotalAmount,
		"status":       string(b.Status),
		"created_at":   grpcutil.Timestamp(b.CreatedAt),
	}
	if b.Flight != nil {
		fields["flight_number"] = b.Flight.FlightNumber
		fields["departure_time"] = grpcutil.Timestamp(b.Flight.DepartureTime)
	}
	return fields
}

var _ BookingsServiceServer = (*Server)(nil)
