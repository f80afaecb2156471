package flights_service_api

import (
	"context"

	"github.com/Domenick1991/airwallet/internal/api/grpcutil"
	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/service/flights"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements FlightsServiceServer over the flight catalog.
type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) ListFlights(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, grpcutil.Status(err)
	}
	items := make([]interface{}, 0, len(list))
	for i := range list {
		items = append(items, flightFields(&list[i]))
	}
	return structpb.NewStruct(map[string]interface{}{"flights": items})
}

func (s *Server) GetFlight(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := grpcutil.Int64(req, "id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, grpcutil.Status(err)
	}
	return structpb.NewStruct(map[string]interface{}{"flight": flightFields(flight)})
}

func flightFields(f *domain.Flight) map[string]interface{} {
	return map[string]interface{}{
		"id":              f.ID,
		"flight_number":   f.FlightNumber,
		"airline":         f.Airline,
		"from_airport":    f.FromAirport,
		"to_airport":      f.ToAirport,
		"departure_time":  grpcutil.Timestamp(f.DepartureTime),
		"arrival_time":    grpcutil.Timestamp(f.ArrivalTime),
		"total_seats":     f.TotalSeats,
		"available_seats": f.AvailableSeats,
		"base_price":      f.BasePrice,
		"current_price":   f.CurrentPrice,
	}
}

var _ FlightsServiceServer = (*Server)(nil)
