package flights

import (
	"context"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// FlightReader is the part of the flight repository the catalog reads.
type FlightReader interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

type FlightService struct {
	repo  FlightReader
	cache FlightCache
}

func NewFlightService(repo FlightReader, cache FlightCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

// List serves from the cache when it can. Cache failures fall through to the
// repository.
func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			zap.L().Warn("Flights cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		zap.L().Error("Failed to list flights", zap.Error(err))
		return nil, domain.Internal(err)
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			zap.L().Warn("Flights cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			zap.L().Error("Failed to load flight", zap.Int64("flight_id", id), zap.Error(err))
		}
		return nil, domain.Internal(err)
	}
	return flight, nil
}

var (
	_ FlightUseCase = (*FlightService)(nil)
	_ FlightReader  = (repository.FlightRepository)(nil)
)
