package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/pkg/errors"
)

// LocationService resolves the user's saved shipping locations
type LocationService struct {
	backend StoreBackend
	logger  *zap.Logger
}

// NewLocationService creates a new location service
func NewLocationService(backend StoreBackend, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{backend: backend, logger: logger}
}

// Locations lists the user's saved shipping locations
func (s *LocationService) Locations(ctx context.Context, userID string) ([]domain.ShippingLocation, error) {
	locations, err := s.backend.GetUserLocations(ctx, userID)
	if err != nil {
		s.logger.Error("failed to fetch user locations", zap.Error(err), zap.String("user_id", userID))
		return nil, &errors.ErrNetwork{Op: "get user locations", Err: err}
	}
	return locations, nil
}

// FirstLocation returns the user's first saved location, or nil when the
// user has none. Used as the default when no location was chosen yet.
func (s *LocationService) FirstLocation(ctx context.Context, userID string) (*domain.ShippingLocation, error) {
	locations, err := s.Locations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return &locations[0], nil
}

// LocationByID finds a saved location by id, matching the previously
// selected one across sessions.
func (s *LocationService) LocationByID(ctx context.Context, userID, locationID string) (*domain.ShippingLocation, error) {
	locations, err := s.Locations(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range locations {
		if locations[i].ID == locationID {
			return &locations[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shipping location", ID: locationID}
}
