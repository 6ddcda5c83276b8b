package route

import (
	"context"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/google/uuid"
)

type RouteRepo interface {
	Create(ctx context.Context, route *models.Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
	ListShared(ctx context.Context, limit int) ([]models.Route, error)
}

// Geocoder resolves a coordinate to a human readable place name
type Geocoder interface {
	GetAddress(ctx context.Context, longitude, latitude float64) (string, error)
}

type Publisher interface {
	PublishRouteStored(ctx context.Context, msg models.RouteStoredMessage) error
}

type Anonymizer interface {
	Anonymize(trace models.Trace, start, end models.GeoPoint) models.AnonymizedRoute
}
