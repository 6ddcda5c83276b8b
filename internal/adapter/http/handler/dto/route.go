package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/internal/service/route"
	"github.com/Temutjin2k/route-guard/pkg/validator"
)

type TracePoint struct {
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
	TimestampMs int64    `json:"timestamp_ms" validate:"gte=0"`
	Elevation   *float64 `json:"elevation,omitempty"`
}

type CompleteRouteRequest struct {
	RouteType    string       `json:"route_type" validate:"required,oneof=walking running cycling commuting"`
	SharingLevel string       `json:"sharing_level" validate:"required,oneof=private anonymous public"`
	Title        string       `json:"title" validate:"max=200"`
	Trace        []TracePoint `json:"trace" validate:"required,min=1,max=100000,dive"`
}

func (r *CompleteRouteRequest) Validate(v *validator.Validator) {
	v.Struct(r)
}

func (r *CompleteRouteRequest) ToModel(ownerID uuid.UUID) route.CompleteRouteRequest {
	trace := make(models.Trace, 0, len(r.Trace))
	for _, p := range r.Trace {
		trace = append(trace, models.TracePoint{
			Lat:         *p.Lat,
			Lng:         *p.Lng,
			TimestampMs: p.TimestampMs,
			Elevation:   p.Elevation,
		})
	}

	return route.CompleteRouteRequest{
		OwnerID:      ownerID,
		Title:        r.Title,
		RouteType:    types.RouteType(r.RouteType),
		SharingLevel: types.SharingLevel(r.SharingLevel),
		Trace:        trace,
	}
}

type PlausibilityRequest struct {
	RouteType       string   `json:"route_type" validate:"required,oneof=walking running cycling commuting"`
	DistanceMeters  *float64 `json:"distance_meters" validate:"required,gte=0"`
	DurationSeconds *float64 `json:"duration_seconds" validate:"required,gte=0"`
	CoordinateCount *int     `json:"coordinate_count" validate:"required,gte=0"`
}

func (r *PlausibilityRequest) Validate(v *validator.Validator) {
	v.Struct(r)
}

func (r *PlausibilityRequest) ToModel() models.RouteMetrics {
	return models.RouteMetrics{
		RouteType:       types.RouteType(r.RouteType),
		DistanceMeters:  *r.DistanceMeters,
		DurationSeconds: *r.DurationSeconds,
		CoordinateCount: *r.CoordinateCount,
	}
}

type RouteResponse struct {
	ID            uuid.UUID           `json:"id"`
	OwnerID       *uuid.UUID          `json:"owner_id,omitempty"`
	Title         string              `json:"title"`
	RouteType     types.RouteType     `json:"route_type"`
	SharingLevel  types.SharingLevel  `json:"sharing_level"`
	Trace         models.Trace        `json:"trace"`
	Start         models.GeoPoint     `json:"start"`
	End           models.GeoPoint     `json:"end"`
	Metrics       models.RouteMetrics `json:"metrics"`
	ReviewStatus  types.ReviewStatus  `json:"review_status"`
	ReviewReasons []string            `json:"review_reasons,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewRouteResponse renders a route already filtered by the route service.
// A nil owner ID means the author is hidden.
func NewRouteResponse(r *models.Route) RouteResponse {
	resp := RouteResponse{
		ID:            r.ID,
		Title:         r.Title,
		RouteType:     r.RouteType,
		SharingLevel:  r.SharingLevel,
		Trace:         r.Trace,
		Start:         r.Start,
		End:           r.End,
		Metrics:       r.Metrics,
		ReviewStatus:  r.ReviewStatus,
		ReviewReasons: r.ReviewReasons,
		CreatedAt:     r.CreatedAt,
	}

	if r.OwnerID != uuid.Nil {
		ownerID := r.OwnerID
		resp.OwnerID = &ownerID
	}
	if resp.Trace == nil {
		resp.Trace = models.Trace{}
	}

	return resp
}

func NewRouteListResponse(routes []models.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for i := range routes {
		out = append(out, NewRouteResponse(&routes[i]))
	}
	return out
}
