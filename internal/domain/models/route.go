package models

import (
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/google/uuid"
)

// TracePoint is one GPS sample.
type TracePoint struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	TimestampMs int64    `json:"timestamp_ms"`
	Elevation   *float64 `json:"elevation,omitempty"`
}

// Trace is an ordered sequence of samples, insertion order is chronological order.
type Trace []TracePoint

// First returns the first sample. The trace must not be empty.
func (t Trace) First() TracePoint {
	return t[0]
}

// Last returns the last sample. The trace must not be empty.
func (t Trace) Last() TracePoint {
	return t[len(t)-1]
}

// GeoPoint is a named location used for start/end display.
type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// AnonymizedRoute is the shareable view of a route after endpoint blurring and fuzzing.
type AnonymizedRoute struct {
	Trace Trace    `json:"trace"`
	Start GeoPoint `json:"start"`
	End   GeoPoint `json:"end"`
}

// RouteMetrics is the aggregate summary used by the plausibility checker.
type RouteMetrics struct {
	RouteType       types.RouteType `json:"route_type"`
	DistanceMeters  float64         `json:"distance_meters"`
	DurationSeconds float64         `json:"duration_seconds"`
	CoordinateCount int             `json:"coordinate_count"`
}

// PlausibilityVerdict lists every triggered check in a fixed order.
type PlausibilityVerdict struct {
	IsImplausible bool     `json:"is_implausible"`
	Reasons       []string `json:"reasons"`
}

type Route struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Title        string
	RouteType    types.RouteType
	SharingLevel types.SharingLevel

	// Raw data, visible to the owner only
	Trace Trace
	Start GeoPoint
	End   GeoPoint

	// What other users see. Equal to the raw data unless the route is anonymous.
	Shared AnonymizedRoute

	Metrics RouteMetrics

	ReviewStatus  types.ReviewStatus
	ReviewReasons []string

	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// IsVisibleTo reports whether the viewer may see the route at all.
func (r *Route) IsVisibleTo(viewerID uuid.UUID) bool {
	if r.OwnerID == viewerID {
		return true
	}
	return r.SharingLevel != types.SharingPrivate
}
