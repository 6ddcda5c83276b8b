package route

import (
	"math"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
)

const EarthRadiusMeters = 6_371_000.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineDistance returns the great-circle distance between two points in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ComputeMetrics aggregates a raw trace. Distance is the sum of segment lengths,
// duration is the span between the first and last timestamps.
func ComputeMetrics(routeType types.RouteType, trace models.Trace) models.RouteMetrics {
	m := models.RouteMetrics{
		RouteType:       routeType,
		CoordinateCount: len(trace),
	}
	if len(trace) == 0 {
		return m
	}

	for i := 1; i < len(trace); i++ {
		prev, cur := trace[i-1], trace[i]
		m.DistanceMeters += HaversineDistance(prev.Lat, prev.Lng, cur.Lat, cur.Lng)
	}

	m.DurationSeconds = float64(trace.Last().TimestampMs-trace.First().TimestampMs) / 1000
	return m
}
