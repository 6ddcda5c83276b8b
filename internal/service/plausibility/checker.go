// Package plausibility flags routes whose metrics are physically impossible for the declared activity.
package plausibility

import (
	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
)

const (
	MaxDistanceMeters  = 200_000.0
	MaxDurationSeconds = 86_400.0

	// A route longer than MinDenseDistanceMeters needs at least MinCoordinateCount samples.
	MinCoordinateCount     = 10
	MinDenseDistanceMeters = 1_000.0
)

const (
	ReasonWalkingSpeed     = "Walking speed exceeds human capability"
	ReasonRunningSpeed     = "Running speed exceeds human capability"
	ReasonCyclingSpeed     = "Cycling speed exceeds human capability"
	ReasonDistance         = "Distance exceeds reasonable single-session limit"
	ReasonDuration         = "Duration exceeds 24 hours"
	ReasonInsufficientData = "Insufficient GPS data for reported distance"
)

type speedLimit struct {
	maxKmh float64
	reason string
}

// Commuting is mixed-mode travel and has no ceiling.
var speedLimits = map[types.RouteType]speedLimit{
	types.RouteWalking: {maxKmh: 10, reason: ReasonWalkingSpeed},
	types.RouteRunning: {maxKmh: 30, reason: ReasonRunningSpeed},
	types.RouteCycling: {maxKmh: 60, reason: ReasonCyclingSpeed},
}

// SpeedKmh returns the average speed implied by the metrics, or 0 when duration is not positive.
func SpeedKmh(m models.RouteMetrics) float64 {
	if m.DurationSeconds <= 0 {
		return 0
	}
	return (m.DistanceMeters / 1000) / (m.DurationSeconds / 3600)
}

// Check runs every check and collects all violations in a fixed order:
// speed, distance, duration, data density.
//
// A zero duration skips the speed check and is not flagged on its own.
func Check(m models.RouteMetrics) models.PlausibilityVerdict {
	reasons := make([]string, 0)

	if m.DurationSeconds > 0 {
		if limit, ok := speedLimits[m.RouteType]; ok && SpeedKmh(m) > limit.maxKmh {
			reasons = append(reasons, limit.reason)
		}
	}

	if m.DistanceMeters > MaxDistanceMeters {
		reasons = append(reasons, ReasonDistance)
	}

	if m.DurationSeconds > MaxDurationSeconds {
		reasons = append(reasons, ReasonDuration)
	}

	if m.CoordinateCount < MinCoordinateCount && m.DistanceMeters > MinDenseDistanceMeters {
		reasons = append(reasons, ReasonInsufficientData)
	}

	return models.PlausibilityVerdict{
		IsImplausible: len(reasons) > 0,
		Reasons:       reasons,
	}
}
