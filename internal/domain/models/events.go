package models

import (
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/google/uuid"
)

/* ======================= rabbitmq ======================= */

// RouteStoredMessage is published after a route is persisted and waits for review.
type RouteStoredMessage struct {
	RouteID       uuid.UUID          `json:"route_id"`
	SharingLevel  types.SharingLevel `json:"sharing_level"`
	Metrics       RouteMetrics       `json:"metrics"`
	Timestamp     time.Time          `json:"timestamp"`
	CorrelationID string             `json:"correlation_id"`
}

/* ======================= Websocket ======================= */

// RouteFlaggedMessage is pushed to connected moderators.
type RouteFlaggedMessage struct {
	Type      string       `json:"type"` // always "route_flagged"
	RouteID   uuid.UUID    `json:"route_id"`
	Metrics   RouteMetrics `json:"metrics"`
	Reasons   []string     `json:"reasons"`
	FlaggedAt time.Time    `json:"flagged_at"`
}
