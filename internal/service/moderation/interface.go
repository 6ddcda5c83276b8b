package moderation

import (
	"context"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/google/uuid"
)

type RouteRepo interface {
	GetMetrics(ctx context.Context, id uuid.UUID) (models.RouteMetrics, error)
	SaveReview(ctx context.Context, id uuid.UUID, status types.ReviewStatus, reasons []string) error
}

// Notifier pushes flagged routes to connected moderators
type Notifier interface {
	Broadcast(ctx context.Context, msg any) int
}
