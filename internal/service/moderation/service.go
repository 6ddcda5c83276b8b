package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/internal/service/plausibility"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/metrics"
	"github.com/Temutjin2k/route-guard/pkg/trm"
	"github.com/google/uuid"
)

const serviceName = "moderation-service"

type Service struct {
	repo     RouteRepo
	notifier Notifier
	trm      trm.TxManager
	now      func() time.Time
	l        logger.Logger
}

func New(repo RouteRepo, notifier Notifier, trm trm.TxManager, l logger.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		trm:      trm,
		now:      time.Now,
		l:        l,
	}
}

// Review checks a freshly stored route. The message carries the metrics so the
// database is only touched to store the verdict.
func (s *Service) Review(ctx context.Context, msg models.RouteStoredMessage) (models.PlausibilityVerdict, error) {
	ctx = wrap.WithRouteID(wrap.WithAction(ctx, types.ActionRouteReviewed), msg.RouteID.String())
	return s.review(ctx, msg.RouteID, msg.Metrics)
}

// Recheck loads the stored metrics and runs the checks again
func (s *Service) Recheck(ctx context.Context, routeID uuid.UUID) (models.PlausibilityVerdict, error) {
	ctx = wrap.WithRouteID(wrap.WithAction(ctx, "recheck_route"), routeID.String())

	m, err := s.repo.GetMetrics(ctx, routeID)
	if err != nil {
		return models.PlausibilityVerdict{}, wrap.Error(ctx, err)
	}
	return s.review(ctx, routeID, m)
}

func (s *Service) review(ctx context.Context, routeID uuid.UUID, m models.RouteMetrics) (models.PlausibilityVerdict, error) {
	verdict := plausibility.Check(m)
	metrics.RecordVerdict(serviceName, verdict.IsImplausible, verdict.Reasons)

	status := types.ReviewApproved
	if verdict.IsImplausible {
		status = types.ReviewFlagged
	}

	if err := s.trm.Do(ctx, func(ctx context.Context) error {
		return s.repo.SaveReview(ctx, routeID, status, verdict.Reasons)
	}); err != nil {
		return verdict, wrap.Error(ctx, fmt.Errorf("save review: %w", err))
	}

	if !verdict.IsImplausible {
		s.l.Debug(ctx, "route approved", "speed_kmh", plausibility.SpeedKmh(m))
		return verdict, nil
	}

	ctx = wrap.WithAction(ctx, types.ActionRouteFlagged)
	s.l.Info(ctx, "route flagged for review", "reasons", verdict.Reasons)

	if s.notifier != nil {
		sent := s.notifier.Broadcast(ctx, models.RouteFlaggedMessage{
			Type:      "route_flagged",
			RouteID:   routeID,
			Metrics:   m,
			Reasons:   verdict.Reasons,
			FlaggedAt: s.now().UTC(),
		})
		s.l.Debug(ctx, "moderators notified", "count", sent)
	}

	return verdict, nil
}
