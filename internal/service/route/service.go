package route

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/metrics"
	"github.com/Temutjin2k/route-guard/pkg/trm"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "route-service"

	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Service struct {
	repo       RouteRepo
	geocoder   Geocoder
	publisher  Publisher
	anonymizer Anonymizer
	trm        trm.TxManager
	now        func() time.Time
	l          logger.Logger
}

func New(repo RouteRepo, geocoder Geocoder, publisher Publisher, anonymizer Anonymizer, trm trm.TxManager, l logger.Logger) *Service {
	return &Service{
		repo:       repo,
		geocoder:   geocoder,
		publisher:  publisher,
		anonymizer: anonymizer,
		trm:        trm,
		now:        time.Now,
		l:          l,
	}
}

type CompleteRouteRequest struct {
	OwnerID      uuid.UUID
	Title        string
	RouteType    types.RouteType
	SharingLevel types.SharingLevel
	Trace        models.Trace
}

func (r CompleteRouteRequest) validate() error {
	if len(r.Trace) == 0 {
		return types.ErrEmptyTrace
	}
	if !r.RouteType.IsValid() {
		return types.ErrInvalidRouteType
	}
	if !r.SharingLevel.IsValid() {
		return types.ErrInvalidSharingLevel
	}
	return nil
}

// Complete stores a finished route. Metrics come from the raw trace; anonymous routes
// additionally get a blurred shared view. The route is then queued for moderation.
func (s *Service) Complete(ctx context.Context, req CompleteRouteRequest) (*models.Route, error) {
	ctx = wrap.WithAction(ctx, types.ActionRouteCompleted)

	if err := req.validate(); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	route := &models.Route{
		ID:           uuid.New(),
		OwnerID:      req.OwnerID,
		Title:        req.Title,
		RouteType:    req.RouteType,
		SharingLevel: req.SharingLevel,
		Trace:        req.Trace,
		Metrics:      ComputeMetrics(req.RouteType, req.Trace),
		ReviewStatus: types.ReviewPending,
		CreatedAt:    s.now().UTC(),
	}
	ctx = wrap.WithRouteID(ctx, route.ID.String())

	route.Start, route.End = s.resolveEndpoints(ctx, req.Trace)

	if route.SharingLevel == types.SharingAnonymous {
		route.Shared = s.anonymizer.Anonymize(route.Trace, route.Start, route.End)
		metrics.RoutesAnonymizedTotal.WithLabelValues(serviceName).Inc()
		s.l.Debug(wrap.WithAction(ctx, types.ActionRouteAnonymized), "trace anonymized",
			"points_in", len(route.Trace), "points_out", len(route.Shared.Trace))
	} else {
		route.Shared = models.AnonymizedRoute{Trace: route.Trace, Start: route.Start, End: route.End}
	}

	if err := s.trm.Do(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, route)
	}); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("save route: %w", err))
	}

	metrics.RoutesCompletedTotal.WithLabelValues(serviceName, route.SharingLevel.String()).Inc()

	msg := models.RouteStoredMessage{
		RouteID:       route.ID,
		SharingLevel:  route.SharingLevel,
		Metrics:       route.Metrics,
		Timestamp:     route.CreatedAt,
		CorrelationID: wrap.GetRequestID(ctx),
	}
	if err := s.publisher.PublishRouteStored(ctx, msg); err != nil {
		// the route stays pending and can be rechecked manually
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to queue route for moderation", err)
	}

	s.l.Info(ctx, "route completed",
		"sharing_level", route.SharingLevel,
		"distance_m", route.Metrics.DistanceMeters,
		"points", route.Metrics.CoordinateCount)

	return route, nil
}

// resolveEndpoints reverse-geocodes the first and last samples concurrently.
// Failures leave the name empty.
func (s *Service) resolveEndpoints(ctx context.Context, trace models.Trace) (start, end models.GeoPoint) {
	first, last := trace.First(), trace.Last()
	start = models.GeoPoint{Lat: first.Lat, Lng: first.Lng}
	end = models.GeoPoint{Lat: last.Lat, Lng: last.Lng}

	if s.geocoder == nil {
		return start, end
	}

	// no shared context: one failed lookup must not cancel the other
	var g errgroup.Group
	g.Go(func() error {
		name, err := s.geocoder.GetAddress(ctx, start.Lng, start.Lat)
		start.Name = name
		return err
	})
	g.Go(func() error {
		name, err := s.geocoder.GetAddress(ctx, end.Lng, end.Lat)
		end.Name = name
		return err
	})

	if err := g.Wait(); err != nil {
		s.l.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "reverse geocoding failed", "error", err.Error())
	}
	return start, end
}

// Get returns the route as the viewer is allowed to see it.
// Owners get the raw trace; other viewers get the shared view of non-private, non-flagged routes.
func (s *Service) Get(ctx context.Context, routeID, viewerID uuid.UUID) (*models.Route, error) {
	ctx = wrap.WithRouteID(wrap.WithAction(ctx, "get_route"), routeID.String())

	route, err := s.repo.GetByID(ctx, routeID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if route.OwnerID == viewerID {
		return route, nil
	}

	if !route.IsVisibleTo(viewerID) || route.ReviewStatus == types.ReviewFlagged {
		return nil, wrap.Error(ctx, types.ErrRouteNotFound)
	}

	view := sharedView(*route)
	return &view, nil
}

// ListShared returns recent anonymous and public routes for discovery
func (s *Service) ListShared(ctx context.Context, limit int) ([]models.Route, error) {
	ctx = wrap.WithAction(ctx, "list_shared_routes")

	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	routes, err := s.repo.ListShared(ctx, limit)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	out := make([]models.Route, 0, len(routes))
	for _, r := range routes {
		if r.SharingLevel == types.SharingPrivate || r.ReviewStatus == types.ReviewFlagged {
			continue
		}
		out = append(out, sharedView(r))
	}
	return out, nil
}

// sharedView replaces raw data with the shared view and hides the author of anonymous routes
func sharedView(r models.Route) models.Route {
	r.Trace = r.Shared.Trace
	r.Start = r.Shared.Start
	r.End = r.Shared.End
	if r.SharingLevel == types.SharingAnonymous {
		r.OwnerID = uuid.Nil
	}
	return r
}
