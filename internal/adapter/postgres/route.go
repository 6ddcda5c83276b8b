package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/metrics"
	"github.com/Temutjin2k/route-guard/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepo struct {
	db      *pgxpool.Pool
	service string
}

func NewRouteRepo(db *pgxpool.Pool, service string) *RouteRepo {
	return &RouteRepo{
		db:      db,
		service: service,
	}
}

const routeColumns = `
	id, owner_id, title, route_type, sharing_level,
	trace, start_point, end_point, shared,
	distance_meters, duration_seconds, coordinate_count,
	review_status, review_reasons, created_at, reviewed_at`

func (r *RouteRepo) Create(ctx context.Context, route *models.Route) (err error) {
	const op = "RouteRepo.Create"
	defer r.observe("insert_route", time.Now(), &err)

	query := `
		INSERT INTO routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	reasons := route.ReviewReasons
	if reasons == nil {
		reasons = []string{}
	}

	if _, err = TxorDB(ctx, r.db).Exec(ctx, query,
		route.ID, route.OwnerID, route.Title, route.RouteType, route.SharingLevel,
		route.Trace, route.Start, route.End, route.Shared,
		route.Metrics.DistanceMeters, route.Metrics.DurationSeconds, route.Metrics.CoordinateCount,
		route.ReviewStatus, reasons, route.CreatedAt, route.ReviewedAt,
	); err != nil {
		if postgres.IsUniqueViolation(err) {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrRouteAlreadyExists))
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}

	return nil
}

func (r *RouteRepo) GetByID(ctx context.Context, id uuid.UUID) (_ *models.Route, err error) {
	const op = "RouteRepo.GetByID"
	defer r.observe("get_route", time.Now(), &err)

	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1;`

	route, err := scanRoute(TxorDB(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRouteNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}

	return route, nil
}

// ListShared returns the newest anonymous and public routes that were not flagged
func (r *RouteRepo) ListShared(ctx context.Context, limit int) (_ []models.Route, err error) {
	const op = "RouteRepo.ListShared"
	defer r.observe("list_shared_routes", time.Now(), &err)

	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE sharing_level <> 'private' AND review_status <> 'FLAGGED'
		ORDER BY created_at DESC
		LIMIT $1;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, limit)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}
	defer rows.Close()

	routes := make([]models.Route, 0, limit)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		routes = append(routes, *route)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}

	return routes, nil
}

func (r *RouteRepo) GetMetrics(ctx context.Context, id uuid.UUID) (_ models.RouteMetrics, err error) {
	const op = "RouteRepo.GetMetrics"
	defer r.observe("get_route_metrics", time.Now(), &err)

	query := `
		SELECT route_type, distance_meters, duration_seconds, coordinate_count
		FROM routes
		WHERE id = $1;`

	var m models.RouteMetrics
	if err = TxorDB(ctx, r.db).QueryRow(ctx, query, id).Scan(&m.RouteType, &m.DistanceMeters, &m.DurationSeconds, &m.CoordinateCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RouteMetrics{}, types.ErrRouteNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return models.RouteMetrics{}, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}

	return m, nil
}

// SaveReview stores the verdict on the route and appends it to the review history.
// Call it inside a transaction to keep both writes atomic.
func (r *RouteRepo) SaveReview(ctx context.Context, id uuid.UUID, status types.ReviewStatus, reasons []string) (err error) {
	const op = "RouteRepo.SaveReview"
	defer r.observe("save_review", time.Now(), &err)

	if reasons == nil {
		reasons = []string{}
	}

	q := TxorDB(ctx, r.db)

	update := `
		UPDATE routes
		SET review_status = $2, review_reasons = $3, reviewed_at = now()
		WHERE id = $1;`

	tag, err := q.Exec(ctx, update, id, status, reasons)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRouteNotFound
	}

	history := `
		INSERT INTO route_reviews (route_id, status, reasons)
		VALUES ($1, $2, $3);`

	if _, err = q.Exec(ctx, history, id, status, reasons); err != nil {
		// the route was deleted between the two statements
		if postgres.IsForeignKeyViolation(err) {
			return types.ErrRouteNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}

	return nil
}

func scanRoute(row pgx.Row) (*models.Route, error) {
	var route models.Route
	if err := row.Scan(
		&route.ID, &route.OwnerID, &route.Title, &route.RouteType, &route.SharingLevel,
		&route.Trace, &route.Start, &route.End, &route.Shared,
		&route.Metrics.DistanceMeters, &route.Metrics.DurationSeconds, &route.Metrics.CoordinateCount,
		&route.ReviewStatus, &route.ReviewReasons, &route.CreatedAt, &route.ReviewedAt,
	); err != nil {
		return nil, err
	}
	route.Metrics.RouteType = route.RouteType
	return &route, nil
}

func (r *RouteRepo) observe(operation string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(r.service, operation, *err, time.Since(start))
}
