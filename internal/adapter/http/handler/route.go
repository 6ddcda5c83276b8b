package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Temutjin2k/route-guard/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/service/plausibility"
	"github.com/Temutjin2k/route-guard/internal/service/route"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/validator"
)

type RouteService interface {
	Complete(ctx context.Context, req route.CompleteRouteRequest) (*models.Route, error)
	Get(ctx context.Context, routeID, viewerID uuid.UUID) (*models.Route, error)
	ListShared(ctx context.Context, limit int) ([]models.Route, error)
}

type Route struct {
	service RouteService
	l       logger.Logger
}

func NewRoute(service RouteService, l logger.Logger) *Route {
	return &Route{
		service: service,
		l:       l,
	}
}

// CompleteRoute stores a finished route of the authenticated user.
func (h *Route) CompleteRoute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "complete_route")

	user := models.UserFromContext(ctx)
	ctx = wrap.WithUserID(ctx, user.ID.String())

	var req dto.CompleteRouteRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data", "errors", v.Errors)
		failedValidationResponse(w, v.Errors)
		return
	}

	stored, err := h.service.Complete(ctx, req.ToModel(user.ID))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to complete route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"route": dto.NewRouteResponse(stored)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRouteID(ctx, stored.ID.String()), "route stored successfully")
}

// GetRoute returns a single route as the caller is allowed to see it.
func (h *Route) GetRoute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_route")

	routeID, err := uuid.Parse(r.PathValue("route_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid route uuid format")
		badRequestResponse(w, "invalid route uuid format")
		return
	}

	var viewerID uuid.UUID
	if user := models.UserFromContext(ctx); !user.IsAnonymous() {
		viewerID = user.ID
	}

	found, err := h.service.Get(ctx, routeID, viewerID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"route": dto.NewRouteResponse(found)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ListShared returns the discovery feed of anonymous and public routes.
func (h *Route) ListShared(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_shared_routes")

	limit, err := readIntQuery(r, "limit", route.DefaultListLimit)
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Check(limit > 0, "limit", "must be greater than zero")
	v.Check(limit <= route.MaxListLimit, "limit", "must not be greater than 100")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	routes, err := h.service.ListShared(ctx, limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list shared routes", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"routes": dto.NewRouteListResponse(routes),
		"count":  len(routes),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// CheckPlausibility runs the plausibility checks on posted metrics without storing anything.
func (h *Route) CheckPlausibility(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "check_plausibility")

	var req dto.PlausibilityRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	verdict := plausibility.Check(req.ToModel())

	if err := writeJSON(w, http.StatusOK, verdict, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
