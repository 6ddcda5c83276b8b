package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/metrics"
	ws "github.com/Temutjin2k/route-guard/pkg/wsHub"
)

type ModerationService interface {
	Recheck(ctx context.Context, routeID uuid.UUID) (models.PlausibilityVerdict, error)
}

type Moderation struct {
	service     ModerationService
	hub         *ws.ConnectionHub
	upgrader    websocket.Upgrader
	serviceName string
	l           logger.Logger
}

func NewModeration(service ModerationService, hub *ws.ConnectionHub, serviceName string, l logger.Logger) *Moderation {
	return &Moderation{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			// browsers cannot attach Authorization to an upgrade, so cross-site pages never pass Auth
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		serviceName: serviceName,
		l:           l,
	}
}

// Recheck runs the plausibility review of a stored route again.
func (h *Moderation) Recheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "recheck_route")

	routeID, err := uuid.Parse(r.PathValue("route_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid route uuid format")
		badRequestResponse(w, "invalid route uuid format")
		return
	}
	ctx = wrap.WithRouteID(ctx, routeID.String())

	verdict, err := h.service.Recheck(ctx, routeID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to recheck route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"route_id":       routeID,
		"is_implausible": verdict.IsImplausible,
		"reasons":        verdict.Reasons,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "route rechecked", "is_implausible", verdict.IsImplausible)
}

// HandleWS subscribes a moderator to the live feed of flagged routes.
func (h *Moderation) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "moderation_ws")

	user := models.UserFromContext(ctx)
	ctx = wrap.WithUserID(ctx, user.ID.String())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	// a moderator may have several tabs open, each gets its own id
	c := ws.NewConn(context.WithoutCancel(ctx), uuid.New(), conn)
	if err := h.hub.Add(c); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		_ = c.Close()
		return
	}

	gauge := metrics.ModeratorConnectionsGauge.WithLabelValues(h.serviceName)
	gauge.Inc()
	h.l.Info(ctx, "moderator connected", "conn_id", c.ID())

	defer func() {
		gauge.Dec()
		if err := h.hub.Delete(c.ID()); err != nil && !errors.Is(err, ws.ErrConnIsNotFound) {
			h.l.Warn(ctx, "failed to remove connection", "conn_id", c.ID(), "error", err.Error())
		}
		h.l.Info(ctx, "moderator disconnected", "conn_id", c.ID())
	}()

	if err := c.ReadLoop(); err != nil {
		h.l.Debug(ctx, "read loop finished", "reason", err.Error())
	}
}
