package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/route-guard/config"
	"github.com/Temutjin2k/route-guard/internal/adapter/http/handler"
	"github.com/Temutjin2k/route-guard/internal/adapter/http/middleware"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/route-guard/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health     *handler.Health
	route      *handler.Route
	moderation *handler.Moderation
}

// Deps holds the services of the running mode, the others stay nil
type Deps struct {
	Route      handler.RouteService
	Moderation handler.ModerationService
	Hub        *ws.ConnectionHub
	Auth       middleware.AuthService
}

func New(cfg config.Config, deps Deps, logger logger.Logger) (*API, error) {
	if deps.Auth == nil {
		return nil, errors.New("auth service is required")
	}

	handlers := &handlers{
		health: handler.NewHealth(string(cfg.Mode), logger),
	}

	switch cfg.Mode {
	case types.RouteService:
		if deps.Route == nil {
			return nil, errors.New("route service is required")
		}
		handlers.route = handler.NewRoute(deps.Route, logger)
	case types.ModerationService:
		if deps.Moderation == nil || deps.Hub == nil {
			return nil, errors.New("moderation service and hub are required")
		}
		handlers.moderation = handler.NewModeration(deps.Moderation, deps.Hub, string(cfg.Mode), logger)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	api := &API{
		mode: cfg.Mode,

		mux:    http.NewServeMux(),
		routes: handlers,
		m:      middleware.NewMiddleware(deps.Auth, logger),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Port()),
		cfg:    cfg,
		log:    logger,
	}

	setupRoutes(api.mux, api.routes, api.m, api.mode)

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler returns the mux wrapped into the middleware chain
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

// withMiddleware applies middlewares to the mux.
// Metrics wraps the mux directly so it can read the matched pattern.
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(
		a.m.RequestID(
			a.m.Logging(
				a.m.Auth(
					a.m.Metrics(string(a.mode))(a.mux),
				),
			),
		),
	)
}
