package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Temutjin2k/route-guard/config"
	"github.com/Temutjin2k/route-guard/internal/adapter/http/server"
	"github.com/Temutjin2k/route-guard/internal/adapter/locationIQ"
	repo "github.com/Temutjin2k/route-guard/internal/adapter/postgres"
	broker "github.com/Temutjin2k/route-guard/internal/adapter/rabbit"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/internal/service/anonymizer"
	"github.com/Temutjin2k/route-guard/internal/service/auth"
	"github.com/Temutjin2k/route-guard/internal/service/route"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	"github.com/Temutjin2k/route-guard/pkg/postgres"
	"github.com/Temutjin2k/route-guard/pkg/rabbit"
	"github.com/Temutjin2k/route-guard/pkg/trm"
)

type RouteService struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbit.RabbitMQ
	httpServer *server.API
	cfg        config.Config
	log        logger.Logger
}

func NewRoute(ctx context.Context, cfg config.Config, log logger.Logger) (*RouteService, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to connect to rabbitmq", err)
		postgresDB.Close()
		return nil, err
	}

	if err := rabbitMQ.Declare(ctx, broker.Topology); err != nil {
		log.Error(ctx, "Failed to declare rabbitmq topology", err)
		_ = rabbitMQ.Close(ctx)
		postgresDB.Close()
		return nil, err
	}

	var geocoder route.Geocoder
	if cfg.ExternalAPI.LocationIQAPIKey != "" {
		geocoder = locationIQ.New(cfg.ExternalAPI.LocationIQAPIKey, cfg.ExternalAPI.LocationIQBaseURL, cfg.ExternalAPI.Timeout)
	} else {
		log.Warn(ctx, "LocationIQ api key is not set, place names are disabled")
	}

	routeRepo := repo.NewRouteRepo(postgresDB.Pool, string(types.RouteService))
	routeBroker := broker.NewRouteBroker(rabbitMQ, string(types.RouteService), log)

	routeService := route.New(
		routeRepo,
		geocoder,
		routeBroker,
		anonymizer.New(),
		trm.New(postgresDB.Pool),
		log,
	)

	httpServer, err := server.New(cfg, server.Deps{
		Route: routeService,
		Auth:  auth.NewTokenService(cfg.Auth.JWTSecret),
	}, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		_ = rabbitMQ.Close(ctx)
		postgresDB.Close()
		return nil, err
	}

	return &RouteService{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *RouteService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "route service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "route service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (s *RouteService) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.rabbitMQ != nil {
		if err := s.rabbitMQ.Close(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
		}
	}

	s.postgresDB.Close()
}
