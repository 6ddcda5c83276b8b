package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Temutjin2k/route-guard/config"
	"github.com/Temutjin2k/route-guard/internal/adapter/http/server"
	repo "github.com/Temutjin2k/route-guard/internal/adapter/postgres"
	broker "github.com/Temutjin2k/route-guard/internal/adapter/rabbit"
	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/internal/service/auth"
	"github.com/Temutjin2k/route-guard/internal/service/moderation"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	"github.com/Temutjin2k/route-guard/pkg/postgres"
	"github.com/Temutjin2k/route-guard/pkg/rabbit"
	"github.com/Temutjin2k/route-guard/pkg/trm"
	ws "github.com/Temutjin2k/route-guard/pkg/wsHub"
)

type ModerationService struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbit.RabbitMQ
	httpServer *server.API
	hub        *ws.ConnectionHub
	broker     *broker.RouteBroker
	service    *moderation.Service
	cfg        config.Config
	log        logger.Logger
}

func NewModeration(ctx context.Context, cfg config.Config, log logger.Logger) (*ModerationService, error) {
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

	hub := ws.NewConnHub(log)
	routeRepo := repo.NewRouteRepo(postgresDB.Pool, string(types.ModerationService))
	moderationService := moderation.New(routeRepo, hub, trm.New(postgresDB.Pool), log)

	httpServer, err := server.New(cfg, server.Deps{
		Moderation: moderationService,
		Hub:        hub,
		Auth:       auth.NewTokenService(cfg.Auth.JWTSecret),
	}, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		_ = rabbitMQ.Close(ctx)
		postgresDB.Close()
		return nil, err
	}

	return &ModerationService{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		httpServer: httpServer,
		hub:        hub,
		broker:     broker.NewRouteBroker(rabbitMQ, string(types.ModerationService), log),
		service:    moderationService,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *ModerationService) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "moderation service closed")
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.broker.ConsumeRouteStored(gctx, func(ctx context.Context, msg models.RouteStoredMessage) error {
			_, err := s.service.Review(ctx, msg)
			return err
		})
	})

	s.log.Info(ctx, "moderation service started")

	select {
	case errRun := <-errCh:
		stop()
		_ = g.Wait()
		return errRun
	case <-ctx.Done():
		s.log.Info(ctx, "shutting down application")
		return g.Wait()
	}
}

func (s *ModerationService) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	s.hub.Close()

	if s.rabbitMQ != nil {
		if err := s.rabbitMQ.Close(ctx); err != nil {
			s.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
		}
	}

	s.postgresDB.Close()
}
