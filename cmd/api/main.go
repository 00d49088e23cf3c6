package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/byZeet/centralita-neron/internal/api/http"
	"github.com/byZeet/centralita-neron/internal/api/http/handlers"
	"github.com/byZeet/centralita-neron/internal/auth"
	"github.com/byZeet/centralita-neron/internal/config"
	"github.com/byZeet/centralita-neron/internal/events"
	"github.com/byZeet/centralita-neron/internal/notify"
	"github.com/byZeet/centralita-neron/internal/observability"
	"github.com/byZeet/centralita-neron/internal/persistence"
	"github.com/byZeet/centralita-neron/internal/repository"
	"github.com/byZeet/centralita-neron/internal/service"
	"github.com/byZeet/centralita-neron/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	operatorRepo := repository.NewOperatorRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	chatRepo := repository.NewChatRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	events.NewRedisPublisher(redis.Client, cfg.Redis.EventStream, logger).RegisterWith(dispatcher)
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	operatorService := service.NewOperatorService(service.OperatorDependencies{
		OperatorRepo: operatorRepo,
		Tokens:       tokens,
		Dispatcher:   dispatcher,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		OperatorRepo: operatorRepo,
		Dispatcher:   dispatcher,
	})
	chatService := service.NewChatService(chatRepo)

	authMiddleware := auth.NewAuthMiddleware(tokens, operatorRepo)

	// Server-side board watcher. Viewer id 0 matches no operator, so nothing
	// is self-suppressed and every board change lands in the log stream.
	boardPoller := notify.NewPoller(notify.PollerOptions{
		Source:        service.NewBoardSource(operatorRepo, ticketRepo),
		Sink:          notify.LogSink{Logger: logger.Named("board")},
		ViewerID:      0,
		Interval:      cfg.Poll.BoardInterval(),
		Logger:        logger,
		Metrics:       metrics,
		WarnThreshold: cfg.Poll.FailureWarningThreshold,
	})
	go boardPoller.Run(ctx)

	if cfg.Cleanup.Enabled {
		cleanupWorker := worker.NewCleanupWorker(ticketService, chatService, cfg.Cleanup, logger)
		go cleanupWorker.Run(ctx)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Operators:      handlers.NewOperatorsHandler(operatorService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Chat:           handlers.NewChatHandler(chatService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
