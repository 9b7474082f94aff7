package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/callcenter-service/internal/api/http"
	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/api/validation"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/mailer"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/persistence"
	"github.com/spec-kit/callcenter-service/internal/realtime"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
	"github.com/spec-kit/callcenter-service/internal/ticketnumber"
	"github.com/spec-kit/callcenter-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	callRepo := repository.NewCallRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewTicketCommentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	txManager := repository.NewTxManager(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)

	var broadcaster realtime.Broadcaster = realtime.NopBroadcaster{}
	if cfg.Notification.BroadcastEnabled && redis.Enabled() {
		broadcaster = realtime.NewRedisBroadcaster(redis, cfg.Notification.ChannelPrefix)
	}

	mailQueue := worker.NewMailQueue(
		mailer.NewSender(cfg.Mail, logger),
		cfg.Mail.QueueSize,
		cfg.Mail.Workers,
		metrics,
		logger,
	)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	callService := service.NewCallService(service.CallDependencies{
		CallRepo:   callRepo,
		TxManager:  txManager,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		CallRepo:    callRepo,
		UserRepo:    userRepo,
		Numbers:     ticketnumber.NewGenerator(ticketnumber.DefaultPrefix, ticketRepo, nil),
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
		Broadcaster:      broadcaster,
		Mails:            mailQueue,
		Renderer:         mailer.NewRenderer(cfg.App.Name, cfg.App.PublicURL),
		Metrics:          metrics,
		Logger:           logger,
	})
	dashboardService := service.NewDashboardService(statsRepo, nil)
	reportService := service.NewReportService(callRepo, userRepo)

	var retention *worker.RetentionJob
	if cfg.Maintenance.Retention() > 0 {
		retention, err = worker.NewRetentionJob(
			cfg.Maintenance.RetentionSchedule,
			cfg.Maintenance.Retention(),
			notificationService,
			logger,
		)
		if err != nil {
			logger.Fatal("failed to schedule notification retention", zap.Error(err))
		}
	}
	notificationWorker := worker.NewNotificationWorker(notificationService, mailQueue, retention, logger)
	notificationWorker.Start(ctx)

	dependencies := []handlers.Dependency{{Name: "postgres", Pinger: pg}}
	if redis.Enabled() {
		dependencies = append(dependencies, handlers.Dependency{Name: "redis", Pinger: redis})
	}

	validator := validation.New()
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies...),
		Auth:           handlers.NewAuthHandler(authService, validator),
		Calls:          handlers.NewCallsHandler(callService, validator),
		Tickets:        handlers.NewTicketsHandler(ticketService, validator),
		Notifications:  handlers.NewNotificationsHandler(notificationService, cfg.Notification.PollIntervalSeconds),
		Dashboard:      handlers.NewDashboardHandler(dashboardService, reportService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notificationWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("notification worker shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
