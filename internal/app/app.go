package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fasthttp/router"
	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/dispatch/api/handler"
	"github.com/fastygo/dispatch/internal/config"
	"github.com/fastygo/dispatch/internal/infrastructure/buffer"
	"github.com/fastygo/dispatch/internal/infrastructure/localcache"
	"github.com/fastygo/dispatch/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/dispatch/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/dispatch/internal/infrastructure/redis"
	"github.com/fastygo/dispatch/internal/metrics"
	"github.com/fastygo/dispatch/internal/middleware"
	appRouter "github.com/fastygo/dispatch/internal/router"
	"github.com/fastygo/dispatch/internal/services"
	"github.com/fastygo/dispatch/internal/services/lifecycle"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/repository/postgres"
	redisRepo "github.com/fastygo/dispatch/repository/redis"
	auditUC "github.com/fastygo/dispatch/usecase/audit"
	boardUC "github.com/fastygo/dispatch/usecase/board"
	dashboardUC "github.com/fastygo/dispatch/usecase/dashboard"
	driverUC "github.com/fastygo/dispatch/usecase/driver"
	notificationUC "github.com/fastygo/dispatch/usecase/notification"
	profileUC "github.com/fastygo/dispatch/usecase/profile"
	pushUC "github.com/fastygo/dispatch/usecase/push"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

// App owns every long-lived component of the dispatch server.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	pool      *pgxpool.Pool
	redis     *goRedis.Client
	buffer    *buffer.Store
	cache     localcache.Cache
	metrics   *metrics.Metrics
	monitor   *monitor.Monitor
	processor *services.BufferProcessor
	router    *router.Router
	server    *fasthttp.Server

	lifecycle *lifecycle.Manager
	serveErr  chan error
}

// New connects the stores and builds the handler graph. Postgres and the
// buffer file are required; Redis and the local cache degrade to no-ops.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.New(),
		lifecycle: lifecycle.New(cfg.Context.ShutdownTimeout, logger),
		serveErr:  make(chan error, 1),
	}

	if err := a.connect(ctx); err != nil {
		_ = a.lifecycle.Shutdown(context.Background())
		return nil, err
	}
	a.wire()
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.cfg

	if err := pgInfra.RunMigrations(cfg, a.logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, a.logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	a.pool = pool
	a.lifecycle.Register("postgres", func(context.Context) error {
		pgInfra.Close(pool, a.logger)
		return nil
	})

	client, err := redisInfra.NewClient(ctx, cfg.Redis, a.logger)
	if err != nil {
		a.logger.Warn("redis unavailable, dashboard cache and notification fan-out disabled", zap.Error(err))
	} else {
		a.redis = client
		a.lifecycle.Register("redis", func(context.Context) error {
			return client.Close()
		})
	}

	store, err := buffer.Open(cfg.Buffer.Path, cfg.Buffer.MaxSize)
	if err != nil {
		return fmt.Errorf("buffer store: %w", err)
	}
	a.buffer = store
	a.lifecycle.Register("buffer", func(context.Context) error {
		return store.Close()
	})

	a.cache = localcache.Open(cfg.LocalCache.Enabled, cfg.LocalCache.Path, cfg.LocalCache.MaxAge, a.logger)
	if closer, ok := a.cache.(*localcache.Store); ok {
		a.lifecycle.Register("local_cache", func(context.Context) error {
			return closer.Close()
		})
	}
	return nil
}

func (a *App) wire() {
	cfg := a.cfg
	loc := cfg.Dashboard.Location()

	a.monitor = monitor.New(a.pool, redisInfra.Pinger{Client: a.redis}, a.buffer, cfg.Monitor.Interval, a.logger)

	taskRepo := postgres.NewTaskRepository(a.pool)
	assigneeRepo := postgres.NewAssigneeRepository(a.pool)
	profileRepo := postgres.NewProfileRepository(a.pool)
	notificationRepo := postgres.NewNotificationRepository(a.pool)

	var (
		dashCache repository.DashboardCache
		publisher repository.NotificationPublisher
	)
	if a.redis != nil {
		dashCache = redisRepo.NewDashboardCache(a.redis, cfg.Dashboard.CacheTTL)
		publisher = redisRepo.NewNotificationPublisher(a.redis)
	}

	a.processor = services.NewBufferProcessor(
		a.buffer,
		a.monitor,
		taskRepo,
		assigneeRepo,
		a.metrics,
		a.logger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bridge := services.NewBufferBridge(a.processor)

	taskUseCase := taskUC.New(taskUC.Deps{
		Tasks:         taskRepo,
		Assignees:     assigneeRepo,
		Audit:         postgres.NewAuditRepository(a.pool),
		Notifications: notificationRepo,
		Publisher:     publisher,
		Cache:         dashCache,
		Buffer:        bridge,
	}, a.logger)

	boardUseCase := boardUC.New(boardUC.Deps{
		Tasks:     taskRepo,
		Drivers:   profileRepo,
		Assignees: assigneeRepo,
		Clients:   postgres.NewClientRepository(a.pool),
		Vehicles:  postgres.NewVehicleRepository(a.pool),
		Mover:     taskUseCase,
		Cache:     a.cache,
		Metrics:   a.metrics,
	}, cfg.Board.DefaultMode, a.logger)

	driverUseCase := driverUC.New(driverUC.Deps{
		Tasks:    taskRepo,
		Changer:  taskUseCase,
		Cache:    a.cache,
		Location: loc,
	}, a.logger)

	dashboardUseCase := dashboardUC.New(dashboardUC.Deps{
		Repo:     postgres.NewDashboardRepository(a.pool),
		Cache:    dashCache,
		Metrics:  a.metrics,
		Location: loc,
	}, a.logger)

	adapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := appRouter.Handlers{
		Profile:      apiHandler.NewProfileHandler(profileUC.New(profileRepo, a.logger), adapter, a.logger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, adapter, a.logger),
		Board:        apiHandler.NewBoardHandler(boardUseCase, adapter, a.logger),
		Audit:        apiHandler.NewAuditHandler(auditUC.New(postgres.NewAuditRepository(a.pool), a.logger), adapter, a.logger),
		Driver:       apiHandler.NewDriverHandler(driverUseCase, adapter, a.logger),
		Notification: apiHandler.NewNotificationHandler(notificationUC.New(notificationRepo, a.logger), adapter, a.logger),
		Push:         apiHandler.NewPushHandler(pushUC.New(postgres.NewPushSubscriptionRepository(a.pool), profileRepo, a.logger), adapter, a.logger),
		Dashboard:    apiHandler.NewDashboardHandler(dashboardUseCase, adapter, a.logger),
		Health:       apiHandler.NewHealthHandler(a.monitor, adapter, a.logger),
	}

	a.router = appRouter.New(handlers, appRouter.Options{
		Auth:          middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, a.logger),
		Metrics:       a.metrics,
		EnableMetrics: cfg.HTTP.EnableMetrics,
	})

	a.server = &fasthttp.Server{
		Handler:      a.router.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}
}

// Handler exposes the routed request handler.
func (a *App) Handler() fasthttp.RequestHandler {
	return a.router.Handler
}

// Listen cancels the given context on SIGINT or SIGTERM.
func (a *App) Listen(cancel context.CancelFunc) {
	a.lifecycle.Listen(cancel)
}

// Start launches the monitor, the replay worker and the HTTP listener.
func (a *App) Start() {
	a.monitor.Start()
	a.lifecycle.Register("monitor", func(context.Context) error {
		a.monitor.Stop()
		return nil
	})

	a.processor.Start()
	a.lifecycle.Register("buffer_processor", func(ctx context.Context) error {
		a.processor.Stop(ctx)
		// one last batch so writes queued during a short outage are not left behind
		return a.processor.Drain(ctx)
	})

	addr := a.cfg.Address()
	go func() {
		a.logger.Info("server started", zap.String("address", addr))
		if err := a.server.ListenAndServe(addr); err != nil {
			a.serveErr <- err
		}
	}()
	a.lifecycle.Register("http_server", func(ctx context.Context) error {
		return a.server.ShutdownWithContext(ctx)
	})
}

// Wait blocks until ctx is done or the listener fails.
func (a *App) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-a.serveErr:
		return fmt.Errorf("http server: %w", err)
	}
}

// Close runs shutdown hooks newest first: listener, workers, then stores.
func (a *App) Close(ctx context.Context) error {
	return a.lifecycle.Shutdown(ctx)
}

// Components lists the registered shutdown hooks.
func (a *App) Components() []string {
	return a.lifecycle.Components()
}
