package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chargestats/backend/libs/auth"
	"chargestats/backend/libs/db"
	libredis "chargestats/backend/libs/redis"
	"chargestats/backend/services/sessions-service/internal/config"
	httpserver "chargestats/backend/services/sessions-service/internal/http"
	"chargestats/backend/services/sessions-service/internal/http/handlers"
	"chargestats/backend/services/sessions-service/internal/http/middleware"
	"chargestats/backend/services/sessions-service/internal/metrics"
	redisstore "chargestats/backend/services/sessions-service/internal/redis"
	"chargestats/backend/services/sessions-service/internal/repository"
	"chargestats/backend/services/sessions-service/internal/scheduler"
	"chargestats/backend/services/sessions-service/internal/service"
	"chargestats/backend/services/sessions-service/internal/stats"
	"chargestats/backend/services/sessions-service/internal/ws"
)

// App wires sessions-service dependencies.
type App struct {
	cfg       *config.Config
	server    *httpserver.Server
	engine    *stats.Engine
	metrics   *metrics.Metrics
	hub       *ws.Hub
	scheduler *scheduler.Scheduler
	db        *sql.DB
	redis     *redis.Client
	logger    *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:       cfg,
		engine:    stats.NewEngine(logger),
		metrics:   metrics.New(),
		hub:       ws.NewHub(logger),
		scheduler: scheduler.New(logger),
		logger:    logger,
	}
	a.metrics.ObserveWindow(a.engine)

	repo, err := a.sessionRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []service.Option{service.WithRecorder(a.metrics)}
	if cfg.RedisEnabled() {
		a.redis, err = libredis.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, service.WithActiveCache(redisstore.NewStore(a.redis, cfg.ActiveSessionTTL())))
	}

	sessionsService := service.NewSessionsService(repo, a.engine, logger, opts...)
	sessionsHandlers := handlers.NewSessionsHandlers(sessionsService, logger)
	stream := ws.NewServer(a.hub, func() any { return a.engine.Summary() }, cfg.Stream.WriteTimeout, logger)

	routes := httpserver.Routes{
		StartSession:  sessionsHandlers.Start,
		StopSession:   sessionsHandlers.Stop,
		ListSessions:  sessionsHandlers.List,
		Summary:       sessionsHandlers.Summary,
		SummaryStream: stream,
		Health:        handlers.NewHealthHandler(),
		Metrics:       a.metrics.Handler(),
	}

	var protect httpserver.Middleware
	if cfg.AuthEnabled() {
		protect = middleware.Auth(auth.NewTokenService(cfg.JWT.Secret, cfg.TokenTTL()), func(w http.ResponseWriter, status int, msg string) {
			handlers.WriteError(w, status, msg)
		})
	}

	router := httpserver.NewRouter(routes, protect, middleware.Recover(logger), middleware.RequestLogger(logger))
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger)
	return a, nil
}

func (a *App) sessionRepository(ctx context.Context) (repository.SessionRepository, error) {
	switch a.cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := db.NewPostgresDB(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = pool
		repo := repository.NewPostgresSessionRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return repository.NewMemorySessionRepository(), nil
	}
}

// Engine exposes the statistics engine.
func (a *App) Engine() *stats.Engine {
	return a.engine
}

// Sweep runs one eviction pass and pushes the fresh summary to stream subscribers.
func (a *App) Sweep() {
	res := a.engine.Sweep()
	a.metrics.ObserveSweep(res)
	a.hub.Broadcast(a.engine.Summary())
}

// Run starts the sweep task and the HTTP server and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddress())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddress(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if _, err := a.scheduler.Every("stats-sweep", a.cfg.Stats.SweepInterval, a.Sweep); err != nil {
		_ = ln.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Serve(gctx, ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.scheduler.Stop()
		a.hub.CloseAll()
		return nil
	})
	return g.Wait()
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
