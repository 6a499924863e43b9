package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"planboard/internal/config"
	"planboard/internal/handlers"
	"planboard/internal/logger"
	"planboard/internal/middleware"
	"planboard/internal/repository/inmemory"
	"planboard/internal/repository/postgres"
	"planboard/internal/repository/sqlite"
	"planboard/internal/service"
	"planboard/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.Repository
	service    handlers.Service
	hub        *handlers.Hub
	worker     *worker.OverdueWorker
	shutdowns  []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := a.initLogger(); err != nil {
		return nil, err
	}
	if err := a.initRepository(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	a.hub = handlers.NewHub()
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: closing websocket subscribers")
		a.hub.Close()
	})

	a.service = service.NewService(a.repository,
		service.WithPublisher(a.hub),
		service.WithShareBaseURL(a.config.Share.BaseURL),
	)
	a.worker = worker.NewOverdueWorker(a.repository, a.hub, &a.config.Worker.Interval, &a.config.Worker.BatchSize)
	a.initRouter()

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *App) initLogger() error {
	var err error
	if a.config.Logging.File != "" {
		err = logger.InitFile(a.config.Logging.File)
	} else {
		err = logger.Init(a.config.Logging.Development)
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})
	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case "postgres":
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Options{
			MaxConns:    int32(a.config.Database.MaxConnections),
			MinConns:    int32(a.config.Database.MinConnections),
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		a.repository = storage
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: closing postgres pool")
			storage.Close()
		})
	case "sqlite":
		storage, err := sqlite.New(a.config.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.repository = storage
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: closing sqlite database")
			if err := storage.Close(); err != nil {
				logger.Error("App: failed to close sqlite", err)
			}
		})
	default:
		a.repository = inmemory.New()
	}
	logger.Info("App: repository ready", zap.String("type", a.config.Repository.Type))
	return nil
}

func (a *App) initRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if a.config.Server.RateLimit > 0 {
		r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	}
	if a.config.Auth.JWTSecret == "" {
		logger.Warn("App: JWT secret not set, every request runs as the local user")
	}

	handlers.NewHandler(a.service, a.hub).Routes(r, middleware.Auth(a.config.Auth.JWTSecret))
	a.router = r
}

// Run serves HTTP and runs the overdue worker until ctx is cancelled, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("App: shutting down server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Shutdown()
	return err
}

// Shutdown releases resources in reverse order of acquisition.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) Router() http.Handler { return a.router }
