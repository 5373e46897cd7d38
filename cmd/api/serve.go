package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/devsanbid/bravo-test-sub001/internal/api/http"
	"github.com/devsanbid/bravo-test-sub001/internal/api/http/handlers"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/events"
	"github.com/devsanbid/bravo-test-sub001/internal/observability"
	"github.com/devsanbid/bravo-test-sub001/internal/persistence"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	"github.com/devsanbid/bravo-test-sub001/internal/service"
	"github.com/devsanbid/bravo-test-sub001/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		if cfg.App.IsProduction() {
			return err
		}
		logger.Error("incomplete configuration", zap.Error(err))
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	metrics := observability.NewMetrics(metricsNamespace(cfg.App.Name))

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	checks := []handlers.DependencyCheck{
		{Name: "postgres", Ping: pg.Ping},
		{Name: "redis", Ping: redis.Ping},
	}

	var (
		docs  repository.DocumentStore
		files repository.FileStore
	)
	switch cfg.Backend.DocumentStore {
	case "mongo":
		mongo, err := persistence.NewMongo(ctx, cfg.Mongo, cfg.Backend.DatabaseID, logger)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer mongo.Close(context.Background())
		docs = repository.NewMongoDocumentRepository(mongo.Database)
		checks = append(checks, handlers.DependencyCheck{Name: "mongo", Ping: mongo.Ping})
	case "memory":
		logger.Warn("using in-memory document and file stores; data is lost on restart")
		docs = repository.NewMemoryDocumentStore()
		files = repository.NewMemoryFileStore(cfg.Storage.BucketID, cfg.App.BaseURL)
	default:
		docs = repository.NewDocumentRepository(pool, cfg.Backend.DatabaseID)
	}
	if files == nil {
		client := persistence.NewS3(cfg.Storage, cfg.Backend.Endpoint, logger)
		files = repository.NewS3FileRepository(client, cfg.Storage.BucketID, cfg.Backend.ProjectID, cfg.App.BaseURL, cfg.Storage.MaxUploadBytes)
	}

	accountRepo := repository.NewAccountRepository(pool)
	accountTokenRepo := repository.NewAccountTokenRepository(pool)
	sessionRepo := repository.NewSessionRepository(redis.Client)
	profileRepo := repository.NewProfileRepository(docs, collection(cfg.Backend.UsersCollectionID, "users"))
	blogRepo := repository.NewBlogRepository(docs, collection(cfg.Backend.BlogsCollectionID, "blogs"))
	galleryRepo := repository.NewGalleryRepository(docs, collection(cfg.Backend.GalleryCollectionID, "gallery"))
	materialRepo := repository.NewMaterialRepository(docs, collection(cfg.Backend.MaterialsCollectionID, "materials"))

	notifier := service.NewNotificationService(logger, cfg.Notification)
	identity := service.NewIdentityService(*cfg, service.IdentityDependencies{
		AccountRepo:      accountRepo,
		AccountTokenRepo: accountTokenRepo,
		SessionRepo:      sessionRepo,
		Mailer:           notifier,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), logger)
	resolver := auth.NewSessionResolver(tokens, cfg.Auth.CookieName, logger)
	cache := auth.NewSessionCache(redis.Client, cfg.Auth.SessionCacheTTL(), profileRepo.GetByUserID)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Identity:     identity,
		ProfileRepo:  profileRepo,
		TokenManager: tokens,
		Resolver:     resolver,
		Cache:        cache,
		Logger:       logger,
	})
	blogService := service.NewBlogService(blogRepo)
	galleryService := service.NewGalleryService(service.GalleryDependencies{
		GalleryRepo: galleryRepo,
		Files:       files,
		Dispatcher:  events.NewRedisDispatcher(redis.Client, cfg.App.Name+":events", logger),
		Logger:      logger,
	})
	materialService := service.NewMaterialService(materialRepo, files, logger)

	scheduler, err := worker.StartScheduler(cfg.Worker.JanitorSchedule, accountTokenRepo, logger)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	app := httptransport.NewServer(httptransport.ServerOptions{
		Name:           cfg.App.Name,
		BodyLimit:      int(cfg.Storage.MaxUploadBytes) + 1<<20,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:           handlers.NewAuthHandler(authService, resolver),
		Pages:          handlers.NewPageHandler(),
		Blogs:          handlers.NewBlogHandler(blogService),
		Gallery:        handlers.NewGalleryHandler(galleryService, metrics, logger),
		Materials:      handlers.NewMaterialHandler(materialService),
		Storage:        handlers.NewStorageHandler(files, cfg.Storage.BucketID),
		AuthMiddleware: auth.NewAuthMiddleware(resolver, metrics),
		Metrics:        metrics,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
		return nil
	case sig := <-waitForSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

func waitForSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

func collection(id, fallback string) string {
	if id == "" {
		return fallback
	}
	return id
}

// metricsNamespace turns the app name into a valid Prometheus namespace.
func metricsNamespace(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, name)
}
