package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MediumMasala/branch-redirect-service/internal/audit"
	"github.com/MediumMasala/branch-redirect-service/internal/config"
	"github.com/MediumMasala/branch-redirect-service/internal/domain"
	"github.com/MediumMasala/branch-redirect-service/internal/handler"
	"github.com/MediumMasala/branch-redirect-service/internal/logger"
	"github.com/MediumMasala/branch-redirect-service/internal/middleware"
	"github.com/MediumMasala/branch-redirect-service/internal/repository/file"
	"github.com/MediumMasala/branch-redirect-service/internal/repository/postgres"
	redisRepo "github.com/MediumMasala/branch-redirect-service/internal/repository/redis"
	"github.com/MediumMasala/branch-redirect-service/internal/service"
	"github.com/MediumMasala/branch-redirect-service/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	loggerConfig := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting branch redirect service",
		"port", cfg.Server.Port,
		"links_source", cfg.Links.Source,
		"log_level", cfg.Log.Level,
	)

	links, dbPool, err := setupLinks(cfg)
	if err != nil {
		log.Error("Failed to load link catalog", "error", err)
		os.Exit(1)
	}
	if dbPool != nil {
		defer dbPool.Close()
	}
	log.Info("Link catalog loaded", "links", len(links))

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = setupRedis(cfg)
		if err != nil {
			log.Error("Failed to setup redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	auditLogger, err := setupAudit(cfg)
	if err != nil {
		log.Error("Failed to setup audit log", "error", err)
		os.Exit(1)
	}

	hosts := domain.NewAllowedHosts(cfg.Links.AllowedHosts)
	resolver := service.NewResolverService(links, hosts, cfg.Server.BaseURL, auditLogger)

	redirectHandler := handler.NewRedirectHandler(resolver)
	healthHandler := handler.NewHealthHandler(dbPool, redisClient, len(links))

	router := setupRouter(cfg, redirectHandler, healthHandler, redisClient)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, dbPool, redisClient, auditLogger, log)
}

// setupLinks loads the slug catalog from the configured source and rejects
// the whole catalog if any entry fails validation. A malformed entry must
// never make it into a running process.
func setupLinks(cfg *config.Config) (domain.LinkSet, *pgxpool.Pool, error) {
	ctx := context.Background()

	var (
		links  domain.LinkSet
		dbPool *pgxpool.Pool
		err    error
	)

	switch cfg.Links.Source {
	case "postgres":
		dbPool, err = setupDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		links, err = postgres.NewLinkRepository(dbPool).LoadAll(ctx)
	default:
		links, err = file.NewLinkRepository(cfg.Links.File).LoadAll(ctx)
	}
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, nil, err
	}

	if err := validateLinks(links); err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, nil, err
	}

	return links, dbPool, nil
}

func validateLinks(links domain.LinkSet) error {
	for slug, entry := range links {
		if validationErrors := validator.Validate(entry); len(validationErrors) > 0 {
			details := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				details = append(details, fmt.Sprintf("%s %s", fieldError.Field, fieldError.Message))
			}
			return fmt.Errorf("link %q: %s", slug, strings.Join(details, ", "))
		}
	}
	return nil
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := cfg.Database
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = dbConfig.MaxConns
	poolConfig.MinConns = dbConfig.MinConns

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}

	return dbPool, nil
}

func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}

func setupAudit(cfg *config.Config) (*audit.Logger, error) {
	auditSlog, err := logger.NewAudit(logger.Config{
		OutputPath: cfg.Audit.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, err
	}

	return audit.New(auditSlog, cfg.Security.IPHashSalt, cfg.Audit.BufferSize), nil
}

func setupRouter(
	cfg *config.Config,
	redirectHandler *handler.RedirectHandler,
	healthHandler *handler.HealthHandler,
	redisClient *redis.Client,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(cfg.Security.IPHashSalt))

	// health check
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)

	links := router.Group("/")
	if cfg.RateLimit.Enabled {
		store := redisRepo.NewRateLimitStore(redisClient)
		links.Use(middleware.RateLimit(store, cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.Security.IPHashSalt))
	}
	{
		links.GET("/r/:slug", redirectHandler.Redirect)
		links.GET("/preview/:slug", redirectHandler.Preview)
	}

	return router
}

func gracefulShutdown(
	srv *http.Server,
	timeout time.Duration,
	dbPool *pgxpool.Pool,
	redisClient *redis.Client,
	auditLogger *audit.Logger,
	log *slog.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	auditLogger.Close()
	log.Info("Audit log drained")

	if dbPool != nil {
		dbPool.Close()
		log.Info("Database connection closed")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", "error", err)
		}
	}

	log.Info("Graceful shutdown completed")
}
