package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ollamascout/config"
	_ "ollamascout/docs"
	"ollamascout/logging"
	"ollamascout/scanner"
)

const (
	healthPath      = "/healthz"
	shutdownTimeout = 10 * time.Second
)

// Run initializes dependencies and serves the API until SIGINT or SIGTERM.
func Run() error {
	bootstrap := logging.Configure(os.Stdout, slog.LevelInfo)

	cfg, err := config.Load(bootstrap)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	store := NewRedisStore(redisClient, cfg.TaskTTL)
	runner := NewPipelineRunner(cfg, scanner.NewHTTPClient())
	workers := StartWorkers(ctx, store, runner, cfg.APIWorkers, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(store, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting api server", "addr", cfg.ListenAddr, "workers", cfg.APIWorkers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		workers.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down api server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	workers.Wait()
	return nil
}

// NewRouter builds the gin engine with middleware, health, docs and scan routes.
// Scan routes require a bearer token when cfg.APIKey is set.
func NewRouter(store TaskStore, cfg config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(logger), SecurityHeadersMiddleware())

	router.GET(healthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	if cfg.APIKey != "" {
		v1.Use(AuthMiddleware(cfg.APIKey, logger))
	} else {
		logger.Warn("API_KEY is empty, scan routes are unauthenticated")
	}
	NewServer(store, logger).RegisterRoutes(v1)
	return router
}
