package main

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

	"github.com/fjod/go_cart/eventhub/internal/cache"
	"github.com/fjod/go_cart/eventhub/internal/cartstore"
	"github.com/fjod/go_cart/eventhub/internal/checkout"
	"github.com/fjod/go_cart/eventhub/internal/config"
	h "github.com/fjod/go_cart/eventhub/internal/http"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/fjod/go_cart/eventhub/internal/publisher"
	"github.com/fjod/go_cart/eventhub/internal/repository"
	"github.com/fjod/go_cart/eventhub/internal/service"
	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/fjod/go_cart/eventhub/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("eventhub starting...")

	if err := run(cfg, log); err != nil {
		log.Error("eventhub stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("eventhub stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, "eventhub", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		log.Info("redis ping succeeded", "addr", cfg.Redis.Addr)
	}

	// Device cart storage
	storage, err := openCartStorage(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	carts := cartstore.New(storage, cfg.Storage.Namespace, log)
	defer carts.Close()
	log.Info("cart storage ready", "backend", cfg.Storage.Backend, "key", carts.Key())

	// Remote store
	repo, err := repository.NewRepository(&repository.Credentials{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations completed")

	orders := repository.NewBreakerStore(repo, repository.BreakerSettings{
		Name:        "order-store",
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	}, log)

	sessions := session.NewManager(session.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), repo, log)
	restored := sessions.Restore(ctx, cfg.SessionToken)
	log.Info("session restored", "signed_in", restored.Authenticated())

	var eventCache cache.EventCache = cache.NopCache{}
	if redisClient != nil {
		eventCache = cache.NewRedisCache(redisClient)
	}
	events := service.NewEventService(repo, eventCache, log)
	dashboards := service.NewDashboardService(repo, repo, repo, repo)
	cart := service.NewCartService(ctx, carts, log)

	opts := []checkout.Option{checkout.WithTransactional(cfg.CheckoutTransactional)}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := publisher.NewOrderPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer pub.Close()
		opts = append(opts, checkout.WithNotifier(pub))
		log.Info("order notifications enabled", "topic", cfg.Kafka.Topic)
	}
	sequencer := checkout.New(orders, sessions, cart, log, opts...)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, h.Handlers{
		Sessions:   sessions,
		Cart:       cart,
		Events:     events,
		Lookup:     events,
		Checkout:   sequencer,
		Dashboards: dashboards,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func openCartStorage(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (cartstore.Storage, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := cartstore.NewSQLiteStorage(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cart storage: %w", err)
		}
		return s, nil
	case "redis":
		return cartstore.NewRedisStorage(redisClient), nil
	case "mongo":
		db, err := cartstore.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		return cartstore.NewMongoStorage(db), nil
	case "memory":
		return cartstore.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
