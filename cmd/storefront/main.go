package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/domain"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
	"go.uber.org/zap"
)

func main() {
	issueFor := flag.String("issue-token", "", "print a bearer token for the given user id and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if *issueFor != "" {
		token, err := auth.NewVerifier(cfg.JWTSecret).Issue(*issueFor, 24*time.Hour)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close failed", zap.Error(err))
			}
		}
	}()

	store, err := openStore(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}
	orders, err := openOrders(cfg, store, &closers)
	if err != nil {
		return err
	}

	intents := payment.NewIntentStore(cfg.PaymentIntentTTL)
	closers = append(closers, intents.Close)
	var gateway service.PaymentGateway
	switch cfg.PaymentDriver {
	case "razorpay":
		gateway = payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, intents)
	default:
		gateway = payment.NewSimulated(intents, payment.RandomStatus{SuccessRate: cfg.PaymentSuccessRate})
	}

	var events publisher.Publisher = publisher.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := publisher.NewKafkaPublisher(log, cfg.KafkaBrokers...)
		closers = append(closers, kafkaPublisher.Close)
		events = kafkaPublisher
	}

	snapshot := catalog.NewSnapshot(catalog.NewClient(cfg.CatalogURL, cfg.RequestTimeout))

	manager, err := service.NewManager(service.Deps{
		Store:     service.NewStoreHandler(store, cfg.RequestTimeout),
		Orders:    service.NewOrdersHandler(orders, cfg.RequestTimeout),
		Payment:   service.NewPaymentHandler(gateway, cfg.RequestTimeout),
		Catalog:   service.NewCatalogHandler(snapshot, cfg.RequestTimeout),
		Publisher: events,
		Pricing:   domain.DefaultPricing(),
		Currency:  cfg.Currency,
		Log:       log,
	}, cfg.SessionCacheSize)
	if err != nil {
		return err
	}
	defer manager.Close()

	router := h.NewRouter(h.RouterConfig{
		Sessions:       manager,
		Products:       snapshot,
		Verifier:       auth.NewVerifier(cfg.JWTSecret),
		RequestTimeout: cfg.RequestTimeout,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.StoreDriver), zap.String("orders", cfg.OrdersDriver),
			zap.String("payment", cfg.PaymentDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, closers *[]func() error) (repository.Store, error) {
	var store repository.Store

	switch cfg.StoreDriver {
	case "memory":
		store = repository.NewMemoryStore()
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		mongoStore, disconnect, err := repository.OpenMongoStore(connectCtx, repository.MongoConfig{
			URI:         cfg.MongoURI,
			Database:    cfg.MongoDBName,
			MaxPoolSize: uint64(cfg.MongoMaxPoolSize),
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() error { return disconnect(context.Background()) })
		store = mongoStore
	default:
		sqliteStore, err := repository.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, sqliteStore.Close)
		if err := sqliteStore.RunMigrations(cfg.SQLiteMigrationsPath); err != nil {
			return nil, err
		}
		store = sqliteStore
	}

	if cfg.RedisAddr == "" {
		return store, nil
	}
	client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, client.Close)
	return repository.NewCachedStore(store, cache.NewRedisCache(client), log), nil
}

func openOrders(cfg *config.Config, store repository.Store, closers *[]func() error) (repository.OrderRepository, error) {
	if cfg.OrdersDriver != "postgres" {
		return repository.NewStoreOrderRepository(store), nil
	}

	cred := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewPostgresOrderRepository(cred)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, repo.Close)
	if err := repo.RunMigrations(cred); err != nil {
		return nil, err
	}
	return repo, nil
}
