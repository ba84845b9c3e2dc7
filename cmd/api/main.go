package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/auth"
	"github.com/safar/go-sql-shop/internal/config"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/events"
	"github.com/safar/go-sql-shop/internal/httpapi"
	"github.com/safar/go-sql-shop/internal/logging"
	"github.com/safar/go-sql-shop/internal/shop"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("Server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("connected to database")

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka)
		logger.Info("publishing order events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher", zap.Error(err))
		}
	}()

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:      shop.NewCatalogManager(db, logger.Named("catalog")),
		Wishlists:    shop.NewWishlistManager(db, logger.Named("wishlist")),
		Carts:        shop.NewCartManager(db, logger.Named("cart")),
		Orders:       shop.NewOrderManager(db, logger.Named("order"), publisher),
		Tokens:       auth.NewTokens(cfg.Auth),
		DB:           db,
		Logger:       logger.Named("http"),
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
