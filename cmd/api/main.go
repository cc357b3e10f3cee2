package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safar/chat-storefront/internal/checkout"
	"github.com/safar/chat-storefront/internal/config"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/events"
	"github.com/safar/chat-storefront/internal/httpx"
	"github.com/safar/chat-storefront/internal/i18n"
	"github.com/safar/chat-storefront/internal/lock"
	"github.com/safar/chat-storefront/internal/logger"
	"github.com/safar/chat-storefront/internal/presenter"
	"github.com/safar/chat-storefront/internal/store"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Create logger: %v", err)
	}

	if err := run(cfg, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	_ = zl.Sync()
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database.URL, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	zl.Info("connected to database")

	opts := []checkout.Option{checkout.WithLogger(zl.Named("checkout"))}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		opts = append(opts, checkout.WithLocker(lock.NewRedis(rdb, cfg.Checkout.LockTTL, cfg.Checkout.LockWait, zl.Named("lock"))))
		zl.Info("using redis checkout lock", zap.String("addr", cfg.Redis.Addr))
	} else {
		zl.Info("using in-process checkout lock")
	}

	if cfg.Kafka.Enabled() {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, zl.Named("events"))
		defer func() {
			if err := publisher.Close(); err != nil {
				zl.Warn("close kafka publisher", zap.Error(err))
			}
		}()
		opts = append(opts, checkout.WithPublisher(publisher))
	} else {
		zl.Info("KAFKA_BROKERS not set, order events are disabled")
	}

	svc := checkout.NewService(checkout.NewPostgresBackend(db), cfg.Checkout.PaymentMethods, opts...)

	deps := httpx.Deps{
		DB:     db,
		Cart:   svc,
		Token:  cfg.Admin.Token,
		Logger: zl.Named("http"),
	}

	if cfg.Admin.Enabled() {
		adminDB, err := database.NewConnection(cfg.Admin.DatabaseURL, cfg.Database)
		if err != nil {
			return err
		}
		defer adminDB.Close()
		deps.Admin = checkout.NewAdmin(checkout.NewPostgresAdmin(adminDB), zl.Named("admin"))
		if cfg.Admin.Token == "" {
			zl.Warn("ADMIN_TOKEN not set, admin routes stay unavailable")
		}
	} else {
		zl.Warn("ADMIN_DATABASE_URL not set, order status updates are unavailable")
	}

	texts := i18n.TextSourceFunc(func(ctx context.Context, key, lang string) (string, bool, error) {
		return store.GetInterfaceText(ctx, db, key, lang)
	})
	deps.Presenter = presenter.New(i18n.NewTranslator(texts, zl.Named("i18n")), cfg.Currency)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpx.NewServer(deps).Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return serve(ctx, server, db, zl)
}

func serve(ctx context.Context, server *http.Server, db *sql.DB, zl *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zl.Info("server stopped", zap.Int("open_connections", db.Stats().OpenConnections))
	return nil
}
