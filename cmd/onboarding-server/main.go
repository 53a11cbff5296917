// cmd/onboarding-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"driver-onboarding/internal/common/aws"
	"driver-onboarding/internal/common/config"
	"driver-onboarding/internal/common/database"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/common/observability"
	"driver-onboarding/internal/onboarding/notify"
	"driver-onboarding/internal/onboarding/search"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/store"
	"driver-onboarding/internal/onboarding/submit"
	"driver-onboarding/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting onboarding server...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()

	// --- Init S3 ---
	s3Client, err := aws.NewS3Client(ctx, cfg.Storage.Region)
	if err != nil {
		zapLog.Fatal("s3 client failed", zap.Error(err))
	}

	// --- Submission collaborators ---
	profiles := store.NewProfileStore(pg.DB, log)
	wallets := store.NewWalletStore(pg.DB, log)
	media := store.NewMediaStore(s3Client, pg.DB, cfg.Storage.DocumentBucket, cfg.Storage.PhotoBucket, log)
	ledger := submit.NewRedisLedger(rdb.Client, time.Duration(cfg.Onboarding.LedgerTTL)*time.Minute)

	var notifier submit.Notifier
	if cfg.Notifications.EmailEnabled || cfg.Notifications.SMSEnabled {
		var email notify.EmailSender
		var sms notify.SMSSender
		if cfg.Notifications.EmailEnabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
			if err != nil {
				zapLog.Fatal("ses client failed", zap.Error(err))
			}
			email = sesClient
		}
		if cfg.Notifications.SMSEnabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
			if err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
			sms = snsClient
		}
		notifier = notify.New(email, sms, cfg.Notifications, log)
	}

	var indexer submit.ProfileIndexer
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		if err := es.Ping(); err != nil {
			zapLog.Warn("elasticsearch unreachable, indexing degraded", zap.Error(err))
		}
		indexer = search.NewIndexer(es.Client, cfg.Database.Elasticsearch.Index, log)
	}

	orch := submit.NewOrchestrator(
		profiles, wallets, media,
		notifier, indexer, ledger,
		obs, log, cfg.Onboarding.WalletCurrency,
	)

	sessions := session.NewManager(
		cfg.Onboarding.MaxUploadBytes,
		time.Duration(cfg.Onboarding.SessionTTL)*time.Minute,
	)

	// Abandoned sessions hold file bytes in memory; sweep them out.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					log.Info("Swept abandoned sessions", map[string]interface{}{
						"count": n,
					})
				}
			}
		}
	}()

	srv := server.New(cfg.Server, sessions, orch, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zapLog.Fatal("server failed", zap.Error(err))
	case sig := <-stop:
		zapLog.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Onboarding server stopped")
}
