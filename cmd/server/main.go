package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/invite"
	ledgermetrics "fundledger/internal/ledger/metrics"
	"fundledger/internal/ledger/service"
	"fundledger/internal/notify"
	"fundledger/internal/payment"
	"fundledger/internal/platform/config"
	"fundledger/internal/platform/httpserver"
	"fundledger/internal/platform/logger"
	"fundledger/internal/platform/middleware"
	"fundledger/internal/platform/token"
	ledgersync "fundledger/internal/sync"
	httptransport "fundledger/internal/transport/http"
)

// main wires the dependency graph and keeps the process lifecycle small.
// Business rules live in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error("document store unavailable", "backend", cfg.DocStoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	metrics := ledgermetrics.New()
	hub := ledgersync.NewHub(ctx, store, log, metrics)
	recorder := auditlog.NewRecorder(log)

	group, ctx := errgroup.WithContext(ctx)

	publisher, err := newPublisher(cfg, log, group, ctx)
	if err != nil {
		log.Error("notification publisher unavailable", "error", err)
		os.Exit(1)
	}

	ledger := service.New(hub, recorder, log,
		service.WithPublisher(publisher),
		service.WithMetrics(metrics),
		service.WithApprovalsLinkBase(cfg.ApprovalsLinkBase),
	)
	logs := auditlog.NewService(hub, store, recorder, log)
	invites := invite.NewManager(hub, recorder, log)
	payments := payment.NewHandler(ledger, log)

	tokens := token.NewService(cfg.JWTSigningKey, "fundledger")
	handler := httptransport.NewHandler(hub, ledger, logs, invites, payments, tokens, log)
	router := httptransport.NewRouter(handler, middleware.RequireAuth(tokens, log))

	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("server starting", "addr", cfg.Addr, "docstore", cfg.DocStoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func newStore(ctx context.Context, cfg config.Server, log *slog.Logger) (docstore.Store, error) {
	switch cfg.DocStoreBackend {
	case "redis":
		return docstore.NewRedis(cfg.RedisURL, log)
	case "postgres":
		return docstore.NewPostgres(ctx, cfg.PostgresURL, log)
	default:
		return docstore.NewInMemory(), nil
	}
}

// newPublisher picks the notification transport: a Kafka topic when brokers
// are configured, otherwise the in-process queue drained by a log-backed
// worker.
func newPublisher(cfg config.Server, log *slog.Logger, group *errgroup.Group, ctx context.Context) (notify.Publisher, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.NotifyTopic, log)
	}
	channel := notify.NewChannelPublisher(64)
	worker := notify.NewWorker(channel.Events(), notify.LogSender{Log: log}, log)
	group.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return channel, nil
}
