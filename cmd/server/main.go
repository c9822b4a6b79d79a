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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"proofregistry/internal/jwttoken"
	"proofregistry/internal/platform/config"
	"proofregistry/internal/platform/httpserver"
	"proofregistry/internal/platform/logger"
	"proofregistry/internal/platform/metrics"
	"proofregistry/internal/registry/clock"
	registrymetrics "proofregistry/internal/registry/metrics"
	"proofregistry/internal/registry/service"
	httptransport "proofregistry/internal/transport/http"
	"proofregistry/pkg/platform/audit/publisher"
)

const (
	shutdownTimeout = 10 * time.Second
	auditBufferSize = 1024
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	backends, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	auditPublisher := publisher.NewPublisher(backends.auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	registry, err := service.New(backends.repo, backends.ledger,
		clock.NewInterval(cfg.Registry.GenesisTime, cfg.Registry.BlockInterval),
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New(reg)),
		service.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return fmt.Errorf("build registry service: %w", err)
	}

	if err := bootstrap(ctx, registry, cfg.Registry, log); err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Validator: jwttoken.NewPrincipalValidator(tokens),
		Registry:  registry,
		Health:    backends.health,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting proof registry", "addr", cfg.Addr, "store", backends.storeKind, "ledger", backends.ledgerKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
