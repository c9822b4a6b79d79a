package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"proofregistry/internal/platform/config"
	"proofregistry/internal/platform/redis"
	"proofregistry/internal/registry/ledger"
	"proofregistry/internal/registry/service"
	"proofregistry/internal/registry/store"
	httptransport "proofregistry/internal/transport/http"
	audit "proofregistry/pkg/platform/audit"
	"proofregistry/pkg/platform/audit/store/kafka"
	auditmemory "proofregistry/pkg/platform/audit/store/memory"
)

// infra holds the backing stores selected from configuration.
type infra struct {
	repo       store.Repository
	ledger     service.Ledger
	auditStore audit.Store
	health     map[string]httptransport.HealthCheck

	storeKind  string
	ledgerKind string
	closers    []func()
}

func (i *infra) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
}

// buildInfra picks Postgres when DATABASE_URL is set and memory otherwise.
// Fees go to Redis when REDIS_URL is set, else to the store's database.
func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{health: map[string]httptransport.HealthCheck{}}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		in.closers = append(in.closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			return nil, err
		}
		in.repo = store.NewPostgres(db)
		in.storeKind = "postgres"
		in.health["database"] = db.PingContext
	} else {
		in.repo = store.NewInMemory()
		in.storeKind = "memory"
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	switch {
	case redisClient != nil:
		in.closers = append(in.closers, func() { _ = redisClient.Close() })
		in.ledger = ledger.NewRedis(redisClient.Client)
		in.ledgerKind = "redis"
		in.health["redis"] = redisClient.Health
		log.Warn("redis fee ledger is not transactional with the registry store")
	case db != nil:
		in.ledger = ledger.NewPostgres(db)
		in.ledgerKind = "postgres"
	default:
		in.ledger = ledger.NewInMemory()
		in.ledgerKind = "memory"
	}

	fallback := auditmemory.NewInMemoryStore()
	in.auditStore = fallback
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			kafka.WithFallback(fallback),
			kafka.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, sink.Close)
		in.auditStore = sink
	}

	ok = true
	return in, nil
}
