package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	electionengine "electra/contexts/election-core/election-engine"
	electionmemory "electra/contexts/election-core/election-engine/adapters/memory"
	electionpostgres "electra/contexts/election-core/election-engine/adapters/postgres"
	electionworkers "electra/contexts/election-core/election-engine/application/workers"
	electionports "electra/contexts/election-core/election-engine/ports"
	walletledger "electra/contexts/finance-core/wallet-ledger"
	walletpostgres "electra/contexts/finance-core/wallet-ledger/adapters/postgres"
	"electra/internal/platform/config"
	"electra/internal/platform/db"
	"electra/internal/platform/httpserver"
	"electra/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  electionworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var pg *db.Postgres
	var walletModule walletledger.Module
	var electionDeps electionengine.Dependencies

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		walletRepo := walletpostgres.NewRepository(pg.DB, logger)
		walletModule = walletledger.NewModule(walletledger.Dependencies{
			Accounts: walletRepo,
			Steps:    walletRepo,
			Clock:    electionpostgres.SystemClock{},
			Logger:   logger,
		})

		electionRepo := electionpostgres.NewRepository(pg.DB, logger)
		electionDeps = electionengine.Dependencies{
			Elections: electionRepo,
			Outbox:    electionRepo,
			Clock:     electionpostgres.SystemClock{},
			IDGen:     electionpostgres.UUIDGenerator{},
		}
	} else {
		walletModule = walletledger.NewInMemoryModule(logger)

		store := electionmemory.NewStore()
		electionDeps = electionengine.Dependencies{
			Elections: store,
			Outbox:    store,
			Clock:     store,
			IDGen:     store,
		}
	}

	electionDeps.Escrow = walletModule.Ledger
	electionDeps.Steps = walletModule.Ledger
	electionDeps.AdminAccount = cfg.AdminAccount
	electionDeps.EscrowAccount = cfg.EscrowAccount
	electionDeps.PledgeFloor = cfg.PledgeFloor
	electionDeps.Logger = logger

	electionModule := electionengine.NewModule(electionDeps)

	server := httpserver.New(electionModule, walletModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	var pg *db.Postgres
	var outboxRepo electionports.OutboxRepository
	var clock electionports.Clock

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		outboxRepo = electionpostgres.NewRepository(pg.DB, logger)
		clock = electionpostgres.SystemClock{}
	} else {
		store := electionmemory.NewStore()
		outboxRepo = store
		clock = store
	}

	return &WorkerApp{
		postgres: pg,
		outboxRelay: electionworkers.OutboxRelay{
			Outbox:    outboxRepo,
			Publisher: kafka,
			Clock:     clock,
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
