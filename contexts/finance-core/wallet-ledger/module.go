package walletledger

import (
	"log/slog"

	httpadapter "electra/contexts/finance-core/wallet-ledger/adapters/http"
	"electra/contexts/finance-core/wallet-ledger/adapters/memory"
	"electra/contexts/finance-core/wallet-ledger/application"
	"electra/contexts/finance-core/wallet-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Ledger  *application.LedgerService
	Store   *memory.Store
}

type Dependencies struct {
	Accounts ports.AccountStore
	Steps    ports.StepStore
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := &application.LedgerService{
		Accounts: deps.Accounts,
		Steps:    deps.Steps,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger: service,
			Logger: deps.Logger,
		},
		Ledger: service,
	}
}

// NewInMemoryModule wires the ledger against the in-memory store for tests
// and DSN-less runs.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Accounts: store,
		Steps:    store,
		Clock:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
