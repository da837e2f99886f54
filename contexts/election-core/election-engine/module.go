package electionengine

import (
	"log/slog"

	httpadapter "electra/contexts/election-core/election-engine/adapters/http"
	"electra/contexts/election-core/election-engine/adapters/memory"
	"electra/contexts/election-core/election-engine/application/commands"
	"electra/contexts/election-core/election-engine/application/queries"
	"electra/contexts/election-core/election-engine/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Elections *commands.ElectionUseCase
	Store     *memory.Store
}

type Dependencies struct {
	Elections     ports.ElectionRepository
	Escrow        ports.EscrowLedger
	Steps         ports.StepCounter
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	AdminAccount  string
	EscrowAccount string
	PledgeFloor   int64
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	useCase := &commands.ElectionUseCase{
		Elections:     deps.Elections,
		Escrow:        deps.Escrow,
		Steps:         deps.Steps,
		Outbox:        deps.Outbox,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		AdminAccount:  deps.AdminAccount,
		EscrowAccount: deps.EscrowAccount,
		PledgeFloor:   deps.PledgeFloor,
		Logger:        deps.Logger,
	}
	standings := queries.StandingsUseCase{
		Elections: deps.Elections,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections: useCase,
			Standings: standings,
			Logger:    deps.Logger,
		},
		Elections: useCase,
	}
}

// NewInMemoryModule wires the module against the in-memory store for tests
// and DSN-less runs. The escrow ledger still comes from the caller.
func NewInMemoryModule(escrow ports.EscrowLedger, steps ports.StepCounter, admin string, pledgeFloor int64, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Elections:     store,
		Escrow:        escrow,
		Steps:         steps,
		Outbox:        store,
		Clock:         store,
		IDGen:         store,
		AdminAccount:  admin,
		EscrowAccount: "escrow:election",
		PledgeFloor:   pledgeFloor,
		Logger:        logger,
	})
	module.Store = store
	return module
}
