package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
	"electra/contexts/election-core/election-engine/ports"
)

// ElectionUseCase orchestrates every mutating election operation. All methods
// run start-to-finish under one mutex: the escrow invariants (full
// accounting, at-most-one payout, zero-then-transfer) require that no two
// operations ever interleave mid-mutation.
type ElectionUseCase struct {
	mu sync.Mutex

	Elections ports.ElectionRepository
	Escrow    ports.EscrowLedger
	Steps     ports.StepCounter
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator

	// AdminAccount is the single-owner gate for cycle transitions.
	AdminAccount string
	// EscrowAccount holds pledged value between fund and claim.
	EscrowAccount string
	// PledgeFloor is the fixed minimum pledge per fund call.
	PledgeFloor int64

	Logger *slog.Logger
}

func (uc *ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc *ElectionUseCase) requireAdmin(caller string) error {
	if caller == "" {
		return domainerrors.ErrInvalidInput
	}
	if caller != uc.AdminAccount {
		return domainerrors.ErrNotAdmin
	}
	return nil
}

// cycleInPhase loads the active cycle and gates on the required phase.
// A missing cycle counts as closed.
func (uc *ElectionUseCase) cycleInPhase(ctx context.Context, phase entities.Phase) (entities.Cycle, error) {
	cycle, found, err := uc.Elections.GetActiveCycle(ctx)
	if err != nil {
		return entities.Cycle{}, err
	}
	if !found || cycle.Phase != phase {
		return entities.Cycle{}, domainerrors.ErrPhaseViolation
	}
	return cycle, nil
}

// advanceStep ticks the administrator-driven step counter. The counter is a
// given primitive; a wiring without one is valid (tests, read-only tools).
func (uc *ElectionUseCase) advanceStep(ctx context.Context) {
	if uc.Steps == nil {
		return
	}
	if _, err := uc.Steps.AdvanceStep(ctx); err != nil {
		application.ResolveLogger(uc.Logger).Warn("step counter advance failed",
			"event", "election_step_advance_failed",
			"module", "election-core/election-engine",
			"layer", "application",
			"error", err.Error(),
		)
	}
}
