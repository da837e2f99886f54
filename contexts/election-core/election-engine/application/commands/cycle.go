package commands

import (
	"context"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

// StartCycleCommand opens a fresh cycle with the per-cycle vote threshold for
// funding and delegation eligibility.
type StartCycleCommand struct {
	Admin         string
	VoteThreshold int64
}

type CloseCycleCommand struct {
	Admin string
}

// StartCycle transitions closed→open. It fails if any cycle is still active:
// there is no in-place reset, a finished cycle must be closed first.
func (uc *ElectionUseCase) StartCycle(ctx context.Context, cmd StartCycleCommand) (entities.Cycle, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	logger := application.ResolveLogger(uc.Logger)
	if err := uc.requireAdmin(strings.TrimSpace(cmd.Admin)); err != nil {
		return entities.Cycle{}, err
	}
	if cmd.VoteThreshold < 0 {
		return entities.Cycle{}, domainerrors.ErrInvalidInput
	}

	if _, found, err := uc.Elections.GetActiveCycle(ctx); err != nil {
		return entities.Cycle{}, err
	} else if found {
		logger.Warn("cycle start rejected while a cycle is active",
			"event", "election_cycle_start_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"admin", strings.TrimSpace(cmd.Admin),
		)
		return entities.Cycle{}, domainerrors.ErrPhaseViolation
	}

	cycleID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Cycle{}, err
	}
	now := uc.now()
	cycle := entities.Cycle{
		CycleID:       cycleID,
		Phase:         entities.PhaseOpen,
		VoteThreshold: cmd.VoteThreshold,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Elections.SaveCycle(ctx, cycle); err != nil {
		return entities.Cycle{}, err
	}
	uc.advanceStep(ctx)

	if err := uc.appendElectionEvent(ctx, "cycle.started", cycle.CycleID, now, map[string]any{
		"cycle_id":       cycle.CycleID,
		"vote_threshold": cycle.VoteThreshold,
	}); err != nil {
		return entities.Cycle{}, err
	}

	logger.Info("election cycle started",
		"event", "election_cycle_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"vote_threshold", cycle.VoteThreshold,
	)
	return cycle, nil
}

// CloseCycle transitions claim→closed, archiving the finished cycle so the
// next StartCycle is permitted.
func (uc *ElectionUseCase) CloseCycle(ctx context.Context, cmd CloseCycleCommand) (entities.Cycle, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.requireAdmin(strings.TrimSpace(cmd.Admin)); err != nil {
		return entities.Cycle{}, err
	}
	cycle, err := uc.cycleInPhase(ctx, entities.PhaseClaim)
	if err != nil {
		return entities.Cycle{}, err
	}

	now := uc.now()
	closedAt := now
	cycle.Phase = entities.PhaseClosed
	cycle.ClosedAt = &closedAt
	cycle.UpdatedAt = now
	if err := uc.Elections.SaveCycle(ctx, cycle); err != nil {
		return entities.Cycle{}, err
	}
	uc.advanceStep(ctx)

	if err := uc.appendElectionEvent(ctx, "cycle.closed", cycle.CycleID, now, map[string]any{
		"cycle_id": cycle.CycleID,
		"winner":   cycle.WinnerAccount(),
	}); err != nil {
		return entities.Cycle{}, err
	}

	application.ResolveLogger(uc.Logger).Info("election cycle closed",
		"event", "election_cycle_closed",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
	)
	return cycle, nil
}
