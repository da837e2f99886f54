package commands

import (
	"context"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type ElectCommand struct {
	Admin string
}

// Elect closes voting and picks the winner: most votes, then highest pledged
// funding, then earliest registration. The scan keeps an explicit "no best
// yet" sentinel so a first candidate with zero votes still becomes best, and
// only strict > replaces the best, which makes the earliest-registered
// candidate win remaining ties. Retired candidates are skipped: the winner
// must be active at election time.
//
// The cycle is saved in the electing phase before the scan and in the claim
// phase after it, so the transitional state is observable and no open-phase
// operation can slip in between.
func (uc *ElectionUseCase) Elect(ctx context.Context, cmd ElectCommand) (string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	logger := application.ResolveLogger(uc.Logger)
	if err := uc.requireAdmin(strings.TrimSpace(cmd.Admin)); err != nil {
		return "", err
	}
	cycle, err := uc.cycleInPhase(ctx, entities.PhaseOpen)
	if err != nil {
		return "", err
	}
	if cycle.HasWinner() {
		return "", domainerrors.ErrPhaseViolation
	}

	roster, err := uc.Elections.ListRoster(ctx, cycle.CycleID)
	if err != nil {
		return "", err
	}
	if len(roster) == 0 {
		return "", domainerrors.ErrNoCandidates
	}

	now := uc.now()
	cycle.Phase = entities.PhaseElecting
	cycle.UpdatedAt = now
	if err := uc.Elections.SaveCycle(ctx, cycle); err != nil {
		return "", err
	}

	var best *entities.CandidateProfile
	for i := range roster {
		candidate := roster[i]
		if !candidate.Active {
			continue
		}
		switch {
		case best == nil:
			best = &roster[i]
		case candidate.Votes > best.Votes:
			best = &roster[i]
		case candidate.Votes == best.Votes && candidate.PledgedTotal > best.PledgedTotal:
			best = &roster[i]
		}
	}
	if best == nil {
		// Every candidate delegated away; restore the open phase so the
		// administrator can decide how to end the cycle.
		cycle.Phase = entities.PhaseOpen
		cycle.UpdatedAt = now
		if err := uc.Elections.SaveCycle(ctx, cycle); err != nil {
			return "", err
		}
		return "", domainerrors.ErrNoCandidates
	}

	winner := best.Account
	cycle.Winner = &winner
	cycle.Phase = entities.PhaseClaim
	cycle.UpdatedAt = now
	if err := uc.Elections.SaveCycle(ctx, cycle); err != nil {
		return "", err
	}
	uc.advanceStep(ctx)

	if err := uc.appendElectionEvent(ctx, "winner.elected", winner, now, map[string]any{
		"cycle_id":      cycle.CycleID,
		"winner":        winner,
		"votes":         best.Votes,
		"pledged_total": best.PledgedTotal,
		"roster_index":  best.RosterIndex,
	}); err != nil {
		return "", err
	}

	logger.Info("winner elected",
		"event", "election_winner_elected",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"winner", winner,
		"votes", best.Votes,
		"pledged_total", best.PledgedTotal,
	)
	return winner, nil
}
