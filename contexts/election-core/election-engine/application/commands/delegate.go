package commands

import (
	"context"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type DelegateCommand struct {
	Caller    string
	Candidate string
}

// Delegate merges the caller's tally into the target and retires the caller
// for the cycle. Votes move; pledged funds do not: escrowed pledges stay
// attached to the original candidate and are claimed against that candidate.
// A second delegate call fails NotACandidate because the caller is already
// inactive.
func (uc *ElectionUseCase) Delegate(ctx context.Context, cmd DelegateCommand) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	caller := strings.TrimSpace(cmd.Caller)
	target := strings.TrimSpace(cmd.Candidate)
	if caller == "" || target == "" {
		return domainerrors.ErrInvalidInput
	}

	cycle, err := uc.cycleInPhase(ctx, entities.PhaseOpen)
	if err != nil {
		return err
	}

	source, found, err := uc.Elections.GetCandidate(ctx, cycle.CycleID, caller)
	if err != nil {
		return err
	}
	if !found || !source.Active {
		return domainerrors.ErrNotACandidate
	}
	if caller == target {
		return domainerrors.ErrSelfDelegation
	}

	dest, found, err := uc.Elections.GetCandidate(ctx, cycle.CycleID, target)
	if err != nil {
		return err
	}
	if !found || !dest.Active {
		return domainerrors.ErrNotACandidate
	}
	if dest.Votes < cycle.VoteThreshold {
		return domainerrors.ErrBelowThreshold
	}

	now := uc.now()
	moved := source.Votes
	dest.Votes += moved
	dest.UpdatedAt = now
	source.Votes = 0
	source.Active = false
	source.UpdatedAt = now
	if err := uc.Elections.SaveCandidate(ctx, dest); err != nil {
		return err
	}
	if err := uc.Elections.SaveCandidate(ctx, source); err != nil {
		return err
	}

	if err := uc.appendElectionEvent(ctx, "delegation.performed", caller, now, map[string]any{
		"cycle_id":    cycle.CycleID,
		"from":        caller,
		"to":          target,
		"votes_moved": moved,
		"votes_total": dest.Votes,
	}); err != nil {
		return err
	}

	application.ResolveLogger(uc.Logger).Info("delegation performed",
		"event", "election_delegation_performed",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"from", caller,
		"to", target,
		"votes_moved", moved,
	)
	return nil
}
