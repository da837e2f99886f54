package commands

import (
	"context"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type RegisterCommand struct {
	Caller      string
	DisplayName string
}

// Register declares candidacy. Any existing profile this cycle, active or
// retired, rejects the call: a delegated-out candidate may not re-register.
func (uc *ElectionUseCase) Register(ctx context.Context, cmd RegisterCommand) (entities.CandidateProfile, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	caller := strings.TrimSpace(cmd.Caller)
	name := strings.TrimSpace(cmd.DisplayName)
	if caller == "" || name == "" {
		return entities.CandidateProfile{}, domainerrors.ErrInvalidInput
	}

	cycle, err := uc.cycleInPhase(ctx, entities.PhaseOpen)
	if err != nil {
		return entities.CandidateProfile{}, err
	}
	if _, found, err := uc.Elections.GetCandidate(ctx, cycle.CycleID, caller); err != nil {
		return entities.CandidateProfile{}, err
	} else if found {
		return entities.CandidateProfile{}, domainerrors.ErrAlreadyCandidate
	}

	roster, err := uc.Elections.ListRoster(ctx, cycle.CycleID)
	if err != nil {
		return entities.CandidateProfile{}, err
	}

	now := uc.now()
	candidate := entities.CandidateProfile{
		CycleID:      cycle.CycleID,
		Account:      caller,
		DisplayName:  name,
		Active:       true,
		RosterIndex:  len(roster),
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		return entities.CandidateProfile{}, err
	}

	if err := uc.appendElectionEvent(ctx, "candidate.registered", caller, now, map[string]any{
		"cycle_id":     cycle.CycleID,
		"account":      caller,
		"display_name": name,
		"roster_index": candidate.RosterIndex,
	}); err != nil {
		return entities.CandidateProfile{}, err
	}

	application.ResolveLogger(uc.Logger).Info("candidate registered",
		"event", "election_candidate_registered",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"account", caller,
		"roster_index", candidate.RosterIndex,
	)
	return candidate, nil
}
