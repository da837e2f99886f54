package commands

import (
	"context"
	"fmt"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type VoteCommand struct {
	Caller    string
	Candidate string
}

// Vote records the caller's single choice and increments the candidate tally
// by exactly one. A voter record, once written, never changes. Self-votes are
// allowed.
func (uc *ElectionUseCase) Vote(ctx context.Context, cmd VoteCommand) (entities.VoterRecord, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	caller := strings.TrimSpace(cmd.Caller)
	target := strings.TrimSpace(cmd.Candidate)
	if caller == "" || target == "" {
		return entities.VoterRecord{}, domainerrors.ErrInvalidInput
	}

	cycle, err := uc.cycleInPhase(ctx, entities.PhaseOpen)
	if err != nil {
		return entities.VoterRecord{}, err
	}
	if _, found, err := uc.Elections.GetVoterRecord(ctx, cycle.CycleID, caller); err != nil {
		return entities.VoterRecord{}, err
	} else if found {
		return entities.VoterRecord{}, domainerrors.ErrAlreadyVoted
	}

	candidate, found, err := uc.Elections.GetCandidate(ctx, cycle.CycleID, target)
	if err != nil {
		return entities.VoterRecord{}, err
	}
	if !found || !candidate.Active {
		return entities.VoterRecord{}, domainerrors.ErrNotACandidate
	}

	now := uc.now()
	record := entities.VoterRecord{
		CycleID:         cycle.CycleID,
		Voter:           caller,
		ChosenCandidate: target,
		VotedAt:         now,
	}
	candidate.Votes++
	candidate.UpdatedAt = now
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		return entities.VoterRecord{}, err
	}
	if err := uc.Elections.SaveVoterRecord(ctx, record); err != nil {
		// The voter record is write-once, so undo the tally rather than leave
		// a vote counted that no record backs.
		candidate.Votes--
		candidate.UpdatedAt = now
		if restoreErr := uc.Elections.SaveCandidate(ctx, candidate); restoreErr != nil {
			return entities.VoterRecord{}, fmt.Errorf("save voter record: %v (tally restore failed: %v)", err, restoreErr)
		}
		return entities.VoterRecord{}, err
	}

	if err := uc.appendElectionEvent(ctx, "vote.cast", target, now, map[string]any{
		"cycle_id":  cycle.CycleID,
		"voter":     caller,
		"candidate": target,
		"votes":     candidate.Votes,
	}); err != nil {
		return entities.VoterRecord{}, err
	}

	application.ResolveLogger(uc.Logger).Info("vote cast",
		"event", "election_vote_cast",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"voter", caller,
		"candidate", target,
	)
	return record, nil
}
