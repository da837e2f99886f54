package commands

import (
	"context"
	"fmt"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type FundCommand struct {
	Caller    string
	Candidate string
	Amount    int64
}

// Fund escrows a pledge for the candidate the caller voted for. Every
// precondition is checked before any state moves; the wallet transfer runs
// before the records are written, so a rejected transfer leaves no trace.
func (uc *ElectionUseCase) Fund(ctx context.Context, cmd FundCommand) (entities.FundingRecord, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	caller := strings.TrimSpace(cmd.Caller)
	target := strings.TrimSpace(cmd.Candidate)
	if caller == "" || target == "" || cmd.Amount <= 0 {
		return entities.FundingRecord{}, domainerrors.ErrInvalidInput
	}

	cycle, err := uc.cycleInPhase(ctx, entities.PhaseOpen)
	if err != nil {
		return entities.FundingRecord{}, err
	}

	candidate, found, err := uc.Elections.GetCandidate(ctx, cycle.CycleID, target)
	if err != nil {
		return entities.FundingRecord{}, err
	}
	if !found || !candidate.Active {
		return entities.FundingRecord{}, domainerrors.ErrNotACandidate
	}
	if candidate.Votes < cycle.VoteThreshold {
		return entities.FundingRecord{}, domainerrors.ErrBelowThreshold
	}
	if cmd.Amount < uc.PledgeFloor {
		return entities.FundingRecord{}, domainerrors.ErrBelowThreshold
	}

	voter, found, err := uc.Elections.GetVoterRecord(ctx, cycle.CycleID, caller)
	if err != nil {
		return entities.FundingRecord{}, err
	}
	if !found || voter.ChosenCandidate != target {
		return entities.FundingRecord{}, domainerrors.ErrNotVotedForThisCandidate
	}

	if err := uc.Escrow.Transfer(ctx, caller, uc.EscrowAccount, cmd.Amount); err != nil {
		return entities.FundingRecord{}, fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
	}

	now := uc.now()
	record, found, err := uc.Elections.GetFundingRecord(ctx, cycle.CycleID, caller)
	if err != nil {
		return entities.FundingRecord{}, err
	}
	if !found {
		record = entities.FundingRecord{CycleID: cycle.CycleID, Backer: caller}
	}
	record.AmountPledged += cmd.Amount
	record.UpdatedAt = now
	candidate.PledgedTotal += cmd.Amount
	candidate.UpdatedAt = now
	if err := uc.Elections.SaveFundingRecord(ctx, record); err != nil {
		// The value is already in escrow; send it back so a storage failure
		// never strands the pledge without a record to claim it against.
		if refundErr := uc.Escrow.Transfer(ctx, uc.EscrowAccount, caller, cmd.Amount); refundErr != nil {
			return entities.FundingRecord{}, fmt.Errorf("save funding record: %v (refund failed: %v)", err, refundErr)
		}
		return entities.FundingRecord{}, err
	}
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		record.AmountPledged -= cmd.Amount
		record.UpdatedAt = now
		if restoreErr := uc.Elections.SaveFundingRecord(ctx, record); restoreErr != nil {
			return entities.FundingRecord{}, fmt.Errorf("save candidate: %v (record restore failed: %v)", err, restoreErr)
		}
		if refundErr := uc.Escrow.Transfer(ctx, uc.EscrowAccount, caller, cmd.Amount); refundErr != nil {
			return entities.FundingRecord{}, fmt.Errorf("save candidate: %v (refund failed: %v)", err, refundErr)
		}
		return entities.FundingRecord{}, err
	}

	if err := uc.appendElectionEvent(ctx, "funds.pledged", target, now, map[string]any{
		"cycle_id":       cycle.CycleID,
		"backer":         caller,
		"candidate":      target,
		"amount":         cmd.Amount,
		"amount_pledged": record.AmountPledged,
		"pledged_total":  candidate.PledgedTotal,
	}); err != nil {
		return entities.FundingRecord{}, err
	}

	application.ResolveLogger(uc.Logger).Info("funds pledged",
		"event", "election_funds_pledged",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"backer", caller,
		"candidate", target,
		"amount", cmd.Amount,
	)
	return record, nil
}
