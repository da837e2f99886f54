package commands

import (
	"context"
	"fmt"
	"strings"

	application "electra/contexts/election-core/election-engine/application"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type ClaimCommand struct {
	Caller string
}

// WinnerClaim pays the winner their full pledged total. The record is zeroed
// before the transfer is attempted; a rejected transfer restores the balance
// and reports TransferFailed. The zero-then-transfer order is the custody
// contract: once the balance is zeroed, no second claim can observe value.
func (uc *ElectionUseCase) WinnerClaim(ctx context.Context, cmd ClaimCommand) (int64, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	cycle, err := uc.cycleInPhase(ctx, entities.PhaseClaim)
	if err != nil {
		return 0, err
	}
	if !cycle.HasWinner() {
		return 0, domainerrors.ErrNoWinner
	}
	if caller != cycle.WinnerAccount() {
		return 0, domainerrors.ErrNotWinner
	}

	candidate, found, err := uc.Elections.GetCandidate(ctx, cycle.CycleID, caller)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrCandidateNotFound
	}
	amount := candidate.PledgedTotal
	if amount <= 0 {
		return 0, domainerrors.ErrNothingToClaim
	}

	now := uc.now()
	candidate.PledgedTotal = 0
	candidate.UpdatedAt = now
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		return 0, err
	}
	if err := uc.Escrow.Transfer(ctx, uc.EscrowAccount, caller, amount); err != nil {
		candidate.PledgedTotal = amount
		if restoreErr := uc.Elections.SaveCandidate(ctx, candidate); restoreErr != nil {
			// The rollback itself failed; surface both, the escrow row must
			// not silently lose value.
			return 0, fmt.Errorf("%w: %v (rollback failed: %v)", domainerrors.ErrTransferFailed, err, restoreErr)
		}
		return 0, fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
	}

	if err := uc.appendElectionEvent(ctx, "claim.paid", caller, now, map[string]any{
		"cycle_id": cycle.CycleID,
		"claimant": caller,
		"kind":     "winner",
		"amount":   amount,
	}); err != nil {
		return 0, err
	}

	application.ResolveLogger(uc.Logger).Info("winner claim paid",
		"event", "election_winner_claim_paid",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"claimant", caller,
		"amount", amount,
	)
	return amount, nil
}

// BackerClaim refunds a losing backer their own pledge, with the same
// zero-then-transfer discipline applied to the funding record. A backer of
// the winning candidate has nothing to reclaim: their pledge belongs to the
// winner.
func (uc *ElectionUseCase) BackerClaim(ctx context.Context, cmd ClaimCommand) (int64, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	cycle, err := uc.cycleInPhase(ctx, entities.PhaseClaim)
	if err != nil {
		return 0, err
	}
	if !cycle.HasWinner() {
		return 0, domainerrors.ErrNoWinner
	}

	voter, found, err := uc.Elections.GetVoterRecord(ctx, cycle.CycleID, caller)
	if err != nil {
		return 0, err
	}
	if found && voter.ChosenCandidate == cycle.WinnerAccount() {
		return 0, domainerrors.ErrNothingToClaim
	}

	record, found, err := uc.Elections.GetFundingRecord(ctx, cycle.CycleID, caller)
	if err != nil {
		return 0, err
	}
	if !found || record.AmountPledged <= 0 {
		return 0, domainerrors.ErrNothingToClaim
	}

	now := uc.now()
	amount := record.AmountPledged
	record.AmountPledged = 0
	record.UpdatedAt = now
	if err := uc.Elections.SaveFundingRecord(ctx, record); err != nil {
		return 0, err
	}
	if err := uc.Escrow.Transfer(ctx, uc.EscrowAccount, caller, amount); err != nil {
		record.AmountPledged = amount
		if restoreErr := uc.Elections.SaveFundingRecord(ctx, record); restoreErr != nil {
			return 0, fmt.Errorf("%w: %v (rollback failed: %v)", domainerrors.ErrTransferFailed, err, restoreErr)
		}
		return 0, fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
	}

	if err := uc.appendElectionEvent(ctx, "claim.paid", caller, now, map[string]any{
		"cycle_id": cycle.CycleID,
		"claimant": caller,
		"kind":     "backer",
		"amount":   amount,
	}); err != nil {
		return 0, err
	}

	application.ResolveLogger(uc.Logger).Info("backer claim paid",
		"event", "election_backer_claim_paid",
		"module", "election-core/election-engine",
		"layer", "application",
		"cycle_id", cycle.CycleID,
		"claimant", caller,
		"amount", amount,
	)
	return amount, nil
}
