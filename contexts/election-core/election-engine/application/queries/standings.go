package queries

import (
	"context"

	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
	"electra/contexts/election-core/election-engine/ports"
)

// StandingsUseCase serves the read side: cycle status and the roster with
// current tallies, in registration order.
type StandingsUseCase struct {
	Elections ports.ElectionRepository
}

func (uc StandingsUseCase) CycleStatus(ctx context.Context) (ports.CycleStatus, error) {
	cycle, found, err := uc.Elections.GetActiveCycle(ctx)
	if err != nil {
		return ports.CycleStatus{}, err
	}
	if !found {
		return ports.CycleStatus{}, domainerrors.ErrPhaseViolation
	}

	roster, err := uc.Elections.ListRoster(ctx, cycle.CycleID)
	if err != nil {
		return ports.CycleStatus{}, err
	}
	active := 0
	var escrowed int64
	for _, candidate := range roster {
		if candidate.Active {
			active++
		}
		escrowed += candidate.PledgedTotal
	}
	return ports.CycleStatus{
		CycleID:        cycle.CycleID,
		Phase:          cycle.Phase,
		VoteThreshold:  cycle.VoteThreshold,
		Winner:         cycle.WinnerAccount(),
		CandidateCount: len(roster),
		ActiveCount:    active,
		EscrowedTotal:  escrowed,
		StartedAt:      cycle.StartedAt,
	}, nil
}

func (uc StandingsUseCase) Standings(ctx context.Context) ([]entities.CandidateStanding, error) {
	cycle, found, err := uc.Elections.GetActiveCycle(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrPhaseViolation
	}

	roster, err := uc.Elections.ListRoster(ctx, cycle.CycleID)
	if err != nil {
		return nil, err
	}
	items := make([]entities.CandidateStanding, 0, len(roster))
	for _, candidate := range roster {
		items = append(items, entities.CandidateStanding{
			Account:      candidate.Account,
			DisplayName:  candidate.DisplayName,
			Active:       candidate.Active,
			Votes:        candidate.Votes,
			PledgedTotal: candidate.PledgedTotal,
			RosterIndex:  candidate.RosterIndex,
			IsWinner:     cycle.HasWinner() && cycle.WinnerAccount() == candidate.Account,
		})
	}
	return items, nil
}
