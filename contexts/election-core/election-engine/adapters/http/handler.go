package httpadapter

import (
	"context"
	"log/slog"

	"electra/contexts/election-core/election-engine/application/commands"
	"electra/contexts/election-core/election-engine/application/queries"
	httptransport "electra/contexts/election-core/election-engine/transport/http"
)

type Handler struct {
	Elections *commands.ElectionUseCase
	Standings queries.StandingsUseCase
	Logger    *slog.Logger
}

func (h Handler) StartCycleHandler(ctx context.Context, admin string, req httptransport.StartCycleRequest) (httptransport.CycleResponse, error) {
	cycle, err := h.Elections.StartCycle(ctx, commands.StartCycleCommand{
		Admin:         admin,
		VoteThreshold: req.VoteThreshold,
	})
	if err != nil {
		return httptransport.CycleResponse{}, err
	}
	return httptransport.CycleResponse{
		CycleID:       cycle.CycleID,
		Phase:         string(cycle.Phase),
		VoteThreshold: cycle.VoteThreshold,
		Winner:        cycle.WinnerAccount(),
	}, nil
}

func (h Handler) CloseCycleHandler(ctx context.Context, admin string) (httptransport.CycleResponse, error) {
	cycle, err := h.Elections.CloseCycle(ctx, commands.CloseCycleCommand{Admin: admin})
	if err != nil {
		return httptransport.CycleResponse{}, err
	}
	return httptransport.CycleResponse{
		CycleID:       cycle.CycleID,
		Phase:         string(cycle.Phase),
		VoteThreshold: cycle.VoteThreshold,
		Winner:        cycle.WinnerAccount(),
	}, nil
}

func (h Handler) RegisterCandidateHandler(ctx context.Context, caller string, req httptransport.RegisterCandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Elections.Register(ctx, commands.RegisterCommand{
		Caller:      caller,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return httptransport.CandidateResponse{
		Account:      candidate.Account,
		DisplayName:  candidate.DisplayName,
		Active:       candidate.Active,
		Votes:        candidate.Votes,
		PledgedTotal: candidate.PledgedTotal,
		RosterIndex:  candidate.RosterIndex,
	}, nil
}

func (h Handler) CastVoteHandler(ctx context.Context, caller string, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	record, err := h.Elections.Vote(ctx, commands.VoteCommand{
		Caller:    caller,
		Candidate: req.Candidate,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		Voter:           record.Voter,
		ChosenCandidate: record.ChosenCandidate,
	}, nil
}

func (h Handler) PledgeHandler(ctx context.Context, caller string, req httptransport.PledgeRequest) (httptransport.PledgeResponse, error) {
	record, err := h.Elections.Fund(ctx, commands.FundCommand{
		Caller:    caller,
		Candidate: req.Candidate,
		Amount:    req.Amount,
	})
	if err != nil {
		return httptransport.PledgeResponse{}, err
	}
	return httptransport.PledgeResponse{
		Backer:        record.Backer,
		AmountPledged: record.AmountPledged,
	}, nil
}

func (h Handler) DelegateHandler(ctx context.Context, caller string, req httptransport.DelegateRequest) error {
	return h.Elections.Delegate(ctx, commands.DelegateCommand{
		Caller:    caller,
		Candidate: req.Candidate,
	})
}

func (h Handler) ElectHandler(ctx context.Context, admin string) (httptransport.ElectResponse, error) {
	winner, err := h.Elections.Elect(ctx, commands.ElectCommand{Admin: admin})
	if err != nil {
		return httptransport.ElectResponse{}, err
	}
	return httptransport.ElectResponse{Winner: winner}, nil
}

func (h Handler) WinnerClaimHandler(ctx context.Context, caller string) (httptransport.ClaimResponse, error) {
	amount, err := h.Elections.WinnerClaim(ctx, commands.ClaimCommand{Caller: caller})
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	return httptransport.ClaimResponse{Claimant: caller, Amount: amount}, nil
}

func (h Handler) BackerClaimHandler(ctx context.Context, caller string) (httptransport.ClaimResponse, error) {
	amount, err := h.Elections.BackerClaim(ctx, commands.ClaimCommand{Caller: caller})
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	return httptransport.ClaimResponse{Claimant: caller, Amount: amount}, nil
}

func (h Handler) CycleStatusHandler(ctx context.Context) (httptransport.CycleStatusResponse, error) {
	status, err := h.Standings.CycleStatus(ctx)
	if err != nil {
		return httptransport.CycleStatusResponse{}, err
	}
	return httptransport.CycleStatusResponse{
		CycleID:        status.CycleID,
		Phase:          string(status.Phase),
		VoteThreshold:  status.VoteThreshold,
		Winner:         status.Winner,
		CandidateCount: status.CandidateCount,
		ActiveCount:    status.ActiveCount,
		EscrowedTotal:  status.EscrowedTotal,
	}, nil
}

func (h Handler) StandingsHandler(ctx context.Context) (httptransport.StandingsResponse, error) {
	standings, err := h.Standings.Standings(ctx)
	if err != nil {
		return httptransport.StandingsResponse{}, err
	}
	items := make([]httptransport.StandingItem, 0, len(standings))
	for _, standing := range standings {
		items = append(items, httptransport.StandingItem{
			Account:      standing.Account,
			DisplayName:  standing.DisplayName,
			Active:       standing.Active,
			Votes:        standing.Votes,
			PledgedTotal: standing.PledgedTotal,
			RosterIndex:  standing.RosterIndex,
			IsWinner:     standing.IsWinner,
		})
	}
	return httptransport.StandingsResponse{Items: items}, nil
}
