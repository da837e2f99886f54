package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"electra/contexts/election-core/election-engine/adapters/memory"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
	"electra/contexts/election-core/election-engine/ports"
)

// flakyRepo fails exactly one designated save so tests can exercise the
// compensation paths around the escrow transfer.
type flakyRepo struct {
	ports.ElectionRepository
	failSaveFunding   bool
	failSaveCandidate bool
	failSaveVoter     bool
}

func (r *flakyRepo) SaveFundingRecord(ctx context.Context, record entities.FundingRecord) error {
	if r.failSaveFunding {
		r.failSaveFunding = false
		return fmt.Errorf("storage unavailable")
	}
	return r.ElectionRepository.SaveFundingRecord(ctx, record)
}

func (r *flakyRepo) SaveCandidate(ctx context.Context, candidate entities.CandidateProfile) error {
	if r.failSaveCandidate {
		r.failSaveCandidate = false
		return fmt.Errorf("storage unavailable")
	}
	return r.ElectionRepository.SaveCandidate(ctx, candidate)
}

func (r *flakyRepo) SaveVoterRecord(ctx context.Context, record entities.VoterRecord) error {
	if r.failSaveVoter {
		r.failSaveVoter = false
		return fmt.Errorf("storage unavailable")
	}
	return r.ElectionRepository.SaveVoterRecord(ctx, record)
}

func newFlakyFixture(ledger *fakeLedger) (*ElectionUseCase, *flakyRepo) {
	store := memory.NewStore()
	repo := &flakyRepo{ElectionRepository: store}
	uc := &ElectionUseCase{
		Elections:     repo,
		Escrow:        ledger,
		Outbox:        store,
		Clock:         store,
		IDGen:         store,
		AdminAccount:  "admin",
		EscrowAccount: "escrow:election",
	}
	return uc, repo
}

func TestFundRecordSaveFailureRefundsEscrow(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100})
	uc, repo := newFlakyFixture(ledger)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "alice")
	mustVote(t, uc, "v1", "alice")

	repo.failSaveFunding = true
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "alice", Amount: 50}); err == nil {
		t.Fatal("expected fund to fail on record save")
	}

	// The transfer already happened; the failure path must send it back.
	if ledger.balances["escrow:election"] != 0 {
		t.Fatalf("expected escrow refunded to 0, got %d", ledger.balances["escrow:election"])
	}
	if ledger.balances["v1"] != 100 {
		t.Fatalf("expected v1 restored to 100, got %d", ledger.balances["v1"])
	}
	cycleID := activeCycleID(t, uc)
	if _, found, _ := uc.Elections.GetFundingRecord(context.Background(), cycleID, "v1"); found {
		t.Fatal("no funding record may survive a failed pledge")
	}

	// The pledge can simply be resubmitted.
	mustFund(t, uc, "v1", "alice", 50)
	if ledger.balances["escrow:election"] != 50 {
		t.Fatalf("expected escrow 50 after retry, got %d", ledger.balances["escrow:election"])
	}
}

func TestFundCandidateSaveFailureRestoresRecordAndEscrow(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100})
	uc, repo := newFlakyFixture(ledger)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "alice")
	mustVote(t, uc, "v1", "alice")
	mustFund(t, uc, "v1", "alice", 20)

	repo.failSaveCandidate = true
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "alice", Amount: 30}); err == nil {
		t.Fatal("expected fund to fail on candidate save")
	}

	cycleID := activeCycleID(t, uc)
	record, _, _ := uc.Elections.GetFundingRecord(context.Background(), cycleID, "v1")
	candidate, _, _ := uc.Elections.GetCandidate(context.Background(), cycleID, "alice")
	if record.AmountPledged != 20 || candidate.PledgedTotal != 20 {
		t.Fatalf("expected record and tally restored to 20/20, got %d/%d", record.AmountPledged, candidate.PledgedTotal)
	}
	if ledger.balances["escrow:election"] != 20 {
		t.Fatalf("expected escrow back at 20, got %d", ledger.balances["escrow:election"])
	}
	if ledger.balances["v1"] != 80 {
		t.Fatalf("expected v1 back at 80, got %d", ledger.balances["v1"])
	}
}

func TestVoteRecordSaveFailureRestoresTally(t *testing.T) {
	uc, repo := newFlakyFixture(newFakeLedger(nil))
	mustStartCycle(t, uc, 0)
	mustRegister(t, uc, "alice")

	repo.failSaveVoter = true
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: "v1", Candidate: "alice"}); err == nil {
		t.Fatal("expected vote to fail on record save")
	}

	cycleID := activeCycleID(t, uc)
	candidate, _, _ := uc.Elections.GetCandidate(context.Background(), cycleID, "alice")
	if candidate.Votes != 0 {
		t.Fatalf("expected tally restored to 0, got %d", candidate.Votes)
	}

	// The voter never acquired a record, so the retry counts normally.
	mustVote(t, uc, "v1", "alice")
	candidate, _, _ = uc.Elections.GetCandidate(context.Background(), cycleID, "alice")
	if candidate.Votes != 1 {
		t.Fatalf("expected tally 1 after retry, got %d", candidate.Votes)
	}
}

// TestInvariantsHoldAcrossRandomOperationSequences drives random operation
// sequences through whole cycles and re-checks the accounting invariants
// after every single step: escrowed value always equals both the sum of
// funding records and the sum of candidate pledged totals, tallies always
// equal accepted votes, total value never changes, and claims drain the
// escrow account to exactly zero.
func TestInvariantsHoldAcrossRandomOperationSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	actors := []string{"u0", "u1", "u2", "u3", "u4", "u5"}
	const seedBalance = int64(200)
	totalValue := seedBalance * int64(len(actors))

	for round := 0; round < 60; round++ {
		seed := map[string]int64{}
		for _, actor := range actors {
			seed[actor] = seedBalance
		}
		ledger := newFakeLedger(seed)
		uc, _ := newElectionFixture(ledger, 1)
		mustStartCycle(t, uc, int64(rng.Intn(3)))

		// The anchor never delegates, so the roster always holds an active
		// candidate by the time the election runs.
		anchor := fmt.Sprintf("anchor-%d", round)
		mustRegister(t, uc, anchor)
		candidates := append([]string{anchor}, actors...)

		votesAccepted := 0
		for step := 0; step < 25; step++ {
			actor := actors[rng.Intn(len(actors))]
			target := candidates[rng.Intn(len(candidates))]
			var err error
			switch rng.Intn(4) {
			case 0:
				_, err = uc.Register(context.Background(), RegisterCommand{Caller: actor, DisplayName: actor})
			case 1:
				_, err = uc.Vote(context.Background(), VoteCommand{Caller: actor, Candidate: target})
				if err == nil {
					votesAccepted++
				}
			case 2:
				_, err = uc.Fund(context.Background(), FundCommand{Caller: actor, Candidate: target, Amount: int64(1 + rng.Intn(40))})
			case 3:
				err = uc.Delegate(context.Background(), DelegateCommand{Caller: actor, Candidate: target})
			}
			if err != nil && !isExpectedRejection(err) {
				t.Fatalf("round %d step %d: unexpected error: %v", round, step, err)
			}
			assertAccountingInvariants(t, uc, ledger, totalValue, votesAccepted)
		}

		winner, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"})
		if err != nil {
			t.Fatalf("round %d: elect failed: %v", round, err)
		}

		if _, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: winner}); err != nil {
			if !errors.Is(err, domainerrors.ErrNothingToClaim) {
				t.Fatalf("round %d: winner claim failed: %v", round, err)
			}
		} else if _, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: winner}); !errors.Is(err, domainerrors.ErrNothingToClaim) {
			t.Fatalf("round %d: second winner claim must find nothing, got %v", round, err)
		}

		for _, actor := range actors {
			if _, err := uc.BackerClaim(context.Background(), ClaimCommand{Caller: actor}); err != nil {
				if !errors.Is(err, domainerrors.ErrNothingToClaim) {
					t.Fatalf("round %d: backer claim by %s failed: %v", round, actor, err)
				}
				continue
			}
			if _, err := uc.BackerClaim(context.Background(), ClaimCommand{Caller: actor}); !errors.Is(err, domainerrors.ErrNothingToClaim) {
				t.Fatalf("round %d: second refund for %s must find nothing, got %v", round, actor, err)
			}
		}

		// Every pledge went to exactly one party; nothing is stranded.
		if ledger.balances["escrow:election"] != 0 {
			t.Fatalf("round %d: escrow holds %d after all claims", round, ledger.balances["escrow:election"])
		}
		if sumBalances(ledger) != totalValue {
			t.Fatalf("round %d: total value drifted to %d", round, sumBalances(ledger))
		}

		if _, err := uc.CloseCycle(context.Background(), CloseCycleCommand{Admin: "admin"}); err != nil {
			t.Fatalf("round %d: close cycle failed: %v", round, err)
		}
	}
}

func assertAccountingInvariants(t *testing.T, uc *ElectionUseCase, ledger *fakeLedger, totalValue int64, votesAccepted int) {
	t.Helper()
	cycleID := activeCycleID(t, uc)
	roster, err := uc.Elections.ListRoster(context.Background(), cycleID)
	if err != nil {
		t.Fatalf("list roster failed: %v", err)
	}
	records, err := uc.Elections.ListFundingRecords(context.Background(), cycleID)
	if err != nil {
		t.Fatalf("list funding records failed: %v", err)
	}

	var pledgedByCandidate, pledgedByBacker, tally int64
	for _, candidate := range roster {
		pledgedByCandidate += candidate.PledgedTotal
		tally += candidate.Votes
	}
	for _, record := range records {
		pledgedByBacker += record.AmountPledged
	}

	escrow := ledger.balances["escrow:election"]
	if pledgedByCandidate != escrow || pledgedByBacker != escrow {
		t.Fatalf("escrow accounting diverged: candidates=%d backers=%d escrow=%d",
			pledgedByCandidate, pledgedByBacker, escrow)
	}
	if tally != int64(votesAccepted) {
		t.Fatalf("tallies diverged from accepted votes: %d vs %d", tally, votesAccepted)
	}
	if sumBalances(ledger) != totalValue {
		t.Fatalf("total value drifted to %d", sumBalances(ledger))
	}
}

func sumBalances(ledger *fakeLedger) int64 {
	var total int64
	for _, balance := range ledger.balances {
		total += balance
	}
	return total
}

func isExpectedRejection(err error) bool {
	for _, sentinel := range []error{
		domainerrors.ErrAlreadyCandidate,
		domainerrors.ErrAlreadyVoted,
		domainerrors.ErrNotACandidate,
		domainerrors.ErrBelowThreshold,
		domainerrors.ErrNotVotedForThisCandidate,
		domainerrors.ErrSelfDelegation,
		domainerrors.ErrTransferFailed,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
