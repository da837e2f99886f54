package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"electra/contexts/election-core/election-engine/adapters/memory"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

type fakeLedger struct {
	balances  map[string]int64
	failNext  bool
	transfers int
}

func newFakeLedger(seed map[string]int64) *fakeLedger {
	balances := map[string]int64{}
	for account, amount := range seed {
		balances[account] = amount
	}
	return &fakeLedger{balances: balances}
}

func (l *fakeLedger) Transfer(_ context.Context, from string, to string, amount int64) error {
	if l.failNext {
		l.failNext = false
		return fmt.Errorf("ledger rejected transfer")
	}
	if l.balances[from] < amount {
		return fmt.Errorf("insufficient funds in %s", from)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	l.transfers++
	return nil
}

func newElectionFixture(ledger *fakeLedger, pledgeFloor int64) (*ElectionUseCase, *memory.Store) {
	store := memory.NewStore()
	uc := &ElectionUseCase{
		Elections:     store,
		Escrow:        ledger,
		Outbox:        store,
		Clock:         store,
		IDGen:         store,
		AdminAccount:  "admin",
		EscrowAccount: "escrow:election",
		PledgeFloor:   pledgeFloor,
	}
	return uc, store
}

func mustStartCycle(t *testing.T, uc *ElectionUseCase, threshold int64) {
	t.Helper()
	if _, err := uc.StartCycle(context.Background(), StartCycleCommand{Admin: "admin", VoteThreshold: threshold}); err != nil {
		t.Fatalf("start cycle failed: %v", err)
	}
}

func mustRegister(t *testing.T, uc *ElectionUseCase, account string) {
	t.Helper()
	if _, err := uc.Register(context.Background(), RegisterCommand{Caller: account, DisplayName: account}); err != nil {
		t.Fatalf("register %s failed: %v", account, err)
	}
}

func mustVote(t *testing.T, uc *ElectionUseCase, voter string, candidate string) {
	t.Helper()
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: voter, Candidate: candidate}); err != nil {
		t.Fatalf("vote %s -> %s failed: %v", voter, candidate, err)
	}
}

func mustFund(t *testing.T, uc *ElectionUseCase, backer string, candidate string, amount int64) {
	t.Helper()
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: backer, Candidate: candidate, Amount: amount}); err != nil {
		t.Fatalf("fund %s -> %s failed: %v", backer, candidate, err)
	}
}

func TestStartCycleRequiresAdmin(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)

	if _, err := uc.StartCycle(context.Background(), StartCycleCommand{Admin: "mallory", VoteThreshold: 1}); !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	mustStartCycle(t, uc, 1)
}

func TestStartCycleRejectsWhileCycleActive(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)
	mustStartCycle(t, uc, 0)

	if _, err := uc.StartCycle(context.Background(), StartCycleCommand{Admin: "admin", VoteThreshold: 0}); !errors.Is(err, domainerrors.ErrPhaseViolation) {
		t.Fatalf("expected ErrPhaseViolation, got %v", err)
	}
}

func TestRegisterRejectsDuplicateAndRequiresOpenPhase(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)

	if _, err := uc.Register(context.Background(), RegisterCommand{Caller: "alice", DisplayName: "Alice"}); !errors.Is(err, domainerrors.ErrPhaseViolation) {
		t.Fatalf("expected ErrPhaseViolation before any cycle, got %v", err)
	}

	mustStartCycle(t, uc, 0)
	mustRegister(t, uc, "alice")
	if _, err := uc.Register(context.Background(), RegisterCommand{Caller: "alice", DisplayName: "Alice"}); !errors.Is(err, domainerrors.ErrAlreadyCandidate) {
		t.Fatalf("expected ErrAlreadyCandidate, got %v", err)
	}
}

func TestVoteOncePerVoter(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)
	mustStartCycle(t, uc, 0)
	mustRegister(t, uc, "alice")
	mustRegister(t, uc, "bob")

	mustVote(t, uc, "v1", "alice")
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: "v1", Candidate: "bob"}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: "v2", Candidate: "nobody"}); !errors.Is(err, domainerrors.ErrNotACandidate) {
		t.Fatalf("expected ErrNotACandidate, got %v", err)
	}

	candidate, found, err := uc.Elections.GetCandidate(context.Background(), activeCycleID(t, uc), "alice")
	if err != nil || !found {
		t.Fatalf("candidate lookup failed: found=%v err=%v", found, err)
	}
	if candidate.Votes != 1 {
		t.Fatalf("expected exactly one vote, got %d", candidate.Votes)
	}
}

func TestFundPreconditions(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100, "v2": 100})
	uc, _ := newElectionFixture(ledger, 10)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "alice")
	mustRegister(t, uc, "bob")

	// Nobody has voted for alice yet, so she is below the threshold.
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "alice", Amount: 50}); !errors.Is(err, domainerrors.ErrBelowThreshold) {
		t.Fatalf("expected ErrBelowThreshold for zero votes, got %v", err)
	}

	mustVote(t, uc, "v1", "alice")
	mustVote(t, uc, "v2", "bob")

	// v2 voted for bob, not alice.
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v2", Candidate: "alice", Amount: 50}); !errors.Is(err, domainerrors.ErrNotVotedForThisCandidate) {
		t.Fatalf("expected ErrNotVotedForThisCandidate, got %v", err)
	}
	// Pledge below the fixed floor.
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "alice", Amount: 5}); !errors.Is(err, domainerrors.ErrBelowThreshold) {
		t.Fatalf("expected ErrBelowThreshold for floor violation, got %v", err)
	}
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "nobody", Amount: 50}); !errors.Is(err, domainerrors.ErrNotACandidate) {
		t.Fatalf("expected ErrNotACandidate, got %v", err)
	}

	mustFund(t, uc, "v1", "alice", 50)
	if ledger.balances["v1"] != 50 {
		t.Fatalf("expected v1 balance 50 after pledge, got %d", ledger.balances["v1"])
	}
	if ledger.balances["escrow:election"] != 50 {
		t.Fatalf("expected escrow balance 50, got %d", ledger.balances["escrow:election"])
	}

	// Repeated pledges accumulate on the same record.
	record, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "alice", Amount: 30})
	if err != nil {
		t.Fatalf("second pledge failed: %v", err)
	}
	if record.AmountPledged != 80 {
		t.Fatalf("expected accumulated pledge 80, got %d", record.AmountPledged)
	}
}

func TestFundTransferFailureLeavesNoRecord(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100})
	uc, _ := newElectionFixture(ledger, 0)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "alice")
	mustVote(t, uc, "v1", "alice")

	ledger.failNext = true
	if _, err := uc.Fund(context.Background(), FundCommand{Caller: "v1", Candidate: "alice", Amount: 50}); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	cycleID := activeCycleID(t, uc)
	if _, found, _ := uc.Elections.GetFundingRecord(context.Background(), cycleID, "v1"); found {
		t.Fatal("funding record must not exist after a rejected transfer")
	}
	candidate, _, _ := uc.Elections.GetCandidate(context.Background(), cycleID, "alice")
	if candidate.PledgedTotal != 0 {
		t.Fatalf("expected pledged total 0 after rejected transfer, got %d", candidate.PledgedTotal)
	}
}

func TestDelegateMovesVotesNotFunds(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100, "v2": 100, "v3": 100, "v4": 100, "v5": 100, "v6": 100, "v7": 100, "v8": 100})
	uc, _ := newElectionFixture(ledger, 0)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "a")
	mustRegister(t, uc, "b")

	for _, voter := range []string{"v1", "v2", "v3"} {
		mustVote(t, uc, voter, "a")
	}
	for _, voter := range []string{"v4", "v5", "v6", "v7", "v8"} {
		mustVote(t, uc, voter, "b")
	}
	mustFund(t, uc, "v1", "a", 40)

	if err := uc.Delegate(context.Background(), DelegateCommand{Caller: "a", Candidate: "a"}); !errors.Is(err, domainerrors.ErrSelfDelegation) {
		t.Fatalf("expected ErrSelfDelegation, got %v", err)
	}
	if err := uc.Delegate(context.Background(), DelegateCommand{Caller: "a", Candidate: "b"}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}

	cycleID := activeCycleID(t, uc)
	source, _, _ := uc.Elections.GetCandidate(context.Background(), cycleID, "a")
	dest, _, _ := uc.Elections.GetCandidate(context.Background(), cycleID, "b")
	if dest.Votes != 8 {
		t.Fatalf("expected destination to hold 8 votes, got %d", dest.Votes)
	}
	if source.Votes != 0 || source.Active {
		t.Fatalf("expected source retired with zero votes, got votes=%d active=%v", source.Votes, source.Active)
	}
	// Pledged funds stay where they were escrowed.
	if source.PledgedTotal != 40 {
		t.Fatalf("expected pledged total to remain 40 on source, got %d", source.PledgedTotal)
	}
	if dest.PledgedTotal != 0 {
		t.Fatalf("expected destination pledged total 0, got %d", dest.PledgedTotal)
	}

	// A retired candidate can neither delegate again nor receive votes.
	if err := uc.Delegate(context.Background(), DelegateCommand{Caller: "a", Candidate: "b"}); !errors.Is(err, domainerrors.ErrNotACandidate) {
		t.Fatalf("expected ErrNotACandidate on second delegation, got %v", err)
	}
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: "v9", Candidate: "a"}); !errors.Is(err, domainerrors.ErrNotACandidate) {
		t.Fatalf("expected ErrNotACandidate voting for retired candidate, got %v", err)
	}
}

func TestDelegateRequiresDestinationAboveThreshold(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)
	mustStartCycle(t, uc, 2)
	mustRegister(t, uc, "a")
	mustRegister(t, uc, "b")
	mustVote(t, uc, "v1", "a")
	mustVote(t, uc, "v2", "a")
	mustVote(t, uc, "v3", "b")

	// b holds one vote against a threshold of two.
	if err := uc.Delegate(context.Background(), DelegateCommand{Caller: "a", Candidate: "b"}); !errors.Is(err, domainerrors.ErrBelowThreshold) {
		t.Fatalf("expected ErrBelowThreshold, got %v", err)
	}
	if err := uc.Delegate(context.Background(), DelegateCommand{Caller: "b", Candidate: "a"}); err != nil {
		t.Fatalf("delegate toward qualified candidate failed: %v", err)
	}
}

func TestElectTieBreakPrefersFundingThenRosterOrder(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100, "v2": 100, "v3": 100})
	uc, _ := newElectionFixture(ledger, 0)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "x")
	mustRegister(t, uc, "y")
	mustRegister(t, uc, "z")

	mustVote(t, uc, "v1", "x")
	mustVote(t, uc, "v2", "y")
	mustVote(t, uc, "v3", "z")
	mustFund(t, uc, "v1", "x", 10)
	mustFund(t, uc, "v2", "y", 20)
	mustFund(t, uc, "v3", "z", 20)

	// All tied on votes; y and z tie on funding; y registered first.
	winner, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"})
	if err != nil {
		t.Fatalf("elect failed: %v", err)
	}
	if winner != "y" {
		t.Fatalf("expected winner y, got %s", winner)
	}
}

func TestElectRequiresAdminAndCandidates(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)
	mustStartCycle(t, uc, 0)

	if _, err := uc.Elect(context.Background(), ElectCommand{Admin: "mallory"}); !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"}); !errors.Is(err, domainerrors.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestElectSkipsRetiredCandidates(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100})
	uc, _ := newElectionFixture(ledger, 0)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "a")
	mustRegister(t, uc, "b")
	mustVote(t, uc, "v1", "a")
	mustVote(t, uc, "v2", "b")
	mustFund(t, uc, "v1", "a", 90)

	// a retires with the larger pledged total still attached.
	if err := uc.Delegate(context.Background(), DelegateCommand{Caller: "a", Candidate: "b"}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}

	winner, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"})
	if err != nil {
		t.Fatalf("elect failed: %v", err)
	}
	if winner != "b" {
		t.Fatalf("expected winner b, got %s", winner)
	}
}

func TestWinnerClaimPaysOnceAndBackersSplitBySide(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100, "v2": 100})
	uc, _ := newElectionFixture(ledger, 0)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "a")
	mustRegister(t, uc, "b")
	mustVote(t, uc, "v1", "a")
	mustVote(t, uc, "v2", "b")
	mustVote(t, uc, "v3", "a")
	mustFund(t, uc, "v1", "a", 60)
	mustFund(t, uc, "v2", "b", 40)

	winner, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"})
	if err != nil {
		t.Fatalf("elect failed: %v", err)
	}
	if winner != "a" {
		t.Fatalf("expected winner a, got %s", winner)
	}

	// Phase is claim now; open-phase operations are rejected.
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: "v4", Candidate: "a"}); !errors.Is(err, domainerrors.ErrPhaseViolation) {
		t.Fatalf("expected ErrPhaseViolation voting in claim phase, got %v", err)
	}

	if _, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: "b"}); !errors.Is(err, domainerrors.ErrNotWinner) {
		t.Fatalf("expected ErrNotWinner, got %v", err)
	}
	amount, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: "a"})
	if err != nil {
		t.Fatalf("winner claim failed: %v", err)
	}
	if amount != 60 {
		t.Fatalf("expected winner payout 60, got %d", amount)
	}
	if ledger.balances["a"] != 60 {
		t.Fatalf("expected winner balance 60, got %d", ledger.balances["a"])
	}
	if _, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: "a"}); !errors.Is(err, domainerrors.ErrNothingToClaim) {
		t.Fatalf("expected ErrNothingToClaim on second winner claim, got %v", err)
	}

	// Winning-side backer cannot reclaim: their pledge belongs to the winner.
	if _, err := uc.BackerClaim(context.Background(), ClaimCommand{Caller: "v1"}); !errors.Is(err, domainerrors.ErrNothingToClaim) {
		t.Fatalf("expected ErrNothingToClaim for winning-side backer, got %v", err)
	}

	refund, err := uc.BackerClaim(context.Background(), ClaimCommand{Caller: "v2"})
	if err != nil {
		t.Fatalf("losing backer refund failed: %v", err)
	}
	if refund != 40 {
		t.Fatalf("expected refund 40, got %d", refund)
	}
	if ledger.balances["v2"] != 100 {
		t.Fatalf("expected v2 restored to 100, got %d", ledger.balances["v2"])
	}
	if _, err := uc.BackerClaim(context.Background(), ClaimCommand{Caller: "v2"}); !errors.Is(err, domainerrors.ErrNothingToClaim) {
		t.Fatalf("expected ErrNothingToClaim on second refund, got %v", err)
	}
	if ledger.balances["escrow:election"] != 0 {
		t.Fatalf("expected escrow drained, got %d", ledger.balances["escrow:election"])
	}
}

func TestClaimTransferFailureRestoresEscrowRecord(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"v1": 100})
	uc, _ := newElectionFixture(ledger, 0)
	mustStartCycle(t, uc, 1)
	mustRegister(t, uc, "a")
	mustVote(t, uc, "v1", "a")
	mustFund(t, uc, "v1", "a", 70)
	if _, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"}); err != nil {
		t.Fatalf("elect failed: %v", err)
	}

	ledger.failNext = true
	if _, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: "a"}); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	// The rejected payout restored the record; a retry succeeds in full.
	amount, err := uc.WinnerClaim(context.Background(), ClaimCommand{Caller: "a"})
	if err != nil {
		t.Fatalf("retry claim failed: %v", err)
	}
	if amount != 70 {
		t.Fatalf("expected retry payout 70, got %d", amount)
	}
}

func TestCloseCycleEnablesNextStart(t *testing.T) {
	uc, _ := newElectionFixture(newFakeLedger(nil), 0)
	mustStartCycle(t, uc, 0)
	mustRegister(t, uc, "a")
	mustVote(t, uc, "v1", "a")
	if _, err := uc.Elect(context.Background(), ElectCommand{Admin: "admin"}); err != nil {
		t.Fatalf("elect failed: %v", err)
	}

	if _, err := uc.CloseCycle(context.Background(), CloseCycleCommand{Admin: "admin"}); err != nil {
		t.Fatalf("close cycle failed: %v", err)
	}
	mustStartCycle(t, uc, 3)

	// The fresh cycle carries no state from the previous one.
	if _, err := uc.Register(context.Background(), RegisterCommand{Caller: "a", DisplayName: "a"}); err != nil {
		t.Fatalf("register in fresh cycle failed: %v", err)
	}
	if _, err := uc.Vote(context.Background(), VoteCommand{Caller: "v1", Candidate: "a"}); err != nil {
		t.Fatalf("vote in fresh cycle failed: %v", err)
	}
}

func activeCycleID(t *testing.T, uc *ElectionUseCase) string {
	t.Helper()
	cycle, found, err := uc.Elections.GetActiveCycle(context.Background())
	if err != nil || !found {
		t.Fatalf("active cycle lookup failed: found=%v err=%v", found, err)
	}
	return cycle.CycleID
}
