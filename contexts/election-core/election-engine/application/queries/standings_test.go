package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"electra/contexts/election-core/election-engine/adapters/memory"
	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
)

func TestCycleStatusAggregatesRoster(t *testing.T) {
	store := memory.NewStore()
	uc := StandingsUseCase{Elections: store}

	if _, err := uc.CycleStatus(context.Background()); !errors.Is(err, domainerrors.ErrPhaseViolation) {
		t.Fatalf("expected ErrPhaseViolation without a cycle, got %v", err)
	}

	start := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	winner := "alice"
	if err := store.SaveCycle(context.Background(), entities.Cycle{
		CycleID: "cycle-1", Phase: entities.PhaseClaim, VoteThreshold: 2, Winner: &winner, StartedAt: start,
	}); err != nil {
		t.Fatalf("save cycle failed: %v", err)
	}
	seed := []entities.CandidateProfile{
		{CycleID: "cycle-1", Account: "alice", DisplayName: "Alice", Active: true, Votes: 4, PledgedTotal: 70, RosterIndex: 0},
		{CycleID: "cycle-1", Account: "bob", DisplayName: "Bob", Active: false, Votes: 0, PledgedTotal: 30, RosterIndex: 1},
	}
	for _, candidate := range seed {
		if err := store.SaveCandidate(context.Background(), candidate); err != nil {
			t.Fatalf("save candidate failed: %v", err)
		}
	}

	status, err := uc.CycleStatus(context.Background())
	if err != nil {
		t.Fatalf("cycle status failed: %v", err)
	}
	if status.CandidateCount != 2 || status.ActiveCount != 1 {
		t.Fatalf("expected 2 candidates / 1 active, got %d/%d", status.CandidateCount, status.ActiveCount)
	}
	if status.EscrowedTotal != 100 {
		t.Fatalf("expected escrowed total 100, got %d", status.EscrowedTotal)
	}
	if status.Winner != "alice" {
		t.Fatalf("expected winner alice, got %s", status.Winner)
	}

	standings, err := uc.Standings(context.Background())
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	if !standings[0].IsWinner || standings[1].IsWinner {
		t.Fatalf("expected only alice flagged winner, got %+v", standings)
	}
}
