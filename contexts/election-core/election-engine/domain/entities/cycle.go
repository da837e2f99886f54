package entities

import "time"

type Phase string

const (
	PhaseClosed   Phase = "closed"
	PhaseOpen     Phase = "open"
	PhaseElecting Phase = "electing"
	PhaseClaim    Phase = "claim"
)

// Cycle is one open→elect→claim run of the election. Phase advances strictly
// closed→open→electing→claim and never moves backwards within a cycle.
type Cycle struct {
	CycleID       string
	Phase         Phase
	VoteThreshold int64
	Winner        *string
	StartedAt     time.Time
	ClosedAt      *time.Time
	UpdatedAt     time.Time
}

func (c Cycle) HasWinner() bool {
	return c.Winner != nil && *c.Winner != ""
}

func (c Cycle) WinnerAccount() string {
	if c.Winner == nil {
		return ""
	}
	return *c.Winner
}

// CandidateProfile is one account's candidacy inside a cycle. Profiles are
// never deleted; a delegated-out candidate stays addressable with Active=false.
type CandidateProfile struct {
	CycleID      string
	Account      string
	DisplayName  string
	Active       bool
	Votes        int64
	PledgedTotal int64
	// RosterIndex records registration order. It is the final tie-break
	// signal, so it must reflect the order registrations were accepted.
	RosterIndex  int
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// VoterRecord is created exactly once per voter per cycle and is immutable
// afterwards (one-vote rule).
type VoterRecord struct {
	CycleID         string
	Voter           string
	ChosenCandidate string
	VotedAt         time.Time
}

// FundingRecord tracks one backer's escrowed pledge inside a cycle. It is
// incremented by funding and zeroed at most once by a successful claim.
type FundingRecord struct {
	CycleID       string
	Backer        string
	AmountPledged int64
	UpdatedAt     time.Time
}

// CandidateStanding is the read model served by the standings query.
type CandidateStanding struct {
	Account      string
	DisplayName  string
	Active       bool
	Votes        int64
	PledgedTotal int64
	RosterIndex  int
	IsWinner     bool
}
