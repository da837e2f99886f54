package ports

import (
	"context"
	"time"

	"electra/contexts/election-core/election-engine/domain/entities"
	contractsv1 "electra/contracts/gen/events/v1"
)

// ElectionRepository owns all cycle-scoped election state: the cycle itself,
// candidate profiles with their roster ordering, voter records, and funding
// records. Callers serialize access; adapters only need per-call safety.
type ElectionRepository interface {
	GetActiveCycle(ctx context.Context) (entities.Cycle, bool, error)
	GetCycle(ctx context.Context, cycleID string) (entities.Cycle, error)
	SaveCycle(ctx context.Context, cycle entities.Cycle) error

	GetCandidate(ctx context.Context, cycleID string, account string) (entities.CandidateProfile, bool, error)
	SaveCandidate(ctx context.Context, candidate entities.CandidateProfile) error
	// ListRoster returns candidate profiles in registration order. Rejected
	// registration attempts never appear in the roster.
	ListRoster(ctx context.Context, cycleID string) ([]entities.CandidateProfile, error)

	GetVoterRecord(ctx context.Context, cycleID string, voter string) (entities.VoterRecord, bool, error)
	SaveVoterRecord(ctx context.Context, record entities.VoterRecord) error

	GetFundingRecord(ctx context.Context, cycleID string, backer string) (entities.FundingRecord, bool, error)
	SaveFundingRecord(ctx context.Context, record entities.FundingRecord) error
	ListFundingRecords(ctx context.Context, cycleID string) ([]entities.FundingRecord, error)
}

// EscrowLedger is the given value-transfer primitive: move amount from one
// account to another, atomically, or fail with no effect.
type EscrowLedger interface {
	Transfer(ctx context.Context, from string, to string, amount int64) error
}

// StepCounter is the given monotonic step/clock advanced only by
// administrator transitions.
type StepCounter interface {
	AdvanceStep(ctx context.Context) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// CycleStatus is the read model served by the cycle status query.
type CycleStatus struct {
	CycleID        string
	Phase          entities.Phase
	VoteThreshold  int64
	Winner         string
	CandidateCount int
	ActiveCount    int
	EscrowedTotal  int64
	StartedAt      time.Time
}
