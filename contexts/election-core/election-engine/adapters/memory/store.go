package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
	"electra/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory election repository plus outbox/clock/idgen wiring
// used by tests and DSN-less runs.
type Store struct {
	mu sync.RWMutex

	cycles     map[string]entities.Cycle
	candidates map[string]map[string]entities.CandidateProfile
	rosters    map[string][]string
	voters     map[string]map[string]entities.VoterRecord
	funding    map[string]map[string]entities.FundingRecord
	outbox     map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		cycles:     make(map[string]entities.Cycle),
		candidates: make(map[string]map[string]entities.CandidateProfile),
		rosters:    make(map[string][]string),
		voters:     make(map[string]map[string]entities.VoterRecord),
		funding:    make(map[string]map[string]entities.FundingRecord),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) GetActiveCycle(_ context.Context) (entities.Cycle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest entities.Cycle
	found := false
	for _, cycle := range s.cycles {
		if cycle.Phase == entities.PhaseClosed {
			continue
		}
		if !found || cycle.StartedAt.After(latest.StartedAt) {
			latest = cycle
			found = true
		}
	}
	return latest, found, nil
}

func (s *Store) GetCycle(_ context.Context, cycleID string) (entities.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cycle, ok := s.cycles[strings.TrimSpace(cycleID)]
	if !ok {
		return entities.Cycle{}, domainerrors.ErrPhaseViolation
	}
	return cycle, nil
}

func (s *Store) SaveCycle(_ context.Context, cycle entities.Cycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles[strings.TrimSpace(cycle.CycleID)] = cycle
	return nil
}

func (s *Store) GetCandidate(_ context.Context, cycleID string, account string) (entities.CandidateProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(cycleID)][strings.TrimSpace(account)]
	return candidate, ok, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cycleID := strings.TrimSpace(candidate.CycleID)
	account := strings.TrimSpace(candidate.Account)
	if s.candidates[cycleID] == nil {
		s.candidates[cycleID] = make(map[string]entities.CandidateProfile)
	}
	if _, exists := s.candidates[cycleID][account]; !exists {
		s.rosters[cycleID] = append(s.rosters[cycleID], account)
	}
	s.candidates[cycleID][account] = candidate
	return nil
}

func (s *Store) ListRoster(_ context.Context, cycleID string) ([]entities.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cycleID = strings.TrimSpace(cycleID)
	items := make([]entities.CandidateProfile, 0, len(s.rosters[cycleID]))
	for _, account := range s.rosters[cycleID] {
		items = append(items, s.candidates[cycleID][account])
	}
	return items, nil
}

func (s *Store) GetVoterRecord(_ context.Context, cycleID string, voter string) (entities.VoterRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.voters[strings.TrimSpace(cycleID)][strings.TrimSpace(voter)]
	return record, ok, nil
}

func (s *Store) SaveVoterRecord(_ context.Context, record entities.VoterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cycleID := strings.TrimSpace(record.CycleID)
	if s.voters[cycleID] == nil {
		s.voters[cycleID] = make(map[string]entities.VoterRecord)
	}
	s.voters[cycleID][strings.TrimSpace(record.Voter)] = record
	return nil
}

func (s *Store) GetFundingRecord(_ context.Context, cycleID string, backer string) (entities.FundingRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.funding[strings.TrimSpace(cycleID)][strings.TrimSpace(backer)]
	return record, ok, nil
}

func (s *Store) SaveFundingRecord(_ context.Context, record entities.FundingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cycleID := strings.TrimSpace(record.CycleID)
	if s.funding[cycleID] == nil {
		s.funding[cycleID] = make(map[string]entities.FundingRecord)
	}
	s.funding[cycleID][strings.TrimSpace(record.Backer)] = record
	return nil
}

func (s *Store) ListFundingRecords(_ context.Context, cycleID string) ([]entities.FundingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.FundingRecord, 0, len(s.funding[strings.TrimSpace(cycleID)]))
	for _, record := range s.funding[strings.TrimSpace(cycleID)] {
		items = append(items, record)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Backer < items[j].Backer
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrInvalidInput
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.ElectionRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
