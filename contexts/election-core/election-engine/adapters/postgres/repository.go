package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/election-core/election-engine/domain/entities"
	domainerrors "electra/contexts/election-core/election-engine/domain/errors"
	"electra/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetActiveCycle(ctx context.Context) (entities.Cycle, bool, error) {
	var row cycleModel
	err := r.db.WithContext(ctx).
		Where("phase <> ?", string(entities.PhaseClosed)).
		Order("started_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Cycle{}, false, nil
		}
		return entities.Cycle{}, false, r.logError("election_repo_get_active_cycle_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetCycle(ctx context.Context, cycleID string) (entities.Cycle, error) {
	var row cycleModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", strings.TrimSpace(cycleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Cycle{}, domainerrors.ErrPhaseViolation
		}
		return entities.Cycle{}, r.logError("election_repo_get_cycle_failed", err, "cycle_id", strings.TrimSpace(cycleID))
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveCycle(ctx context.Context, cycle entities.Cycle) error {
	row := cycleModelFromEntity(cycle)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cycle_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"phase":          row.Phase,
			"vote_threshold": row.VoteThreshold,
			"winner":         row.Winner,
			"closed_at":      row.ClosedAt,
			"updated_at":     row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_cycle_failed", create.Error, "cycle_id", row.CycleID)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, cycleID string, account string) (entities.CandidateProfile, bool, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", strings.TrimSpace(cycleID)).
		Where("account = ?", strings.TrimSpace(account)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CandidateProfile{}, false, nil
		}
		return entities.CandidateProfile{}, false, r.logError("election_repo_get_candidate_failed", err,
			"cycle_id", strings.TrimSpace(cycleID),
			"account", strings.TrimSpace(account),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.CandidateProfile) error {
	row := candidateModelFromEntity(candidate)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cycle_id"}, {Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"display_name":  row.DisplayName,
			"active":        row.Active,
			"votes":         row.Votes,
			"pledged_total": row.PledgedTotal,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrAlreadyCandidate
		}
		return r.logError("election_repo_save_candidate_failed", create.Error,
			"cycle_id", row.CycleID,
			"account", row.Account,
		)
	}
	return nil
}

func (r *Repository) ListRoster(ctx context.Context, cycleID string) ([]entities.CandidateProfile, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("cycle_id = ?", strings.TrimSpace(cycleID)).
		Order("roster_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_roster_failed", err, "cycle_id", strings.TrimSpace(cycleID))
	}
	items := make([]entities.CandidateProfile, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetVoterRecord(ctx context.Context, cycleID string, voter string) (entities.VoterRecord, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", strings.TrimSpace(cycleID)).
		Where("voter = ?", strings.TrimSpace(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterRecord{}, false, nil
		}
		return entities.VoterRecord{}, false, r.logError("election_repo_get_voter_failed", err,
			"cycle_id", strings.TrimSpace(cycleID),
			"voter", strings.TrimSpace(voter),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveVoterRecord(ctx context.Context, record entities.VoterRecord) error {
	row := voterModel{
		CycleID:         strings.TrimSpace(record.CycleID),
		Voter:           strings.TrimSpace(record.Voter),
		ChosenCandidate: strings.TrimSpace(record.ChosenCandidate),
		VotedAt:         record.VotedAt.UTC(),
	}
	// Voter records are write-once; a conflicting insert means the one-vote
	// rule was already enforced upstream and something is racing.
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cycle_id"}, {Name: "voter"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_voter_failed", create.Error,
			"cycle_id", row.CycleID,
			"voter", row.Voter,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrAlreadyVoted
	}
	return nil
}

func (r *Repository) GetFundingRecord(ctx context.Context, cycleID string, backer string) (entities.FundingRecord, bool, error) {
	var row fundingModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", strings.TrimSpace(cycleID)).
		Where("backer = ?", strings.TrimSpace(backer)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FundingRecord{}, false, nil
		}
		return entities.FundingRecord{}, false, r.logError("election_repo_get_funding_failed", err,
			"cycle_id", strings.TrimSpace(cycleID),
			"backer", strings.TrimSpace(backer),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveFundingRecord(ctx context.Context, record entities.FundingRecord) error {
	row := fundingModel{
		CycleID:       strings.TrimSpace(record.CycleID),
		Backer:        strings.TrimSpace(record.Backer),
		AmountPledged: record.AmountPledged,
		UpdatedAt:     record.UpdatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cycle_id"}, {Name: "backer"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount_pledged": row.AmountPledged,
			"updated_at":     row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_funding_failed", create.Error,
			"cycle_id", row.CycleID,
			"backer", row.Backer,
		)
	}
	return nil
}

func (r *Repository) ListFundingRecords(ctx context.Context, cycleID string) ([]entities.FundingRecord, error) {
	var rows []fundingModel
	if err := r.db.WithContext(ctx).
		Where("cycle_id = ?", strings.TrimSpace(cycleID)).
		Order("backer ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_funding_failed", err, "cycle_id", strings.TrimSpace(cycleID))
	}
	items := make([]entities.FundingRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_append_outbox_insert_failed", create.Error, "outbox_id", row.OutboxID)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("election_repo_append_outbox_load_existing_failed", err, "outbox_id", row.OutboxID)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type cycleModel struct {
	CycleID       string     `gorm:"column:cycle_id;primaryKey"`
	Phase         string     `gorm:"column:phase"`
	VoteThreshold int64      `gorm:"column:vote_threshold"`
	Winner        *string    `gorm:"column:winner"`
	StartedAt     time.Time  `gorm:"column:started_at"`
	ClosedAt      *time.Time `gorm:"column:closed_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (cycleModel) TableName() string {
	return "election_cycles"
}

func cycleModelFromEntity(cycle entities.Cycle) cycleModel {
	row := cycleModel{
		CycleID:       strings.TrimSpace(cycle.CycleID),
		Phase:         string(cycle.Phase),
		VoteThreshold: cycle.VoteThreshold,
		Winner:        cycle.Winner,
		StartedAt:     cycle.StartedAt.UTC(),
		ClosedAt:      normalizeOptionalTime(cycle.ClosedAt),
		UpdatedAt:     cycle.UpdatedAt.UTC(),
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.StartedAt
	}
	return row
}

func (m cycleModel) toEntity() entities.Cycle {
	return entities.Cycle{
		CycleID:       m.CycleID,
		Phase:         entities.Phase(m.Phase),
		VoteThreshold: m.VoteThreshold,
		Winner:        m.Winner,
		StartedAt:     m.StartedAt.UTC(),
		ClosedAt:      normalizeOptionalTime(m.ClosedAt),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type candidateModel struct {
	CycleID      string    `gorm:"column:cycle_id;primaryKey"`
	Account      string    `gorm:"column:account;primaryKey"`
	DisplayName  string    `gorm:"column:display_name"`
	Active       bool      `gorm:"column:active"`
	Votes        int64     `gorm:"column:votes"`
	PledgedTotal int64     `gorm:"column:pledged_total"`
	RosterIndex  int       `gorm:"column:roster_index"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "election_candidates"
}

func candidateModelFromEntity(candidate entities.CandidateProfile) candidateModel {
	return candidateModel{
		CycleID:      strings.TrimSpace(candidate.CycleID),
		Account:      strings.TrimSpace(candidate.Account),
		DisplayName:  strings.TrimSpace(candidate.DisplayName),
		Active:       candidate.Active,
		Votes:        candidate.Votes,
		PledgedTotal: candidate.PledgedTotal,
		RosterIndex:  candidate.RosterIndex,
		RegisteredAt: candidate.RegisteredAt.UTC(),
		UpdatedAt:    candidate.UpdatedAt.UTC(),
	}
}

func (m candidateModel) toEntity() entities.CandidateProfile {
	return entities.CandidateProfile{
		CycleID:      m.CycleID,
		Account:      m.Account,
		DisplayName:  m.DisplayName,
		Active:       m.Active,
		Votes:        m.Votes,
		PledgedTotal: m.PledgedTotal,
		RosterIndex:  m.RosterIndex,
		RegisteredAt: m.RegisteredAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type voterModel struct {
	CycleID         string    `gorm:"column:cycle_id;primaryKey"`
	Voter           string    `gorm:"column:voter;primaryKey"`
	ChosenCandidate string    `gorm:"column:chosen_candidate"`
	VotedAt         time.Time `gorm:"column:voted_at"`
}

func (voterModel) TableName() string {
	return "voter_records"
}

func (m voterModel) toEntity() entities.VoterRecord {
	return entities.VoterRecord{
		CycleID:         m.CycleID,
		Voter:           m.Voter,
		ChosenCandidate: m.ChosenCandidate,
		VotedAt:         m.VotedAt.UTC(),
	}
}

type fundingModel struct {
	CycleID       string    `gorm:"column:cycle_id;primaryKey"`
	Backer        string    `gorm:"column:backer;primaryKey"`
	AmountPledged int64     `gorm:"column:amount_pledged"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (fundingModel) TableName() string {
	return "funding_records"
}

func (m fundingModel) toEntity() entities.FundingRecord {
	return entities.FundingRecord{
		CycleID:       m.CycleID,
		Backer:        m.Backer,
		AmountPledged: m.AmountPledged,
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
