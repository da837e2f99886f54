package commands

import (
	"context"
	"encoding/json"
	"time"

	"electra/contexts/election-core/election-engine/ports"
)

// appendElectionEvent writes the notification record for a completed
// operation. Outbox is optional for pure read/test wiring, so nil is a no-op.
func (uc *ElectionUseCase) appendElectionEvent(
	ctx context.Context,
	eventType string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	// Events are partitioned by the affected account for stable ordering on
	// account-scoped consumers.
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "account",
		PartitionKey:     partitionKey,
		Data:             payload,
	})
}
