package commands

import (
	"encoding/json"
	"strconv"
	"time"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	"scorewatch/contexts/score-moderation/consensus-engine/ports"
)

// TopicRequestResolved carries terminal vote outcomes to downstream
// consumers; the artifact pipeline reacts only to accepted statuses.
const TopicRequestResolved = "scorewatch.request.resolved"

func newResolutionEnvelope(
	eventID string,
	request entities.ScorewatchRequest,
	status entities.RequestStatus,
	tally entities.VoteTally,
	occurredAt time.Time,
) (ports.EventEnvelope, error) {
	// Resolution events are partitioned by score so replays of the same score
	// land on the same consumer.
	payload, err := json.Marshal(map[string]any{
		"request_id":    request.RequestID,
		"score_id":      request.ScoreID,
		"score_variant": int(request.ScoreVariant),
		"status":        string(status),
		"thread_ref":    request.ThreadRef,
		"upvotes":       tally.Upvotes(),
		"downvotes":     tally.Downvotes(),
		"occurred_at":   occurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        TopicRequestResolved,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "consensus-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "score_id",
		PartitionKey:     strconv.FormatInt(request.ScoreID, 10),
		Data:             payload,
	}, nil
}
