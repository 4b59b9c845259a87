package ports

import (
	"context"
	"encoding/json"
	"time"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
)

// RequestRepository owns the durable request/vote state. Uniqueness invariants
// (one request per score, one vote per voter per request) and the
// single-winner status transition are enforced here, not by callers.
type RequestRepository interface {
	CreateRequest(ctx context.Context, request entities.ScorewatchRequest) (entities.ScorewatchRequest, error)
	GetRequest(ctx context.Context, requestID int64) (entities.ScorewatchRequest, error)
	GetRequestByScore(ctx context.Context, scoreID int64) (entities.ScorewatchRequest, error)
	// TransitionStatus performs a single conditional update from one status to
	// another and reports whether this caller performed the transition.
	TransitionStatus(
		ctx context.Context,
		requestID int64,
		from entities.RequestStatus,
		to entities.RequestStatus,
		resolvedAt time.Time,
	) (bool, error)
	// InsertVote is conflict-safe: a duplicate (request, voter) pair returns
	// the domain's already-voted error without writing.
	InsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, error)
	ListVotes(ctx context.Context, requestID int64) ([]entities.Vote, error)
}

// VoterSource returns the member ids currently authorized to vote. It is read
// live at tally time and never cached by the engine.
type VoterSource interface {
	EligibleVoters(ctx context.Context) ([]int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
