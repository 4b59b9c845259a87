package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/consensus-engine/domain/errors"
	"scorewatch/contexts/score-moderation/consensus-engine/ports"

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

func (r *Repository) CreateRequest(
	ctx context.Context,
	request entities.ScorewatchRequest,
) (entities.ScorewatchRequest, error) {
	row := requestModelFromEntity(request)
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		// scorewatch_requests carries a unique index on score_id; the loser of
		// a concurrent double-submit lands here.
		if isUniqueViolation(create.Error) {
			return entities.ScorewatchRequest{}, domainerrors.ErrDuplicateRequest
		}
		return entities.ScorewatchRequest{}, r.logError("consensus_repo_create_request_failed", create.Error,
			"score_id", request.ScoreID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetRequest(ctx context.Context, requestID int64) (entities.ScorewatchRequest, error) {
	var row requestModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ScorewatchRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.ScorewatchRequest{}, r.logError("consensus_repo_get_request_failed", err,
			"request_id", requestID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetRequestByScore(ctx context.Context, scoreID int64) (entities.ScorewatchRequest, error) {
	var row requestModel
	err := r.db.WithContext(ctx).
		Where("score_id = ?", scoreID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ScorewatchRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.ScorewatchRequest{}, r.logError("consensus_repo_get_request_by_score_failed", err,
			"score_id", scoreID,
		)
	}
	return row.toEntity(), nil
}

// TransitionStatus is the single-winner conditional update. RowsAffected == 0
// means another resolver already moved the request out of `from`.
func (r *Repository) TransitionStatus(
	ctx context.Context,
	requestID int64,
	from entities.RequestStatus,
	to entities.RequestStatus,
	resolvedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&requestModel{}).
		Where("request_id = ?", requestID).
		Where("request_status = ?", string(from)).
		Updates(map[string]any{
			"request_status": string(to),
			"resolved_at":    resolvedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("consensus_repo_transition_status_failed", result.Error,
			"request_id", requestID,
			"from", string(from),
			"to", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

// InsertVote relies on the composite primary key (request_id, voter_id).
// DoNothing + RowsAffected keeps the duplicate check inside the store rather
// than as a check-then-act in application code.
func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, error) {
	row := voteModel{
		RequestID: vote.RequestID,
		VoterID:   vote.VoterID,
		VoteType:  string(vote.VoteType),
		CreatedAt: vote.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}, {Name: "vote_user_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return entities.Vote{}, domainerrors.ErrAlreadyVoted
		}
		return entities.Vote{}, r.logError("consensus_repo_insert_vote_failed", create.Error,
			"request_id", vote.RequestID,
			"voter_id", vote.VoterID,
		)
	}
	if create.RowsAffected == 0 {
		return entities.Vote{}, domainerrors.ErrAlreadyVoted
	}
	return row.toEntity(), nil
}

func (r *Repository) ListVotes(ctx context.Context, requestID int64) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("consensus_repo_list_votes_failed", err,
			"request_id", requestID,
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("consensus_repo_append_outbox_marshal_failed", err,
			"event_id", envelope.EventID,
		)
	}
	row := outboxModel{
		OutboxID:  envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
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
		return r.logError("consensus_repo_append_outbox_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
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
		return nil, r.logError("consensus_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Where("status = ?", outboxStatusPending).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("consensus_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", outboxID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "score-moderation/consensus-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("consensus repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type requestModel struct {
	RequestID        int64      `gorm:"column:request_id;primaryKey;autoIncrement"`
	RequestedBy      int64      `gorm:"column:requested_by"`
	ScoreID          int64      `gorm:"column:score_id;uniqueIndex"`
	ScoreVariant     int        `gorm:"column:score_relax"`
	Status           string     `gorm:"column:request_status"`
	ThreadRef        int64      `gorm:"column:thread_id"`
	ThreadMessageRef int64      `gorm:"column:thread_message_id"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	ResolvedAt       *time.Time `gorm:"column:resolved_at"`
}

func (requestModel) TableName() string {
	return "scorewatch_requests"
}

func requestModelFromEntity(request entities.ScorewatchRequest) requestModel {
	row := requestModel{
		RequestID:        request.RequestID,
		RequestedBy:      request.RequestedBy,
		ScoreID:          request.ScoreID,
		ScoreVariant:     int(request.ScoreVariant),
		Status:           string(request.Status),
		ThreadRef:        request.ThreadRef,
		ThreadMessageRef: request.ThreadMessageRef,
		CreatedAt:        request.CreatedAt.UTC(),
	}
	if request.ResolvedAt != nil {
		stamp := request.ResolvedAt.UTC()
		row.ResolvedAt = &stamp
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m requestModel) toEntity() entities.ScorewatchRequest {
	request := entities.ScorewatchRequest{
		RequestID:        m.RequestID,
		RequestedBy:      m.RequestedBy,
		ScoreID:          m.ScoreID,
		ScoreVariant:     entities.ScoreVariant(m.ScoreVariant),
		Status:           entities.RequestStatus(m.Status),
		ThreadRef:        m.ThreadRef,
		ThreadMessageRef: m.ThreadMessageRef,
		CreatedAt:        m.CreatedAt.UTC(),
	}
	if m.ResolvedAt != nil {
		stamp := m.ResolvedAt.UTC()
		request.ResolvedAt = &stamp
	}
	return request
}

type voteModel struct {
	RequestID int64     `gorm:"column:request_id;primaryKey"`
	VoterID   int64     `gorm:"column:vote_user_id;primaryKey"`
	VoteType  string    `gorm:"column:vote_type"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "scorewatch_votes"
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		RequestID: m.RequestID,
		VoterID:   m.VoterID,
		VoteType:  entities.VoteType(m.VoteType),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "scorewatch_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RequestRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
