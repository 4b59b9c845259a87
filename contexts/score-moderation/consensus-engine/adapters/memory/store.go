package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/consensus-engine/domain/errors"
	"scorewatch/contexts/score-moderation/consensus-engine/ports"

	"github.com/google/uuid"
)

type voteKey struct {
	requestID int64
	voterID   int64
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory repository used for tests and local wiring. It
// mirrors the store-level guarantees: unique request per score, unique
// (request, voter) vote, and an atomic conditional status transition.
type Store struct {
	mu sync.RWMutex

	nextRequestID int64
	requests      map[int64]entities.ScorewatchRequest
	scoreIndex    map[int64]int64
	votes         map[voteKey]entities.Vote
	outbox        map[string]outboxRecord
	voters        []int64

	now time.Time
}

func NewStore() *Store {
	return &Store{
		nextRequestID: 1,
		requests:      make(map[int64]entities.ScorewatchRequest),
		scoreIndex:    make(map[int64]int64),
		votes:         make(map[voteKey]entities.Vote),
		outbox:        make(map[string]outboxRecord),
	}
}

// SetEligibleVoters seeds the live voter set returned by EligibleVoters.
func (s *Store) SetEligibleVoters(voterIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters = append([]int64(nil), voterIDs...)
}

// SetNow pins the clock for deterministic timestamps in tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) CreateRequest(
	_ context.Context,
	request entities.ScorewatchRequest,
) (entities.ScorewatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.scoreIndex[request.ScoreID]; exists {
		return entities.ScorewatchRequest{}, domainerrors.ErrDuplicateRequest
	}
	request.RequestID = s.nextRequestID
	s.nextRequestID++
	if request.CreatedAt.IsZero() {
		request.CreatedAt = s.clock()
	}
	s.requests[request.RequestID] = request
	s.scoreIndex[request.ScoreID] = request.RequestID
	return request, nil
}

func (s *Store) GetRequest(_ context.Context, requestID int64) (entities.ScorewatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[requestID]
	if !ok {
		return entities.ScorewatchRequest{}, domainerrors.ErrRequestNotFound
	}
	return request, nil
}

func (s *Store) GetRequestByScore(_ context.Context, scoreID int64) (entities.ScorewatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requestID, ok := s.scoreIndex[scoreID]
	if !ok {
		return entities.ScorewatchRequest{}, domainerrors.ErrRequestNotFound
	}
	return s.requests[requestID], nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	requestID int64,
	from entities.RequestStatus,
	to entities.RequestStatus,
	resolvedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return false, domainerrors.ErrRequestNotFound
	}
	if request.Status != from {
		return false, nil
	}
	request.Status = to
	stamp := resolvedAt.UTC()
	request.ResolvedAt = &stamp
	s.requests[requestID] = request
	return true, nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) (entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey{requestID: vote.RequestID, voterID: vote.VoterID}
	if _, exists := s.votes[key]; exists {
		return entities.Vote{}, domainerrors.ErrAlreadyVoted
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = s.clock()
	}
	s.votes[key] = vote
	return vote, nil
}

func (s *Store) ListVotes(_ context.Context, requestID int64) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for key, vote := range s.votes {
		if key.requestID == requestID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].VoterID < items[j].VoterID })
	return items, nil
}

func (s *Store) EligibleVoters(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.voters...), nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outbox[envelope.EventID]; exists {
		return nil
	}
	s.outbox[envelope.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  envelope.EventID,
			EventType: envelope.EventType,
			Payload:   payload,
			CreatedAt: envelope.OccurredAt.UTC(),
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
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrConflict
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

// PendingOutboxCount reports unpublished rows; tests use it to assert the
// single-winner resolution emitted exactly one event.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.outbox {
		if !record.published {
			count++
		}
	}
	return count
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) clock() time.Time {
	if !s.now.IsZero() {
		return s.now
	}
	return time.Now().UTC()
}

var _ ports.RequestRepository = (*Store)(nil)
var _ ports.VoterSource = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
