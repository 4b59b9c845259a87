package commands

import (
	"context"
	"log/slog"
	"time"

	application "scorewatch/contexts/score-moderation/consensus-engine/application"
	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/consensus-engine/domain/errors"
	"scorewatch/contexts/score-moderation/consensus-engine/ports"
)

// TiePolicy controls how a fully-voted request with equal counts resolves.
// The deployment picks one; both behaviors are supported.
type TiePolicy string

const (
	TiePolicyTied   TiePolicy = "tied"
	TiePolicyDenied TiePolicy = "denied"
)

func (p TiePolicy) tieStatus() entities.RequestStatus {
	if p == TiePolicyDenied {
		return entities.StatusDenied
	}
	return entities.StatusTied
}

// CastVoteCommand is the write-model input for a single vote.
type CastVoteCommand struct {
	RequestID int64
	VoterID   int64
	VoteType  entities.VoteType
}

// ResolutionOutcome reports whether this cast completed the request. Resolved
// is true only for the caller that performed the status transition.
type ResolutionOutcome struct {
	Resolved bool
	Status   entities.RequestStatus
}

// CastVoteResult returns the recorded vote, the tally after it, and the
// resolution outcome so the transport layer can update the running status
// message and, on acceptance, trigger downstream synthesis.
type CastVoteResult struct {
	Vote       entities.Vote
	Tally      entities.VoteTally
	Resolution ResolutionOutcome
}

// ConsensusUseCase records votes exactly once per voter and resolves a
// request when every eligible voter has voted. It has no knowledge of media
// generation; acceptance is announced through the outbox.
type ConsensusUseCase struct {
	Requests  ports.RequestRepository
	Voters    ports.VoterSource
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	TiePolicy TiePolicy
	Logger    *slog.Logger
}

// CastVote fails closed: a request that is not pending rejects the vote
// before any write. The insert itself is conflict-safe at the store, so two
// concurrent casts from the same voter cannot both land.
func (uc ConsensusUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.RequestID <= 0 || cmd.VoterID <= 0 ||
		(cmd.VoteType != entities.VoteTypeUpvote && cmd.VoteType != entities.VoteTypeDownvote) {
		logger.Warn("vote cast validation failed",
			"event", "consensus_cast_validation_failed",
			"module", "score-moderation/consensus-engine",
			"layer", "application",
			"request_id", cmd.RequestID,
			"voter_id", cmd.VoterID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	request, err := uc.Requests.GetRequest(ctx, cmd.RequestID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if request.Status != entities.StatusPending {
		return CastVoteResult{}, domainerrors.ErrRequestResolved
	}

	vote, err := uc.Requests.InsertVote(ctx, entities.Vote{
		RequestID: cmd.RequestID,
		VoterID:   cmd.VoterID,
		VoteType:  cmd.VoteType,
		CreatedAt: uc.now(),
	})
	if err != nil {
		return CastVoteResult{}, err
	}
	logger.Info("vote recorded",
		"event", "consensus_vote_recorded",
		"module", "score-moderation/consensus-engine",
		"layer", "application",
		"request_id", cmd.RequestID,
		"voter_id", cmd.VoterID,
		"vote_type", string(cmd.VoteType),
	)

	tally, err := uc.buildTally(ctx, cmd.RequestID)
	if err != nil {
		return CastVoteResult{}, err
	}
	resolution, err := uc.resolve(ctx, request, tally)
	if err != nil {
		return CastVoteResult{}, err
	}
	return CastVoteResult{Vote: vote, Tally: tally, Resolution: resolution}, nil
}

// TryResolve re-evaluates a pending request against the live voter set. It is
// a no-op returning a still-pending outcome unless every eligible voter has
// voted and this caller wins the conditional transition.
func (uc ConsensusUseCase) TryResolve(ctx context.Context, requestID int64) (ResolutionOutcome, error) {
	request, err := uc.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return ResolutionOutcome{}, err
	}
	if request.Status != entities.StatusPending {
		return ResolutionOutcome{Resolved: false, Status: request.Status}, nil
	}
	tally, err := uc.buildTally(ctx, requestID)
	if err != nil {
		return ResolutionOutcome{}, err
	}
	return uc.resolve(ctx, request, tally)
}

// MarkUploaded transitions an accepted request to uploaded once the artifact
// has been published.
func (uc ConsensusUseCase) MarkUploaded(ctx context.Context, requestID int64) error {
	ok, err := uc.Requests.TransitionStatus(
		ctx, requestID, entities.StatusAccepted, entities.StatusUploaded, uc.now(),
	)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrConflict
	}
	return nil
}

func (uc ConsensusUseCase) resolve(
	ctx context.Context,
	request entities.ScorewatchRequest,
	tally entities.VoteTally,
) (ResolutionOutcome, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !tally.Complete() {
		return ResolutionOutcome{Resolved: false, Status: entities.StatusPending}, nil
	}

	status := uc.TiePolicy.tieStatus()
	if tally.Upvotes() > tally.Downvotes() {
		status = entities.StatusAccepted
	} else if tally.Downvotes() > tally.Upvotes() {
		status = entities.StatusDenied
	}

	// Single conditional update: when the last two voters race, only one
	// caller observes the transition and triggers downstream work.
	won, err := uc.Requests.TransitionStatus(
		ctx, request.RequestID, entities.StatusPending, status, uc.now(),
	)
	if err != nil {
		return ResolutionOutcome{}, err
	}
	if !won {
		return ResolutionOutcome{Resolved: false, Status: entities.StatusPending}, nil
	}

	logger.Info("request resolved",
		"event", "consensus_request_resolved",
		"module", "score-moderation/consensus-engine",
		"layer", "application",
		"request_id", request.RequestID,
		"score_id", request.ScoreID,
		"status", string(status),
		"upvotes", tally.Upvotes(),
		"downvotes", tally.Downvotes(),
	)
	if err := uc.appendResolutionEvent(ctx, request, status, tally); err != nil {
		return ResolutionOutcome{}, err
	}
	return ResolutionOutcome{Resolved: true, Status: status}, nil
}

func (uc ConsensusUseCase) buildTally(ctx context.Context, requestID int64) (entities.VoteTally, error) {
	votes, err := uc.Requests.ListVotes(ctx, requestID)
	if err != nil {
		return entities.VoteTally{}, err
	}
	eligible, err := uc.Voters.EligibleVoters(ctx)
	if err != nil {
		return entities.VoteTally{}, err
	}
	return entities.NewVoteTally(requestID, votes, eligible), nil
}

func (uc ConsensusUseCase) appendResolutionEvent(
	ctx context.Context,
	request entities.ScorewatchRequest,
	status entities.RequestStatus,
	tally entities.VoteTally,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.newEventID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newResolutionEnvelope(eventID, request, status, tally, uc.now())
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ConsensusUseCase) newEventID(ctx context.Context) (string, error) {
	if uc.IDGen == nil {
		return "", domainerrors.ErrConflict
	}
	return uc.IDGen.NewID(ctx)
}

func (uc ConsensusUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
