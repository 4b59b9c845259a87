package queries

import (
	"context"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	"scorewatch/contexts/score-moderation/consensus-engine/ports"
)

// TallyUseCase serves pure tally reads for status messaging. The eligible
// set is read live so membership changes show up immediately in "remaining
// voters" output.
type TallyUseCase struct {
	Requests ports.RequestRepository
	Voters   ports.VoterSource
}

func (uc TallyUseCase) Tally(ctx context.Context, requestID int64) (entities.VoteTally, error) {
	if _, err := uc.Requests.GetRequest(ctx, requestID); err != nil {
		return entities.VoteTally{}, err
	}
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

// RequestByScore looks up the request tracking a given score.
func (uc TallyUseCase) RequestByScore(ctx context.Context, scoreID int64) (entities.ScorewatchRequest, error) {
	return uc.Requests.GetRequestByScore(ctx, scoreID)
}
