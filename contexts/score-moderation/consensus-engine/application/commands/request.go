package commands

import (
	"context"

	application "scorewatch/contexts/score-moderation/consensus-engine/application"
	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/consensus-engine/domain/errors"
)

// OpenRequestCommand creates a pending upload request for a score. Variant is
// derived from the score id when negative.
type OpenRequestCommand struct {
	RequestedBy      int64
	ScoreID          int64
	ScoreVariant     entities.ScoreVariant
	ThreadRef        int64
	ThreadMessageRef int64
}

// OpenRequest inserts a new pending request. At most one non-superseded
// request exists per score; the store's unique constraint decides the winner
// of a concurrent double-submit.
func (uc ConsensusUseCase) OpenRequest(
	ctx context.Context,
	cmd OpenRequestCommand,
) (entities.ScorewatchRequest, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.RequestedBy <= 0 || cmd.ScoreID <= 0 {
		return entities.ScorewatchRequest{}, domainerrors.ErrInvalidVoteInput
	}
	variant := cmd.ScoreVariant
	if variant < 0 {
		variant = entities.VariantFromScoreID(cmd.ScoreID)
	}
	if !variant.Valid() {
		return entities.ScorewatchRequest{}, domainerrors.ErrInvalidVoteInput
	}

	request, err := uc.Requests.CreateRequest(ctx, entities.ScorewatchRequest{
		RequestedBy:      cmd.RequestedBy,
		ScoreID:          cmd.ScoreID,
		ScoreVariant:     variant,
		Status:           entities.StatusPending,
		ThreadRef:        cmd.ThreadRef,
		ThreadMessageRef: cmd.ThreadMessageRef,
		CreatedAt:        uc.now(),
	})
	if err != nil {
		return entities.ScorewatchRequest{}, err
	}
	logger.Info("upload request opened",
		"event", "consensus_request_opened",
		"module", "score-moderation/consensus-engine",
		"layer", "application",
		"request_id", request.RequestID,
		"score_id", request.ScoreID,
		"variant", request.ScoreVariant.Label(),
		"requested_by", request.RequestedBy,
	)
	return request, nil
}
