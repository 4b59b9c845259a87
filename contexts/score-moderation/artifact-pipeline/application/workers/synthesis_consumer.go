package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"scorewatch/contexts/score-moderation/artifact-pipeline/application"
	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// TopicRequestResolved is the consensus resolution topic this worker listens
// on.
const TopicRequestResolved = "scorewatch.request.resolved"

// SynthesisConsumer reacts to accepted resolutions by generating the upload
// artifact and handing it to the messenger. Best effort: a failed synthesis
// delivers its failure string and is never retried.
type SynthesisConsumer struct {
	Scores    ports.ScoreProvider
	Assembler application.ArtifactAssembler
	Messenger ports.ArtifactMessenger
	Marker    ports.UploadMarker

	// Thumbnails receives a copy of each delivered thumbnail when
	// WriteBackThumbnails is on. Write failures do not fail the delivery.
	Thumbnails          ports.ContentStore
	WriteBackThumbnails bool

	// SynthesisTimeout bounds one whole synthesis attempt, render included.
	SynthesisTimeout time.Duration
	Logger           *slog.Logger
}

// Register subscribes the consumer on the bus. Each delivery runs on the
// bus's per-event goroutine.
func (c SynthesisConsumer) Register(subscriber ports.Subscriber) error {
	return subscriber.Subscribe(TopicRequestResolved, c.Handle)
}

// Handle processes one resolution envelope. Non-accepted outcomes are
// acknowledged and skipped; only acceptance triggers synthesis.
func (c SynthesisConsumer) Handle(ctx context.Context, envelope ports.InboundEnvelope) {
	logger := c.logger()
	var event ports.ResolvedEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		logger.Error("resolution envelope undecodable",
			"event", "pipeline_envelope_decode_failed",
			"module", "score-moderation/artifact-pipeline",
			"layer", "worker",
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return
	}
	if event.Status != "accepted" {
		logger.Info("resolution skipped",
			"event", "pipeline_resolution_skipped",
			"module", "score-moderation/artifact-pipeline",
			"layer", "worker",
			"request_id", event.RequestID,
			"status", event.Status,
		)
		return
	}

	if c.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.SynthesisTimeout)
		defer cancel()
	}

	score, err := c.Scores.FetchScore(ctx, event.ScoreID, entities.Ruleset(event.ScoreVariant))
	if err != nil {
		c.deliverFailure(ctx, event, c.Assembler.FailureMessage(err))
		return
	}

	artifact, err := c.Assembler.GenerateUploadResources(ctx, score)
	if err != nil {
		logger.Warn("artifact synthesis failed",
			"event", "pipeline_synthesis_failed",
			"module", "score-moderation/artifact-pipeline",
			"layer", "worker",
			"request_id", event.RequestID,
			"score_id", event.ScoreID,
			"error", err.Error(),
		)
		c.deliverFailure(ctx, event, c.Assembler.FailureMessage(err))
		return
	}

	if err := c.Messenger.DeliverArtifact(ctx, event.ThreadRef, artifact); err != nil {
		logger.Warn("artifact delivery failed",
			"event", "pipeline_delivery_failed",
			"module", "score-moderation/artifact-pipeline",
			"layer", "worker",
			"request_id", event.RequestID,
			"error", err.Error(),
		)
		return
	}

	if c.WriteBackThumbnails && c.Thumbnails != nil {
		key := fmt.Sprintf("/thumbnails/%d.jpg", event.ScoreID)
		if err := c.Thumbnails.PutObject(ctx, key, artifact.ImageData); err != nil {
			logger.Warn("thumbnail write-back failed",
				"event", "pipeline_thumbnail_writeback_failed",
				"module", "score-moderation/artifact-pipeline",
				"layer", "worker",
				"score_id", event.ScoreID,
				"key", key,
				"error", err.Error(),
			)
		}
	}

	if c.Marker != nil {
		if err := c.Marker.MarkUploaded(ctx, event.RequestID); err != nil {
			logger.Warn("upload mark failed",
				"event", "pipeline_mark_uploaded_failed",
				"module", "score-moderation/artifact-pipeline",
				"layer", "worker",
				"request_id", event.RequestID,
				"error", err.Error(),
			)
		}
	}
}

func (c SynthesisConsumer) deliverFailure(ctx context.Context, event ports.ResolvedEvent, reason string) {
	if err := c.Messenger.DeliverFailure(ctx, event.ThreadRef, reason); err != nil {
		c.logger().Warn("failure delivery failed",
			"event", "pipeline_failure_delivery_failed",
			"module", "score-moderation/artifact-pipeline",
			"layer", "worker",
			"request_id", event.RequestID,
			"error", err.Error(),
		)
	}
}

func (c SynthesisConsumer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
