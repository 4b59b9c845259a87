package logmessenger

import (
	"context"
	"log/slog"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// Messenger is the default outbound sink when no chat integration is wired:
// it logs what would have been posted. Chat delivery is an external
// collaborator behind the same port.
type Messenger struct {
	Logger *slog.Logger
}

func (m Messenger) DeliverArtifact(
	_ context.Context,
	threadRef int64,
	artifact entities.ScoreUploadArtifact,
) error {
	m.logger().Info("upload artifact ready",
		"event", "pipeline_artifact_ready",
		"module", "score-moderation/artifact-pipeline",
		"layer", "adapter",
		"thread_ref", threadRef,
		"title", artifact.Title,
		"image_bytes", len(artifact.ImageData),
	)
	return nil
}

func (m Messenger) DeliverFailure(_ context.Context, threadRef int64, reason string) error {
	m.logger().Warn("upload artifact failed",
		"event", "pipeline_artifact_failed",
		"module", "score-moderation/artifact-pipeline",
		"layer", "adapter",
		"thread_ref", threadRef,
		"reason", reason,
	)
	return nil
}

func (m Messenger) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

var _ ports.ArtifactMessenger = Messenger{}
