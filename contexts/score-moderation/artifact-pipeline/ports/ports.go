package ports

import (
	"context"
	"encoding/json"
	"image"
	"time"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
)

// ScoreProvider returns the full score record for an id and ruleset variant.
type ScoreProvider interface {
	FetchScore(ctx context.Context, scoreID int64, ruleset entities.Ruleset) (entities.Score, error)
}

// ContentStore is the object-store read/write path for cached beatmap files
// and, when enabled by policy, finished thumbnails.
type ContentStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
}

// BeatmapMetadataAPI serves raw .osu file contents from the upstream game
// server.
type BeatmapMetadataAPI interface {
	FetchOsuFile(ctx context.Context, beatmapID int64) ([]byte, error)
}

// BeatmapMirror fetches a beatmapset's compressed asset bundle from one
// archive mirror. A nil error with data means the mirror responded; the
// resolver decides whether the bundle contains what it needs.
type BeatmapMirror interface {
	Name() string
	FetchBeatmapsetArchive(ctx context.Context, beatmapsetID int64) ([]byte, error)
}

// AssetResolver turns beatmap ids into the metadata and background image the
// thumbnail needs, using the content store, the metadata API, a direct media
// endpoint, and an ordered mirror chain.
type AssetResolver interface {
	BeatmapMeta(ctx context.Context, beatmapID int64) (entities.BeatmapMeta, error)
	BackgroundImage(ctx context.Context, beatmapID int64, beatmapsetID int64) (image.Image, error)
}

// PerformanceService computes {pp, stars} for one score's parameters.
type PerformanceService interface {
	Calculate(ctx context.Context, input PerformanceInput) (entities.Performance, error)
}

type PerformanceInput struct {
	BeatmapID int64            `json:"beatmap_id"`
	Mode      int              `json:"mode"`
	Mods      int64            `json:"mods"`
	MaxCombo  int              `json:"max_combo"`
	Accuracy  float64          `json:"accuracy"`
	MissCount int              `json:"miss_count"`
	Ruleset   entities.Ruleset `json:"-"`
}

// Renderer rasterizes a filled document at an exact viewport and returns the
// raw capture bytes. Slow; the caller supplies a dedicated timeout via ctx.
type Renderer interface {
	Rasterize(ctx context.Context, document string, width int, height int) ([]byte, error)
}

// ArtifactMessenger delivers the finished artifact or a terminal failure
// string to the moderation thread. Best effort, never retried here.
type ArtifactMessenger interface {
	DeliverArtifact(ctx context.Context, threadRef int64, artifact entities.ScoreUploadArtifact) error
	DeliverFailure(ctx context.Context, threadRef int64, reason string) error
}

// ResolvedEvent is the consensus resolution as seen by this service.
type ResolvedEvent struct {
	RequestID    int64  `json:"request_id"`
	ScoreID      int64  `json:"score_id"`
	ScoreVariant int    `json:"score_variant"`
	Status       string `json:"status"`
	ThreadRef    int64  `json:"thread_ref"`
	Upvotes      int    `json:"upvotes"`
	Downvotes    int    `json:"downvotes"`
}

// InboundEnvelope is the bus message shape the synthesis consumer receives.
type InboundEnvelope struct {
	EventID    string
	EventType  string
	OccurredAt time.Time
	Data       json.RawMessage
}

// Subscriber hands inbound envelopes for a topic to a handler.
type Subscriber interface {
	Subscribe(topic string, handler func(ctx context.Context, envelope InboundEnvelope)) error
}

// UploadMarker flips the originating request to uploaded once the artifact is
// out the door.
type UploadMarker interface {
	MarkUploaded(ctx context.Context, requestID int64) error
}
