package artifactpipeline

import (
	"log/slog"
	"time"

	"scorewatch/contexts/score-moderation/artifact-pipeline/application"
	"scorewatch/contexts/score-moderation/artifact-pipeline/application/workers"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

type Module struct {
	Assembler application.ArtifactAssembler
	Consumer  workers.SynthesisConsumer
}

type Dependencies struct {
	Scores      ports.ScoreProvider
	Assets      ports.AssetResolver
	Performance ports.PerformanceService
	Renderer    ports.Renderer
	Messenger   ports.ArtifactMessenger
	Marker      ports.UploadMarker
	Thumbnails  ports.ContentStore

	ServerBaseURL       string
	WriteBackThumbnails bool
	SynthesisTimeout    time.Duration
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	assembler := application.ArtifactAssembler{
		Assets:        deps.Assets,
		Performance:   deps.Performance,
		Renderer:      deps.Renderer,
		ServerBaseURL: deps.ServerBaseURL,
		Logger:        deps.Logger,
	}
	return Module{
		Assembler: assembler,
		Consumer: workers.SynthesisConsumer{
			Scores:              deps.Scores,
			Assembler:           assembler,
			Messenger:           deps.Messenger,
			Marker:              deps.Marker,
			Thumbnails:          deps.Thumbnails,
			WriteBackThumbnails: deps.WriteBackThumbnails,
			SynthesisTimeout:    deps.SynthesisTimeout,
			Logger:              deps.Logger,
		},
	}
}
