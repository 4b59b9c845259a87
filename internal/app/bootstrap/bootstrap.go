package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	pipeline "scorewatch/contexts/score-moderation/artifact-pipeline"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/assets"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/logmessenger"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/osuapi"
	pipelineperformance "scorewatch/contexts/score-moderation/artifact-pipeline/adapters/performance"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/render"
	pipelines3 "scorewatch/contexts/score-moderation/artifact-pipeline/adapters/s3"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/scoreapi"
	pipelineports "scorewatch/contexts/score-moderation/artifact-pipeline/ports"
	consensus "scorewatch/contexts/score-moderation/consensus-engine"
	"scorewatch/contexts/score-moderation/consensus-engine/adapters/memory"
	postgresadapter "scorewatch/contexts/score-moderation/consensus-engine/adapters/postgres"
	"scorewatch/contexts/score-moderation/consensus-engine/adapters/roster"
	"scorewatch/contexts/score-moderation/consensus-engine/application/commands"
	consensusworkers "scorewatch/contexts/score-moderation/consensus-engine/application/workers"
	consensusports "scorewatch/contexts/score-moderation/consensus-engine/ports"
	"scorewatch/internal/platform/config"
	"scorewatch/internal/platform/db"
	"scorewatch/internal/platform/httpclient"
	"scorewatch/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const consumerGroup = "scorewatch-synthesis-cg"

type WorkerApp struct {
	postgres     *db.Postgres
	bus          *messaging.Bus
	outboxRelay  consensusworkers.OutboxRelay
	pipeline     pipeline.Module
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	var (
		pg         *db.Postgres
		requests   consensusports.RequestRepository
		outboxRepo consensusports.OutboxRepository
		outbox     consensusports.OutboxWriter
		clock      consensusports.Clock
		idGen      consensusports.IDGenerator
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		requests, outboxRepo, outbox = repo, repo, repo
		clock = postgresadapter.SystemClock{}
		idGen = postgresadapter.UUIDGenerator{}
	} else {
		store := memory.NewStore()
		store.SetEligibleVoters(cfg.VoterIDs)
		requests, outboxRepo, outbox = store, store, store
		clock, idGen = store, store
	}

	if len(cfg.VoterIDs) == 0 {
		return nil, errors.New("ELIGIBLE_VOTER_IDS is required")
	}
	voters := roster.NewStaticRoster(cfg.VoterIDs)

	consensusModule := consensus.NewModule(consensus.Dependencies{
		Requests:  requests,
		Voters:    voters,
		Outbox:    outbox,
		Clock:     clock,
		IDGen:     idGen,
		TiePolicy: commands.TiePolicy(cfg.TiePolicy),
		Logger:    logger,
	})

	bus := messaging.NewBus(logger)
	httpClient := httpclient.New(cfg.HTTPTimeout)

	var contentStore pipelineports.ContentStore
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, err
		}
		contentStore = pipelines3.NewContentStore(awss3.NewFromConfig(awsCfg), cfg.S3Bucket)
	}

	mirrors := make([]pipelineports.BeatmapMirror, 0, len(cfg.MirrorBaseURLs))
	for _, baseURL := range cfg.MirrorBaseURLs {
		mirrors = append(mirrors, assets.NewHTTPMirror(mirrorName(baseURL), baseURL, httpClient))
	}

	resolver := &assets.Resolver{
		Store:              contentStore,
		MetadataAPI:        osuapi.NewClient(cfg.OsuFileBaseURL, httpClient),
		Mirrors:            mirrors,
		HTTPClient:         httpClient,
		DirectMediaBaseURL: cfg.DirectMediaBaseURL,
		WriteBackAssets:    cfg.WriteBackAssets,
		Logger:             logger,
	}

	pipelineModule := pipeline.NewModule(pipeline.Dependencies{
		Scores:              scoreapi.NewClient(cfg.ScoreAPIBaseURL, httpClient),
		Assets:              resolver,
		Performance:         pipelineperformance.NewClient(cfg.PerformanceBaseURL, httpClient),
		Renderer:            &render.Renderer{Timeout: cfg.RenderTimeout},
		Messenger:           logmessenger.Messenger{Logger: logger},
		Marker:              consensusModule.Consensus,
		Thumbnails:          contentStore,
		ServerBaseURL:       cfg.ServerBaseURL,
		WriteBackThumbnails: cfg.WriteBackThumbnails,
		SynthesisTimeout:    cfg.SynthesisTimeout,
		Logger:              logger,
	})

	return &WorkerApp{
		postgres: pg,
		bus:      bus,
		outboxRelay: consensusworkers.OutboxRelay{
			Outbox:    outboxRepo,
			Publisher: bus,
			Clock:     clock,
			BatchSize: 100,
			Logger:    logger,
		},
		pipeline:     pipelineModule,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.pipeline.Consumer.Register(busSubscriber{ctx: ctx, bus: w.bus}); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// busSubscriber adapts the platform bus to the pipeline's Subscriber port,
// converting the consensus envelope into the pipeline's inbound shape.
type busSubscriber struct {
	ctx context.Context
	bus *messaging.Bus
}

func (s busSubscriber) Subscribe(
	topic string,
	handler func(ctx context.Context, envelope pipelineports.InboundEnvelope),
) error {
	return s.bus.Subscribe(s.ctx, topic, consumerGroup,
		func(ctx context.Context, event consensusports.EventEnvelope) error {
			handler(ctx, pipelineports.InboundEnvelope{
				EventID:    event.EventID,
				EventType:  event.EventType,
				OccurredAt: event.OccurredAt,
				Data:       event.Data,
			})
			return nil
		})
}

func mirrorName(baseURL string) string {
	name := strings.TrimPrefix(baseURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	return strings.TrimPrefix(name, "api.")
}
