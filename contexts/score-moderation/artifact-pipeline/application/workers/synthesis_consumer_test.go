package workers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"testing"

	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/memory"
	"scorewatch/contexts/score-moderation/artifact-pipeline/application"
	"scorewatch/contexts/score-moderation/artifact-pipeline/application/workers"
	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

type stubAssets struct {
	meta       entities.BeatmapMeta
	background image.Image
}

func (s stubAssets) BeatmapMeta(_ context.Context, _ int64) (entities.BeatmapMeta, error) {
	return s.meta, nil
}

func (s stubAssets) BackgroundImage(_ context.Context, _, _ int64) (image.Image, error) {
	return s.background, nil
}

type recordingMarker struct {
	uploaded []int64
}

func (m *recordingMarker) MarkUploaded(_ context.Context, requestID int64) error {
	m.uploaded = append(m.uploaded, requestID)
	return nil
}

func newConsumer(t *testing.T) (workers.SynthesisConsumer, *memory.ScoreProvider, *memory.Messenger, *recordingMarker) {
	t.Helper()

	var capture bytes.Buffer
	if err := png.Encode(&capture, image.NewNRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode capture: %v", err)
	}
	background := image.NewNRGBA(image.Rect(0, 0, 32, 18))
	for i := range background.Pix {
		background.Pix[i] = 180
	}

	perf := memory.NewPerformanceService()
	perf.SetResult(entities.Performance{PP: 512.5, Stars: 6.4})
	scores := memory.NewScoreProvider()
	messenger := memory.NewMessenger()
	marker := &recordingMarker{}

	consumer := workers.SynthesisConsumer{
		Scores: scores,
		Assembler: application.ArtifactAssembler{
			Assets: stubAssets{
				meta:       entities.BeatmapMeta{Artist: "a", Title: "t", Version: "v", MaxCombo: 100},
				background: background,
			},
			Performance:   perf,
			Renderer:      memory.NewRenderer(capture.Bytes()),
			ServerBaseURL: "https://akatsuki.gg",
		},
		Messenger: messenger,
		Marker:    marker,
	}
	return consumer, scores, messenger, marker
}

func envelopeFor(t *testing.T, event ports.ResolvedEvent) ports.InboundEnvelope {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return ports.InboundEnvelope{
		EventID:   "evt-1",
		EventType: workers.TopicRequestResolved,
		Data:      data,
	}
}

func TestHandleAcceptedResolution(t *testing.T) {
	consumer, scores, messenger, marker := newConsumer(t)
	scores.Seed(entities.Score{
		ID:       1_000_000_001,
		User:     entities.User{ID: 7, Username: "player", Country: "DE"},
		Beatmap:  entities.Beatmap{BeatmapID: 11, BeatmapsetID: 12, MaxCombo: 100},
		MaxCombo: 100,
		Accuracy: 97.5,
	})

	consumer.Handle(context.Background(), envelopeFor(t, ports.ResolvedEvent{
		RequestID: 3,
		ScoreID:   1_000_000_001,
		Status:    "accepted",
		ThreadRef: 900,
	}))

	artifacts := messenger.Artifacts()
	if len(artifacts) != 1 {
		t.Fatalf("artifacts delivered = %d, want 1", len(artifacts))
	}
	if len(messenger.Failures()) != 0 {
		t.Fatalf("unexpected failures: %v", messenger.Failures())
	}
	if len(marker.uploaded) != 1 || marker.uploaded[0] != 3 {
		t.Fatalf("uploaded marks = %v, want [3]", marker.uploaded)
	}
}

func TestHandleSkipsNonAccepted(t *testing.T) {
	consumer, _, messenger, marker := newConsumer(t)

	for _, status := range []string{"denied", "tied"} {
		consumer.Handle(context.Background(), envelopeFor(t, ports.ResolvedEvent{
			RequestID: 4,
			ScoreID:   1_000_000_002,
			Status:    status,
		}))
	}
	if len(messenger.Artifacts()) != 0 || len(messenger.Failures()) != 0 {
		t.Fatal("non-accepted resolution triggered synthesis")
	}
	if len(marker.uploaded) != 0 {
		t.Fatal("non-accepted resolution marked uploaded")
	}
}

func TestHandleWritesBackThumbnail(t *testing.T) {
	consumer, scores, messenger, _ := newConsumer(t)
	store := memory.NewContentStore()
	consumer.Thumbnails = store
	consumer.WriteBackThumbnails = true
	scores.Seed(entities.Score{
		ID:       1_000_000_001,
		User:     entities.User{ID: 7, Username: "player", Country: "DE"},
		Beatmap:  entities.Beatmap{BeatmapID: 11, BeatmapsetID: 12, MaxCombo: 100},
		MaxCombo: 100,
		Accuracy: 97.5,
	})

	consumer.Handle(context.Background(), envelopeFor(t, ports.ResolvedEvent{
		RequestID: 3,
		ScoreID:   1_000_000_001,
		Status:    "accepted",
		ThreadRef: 900,
	}))

	if len(messenger.Artifacts()) != 1 {
		t.Fatalf("artifacts delivered = %d, want 1", len(messenger.Artifacts()))
	}
	data, err := store.GetObject(context.Background(), "/thumbnails/1000000001.jpg")
	if err != nil {
		t.Fatalf("thumbnail not written back: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatal("written thumbnail is not a JPEG stream")
	}
}

func TestHandleDeliversFailureString(t *testing.T) {
	consumer, _, messenger, marker := newConsumer(t)
	// No seeded score: the provider misses and the failure string is posted.
	consumer.Handle(context.Background(), envelopeFor(t, ports.ResolvedEvent{
		RequestID: 5,
		ScoreID:   1_000_000_003,
		Status:    "accepted",
		ThreadRef: 901,
	}))

	failures := messenger.Failures()
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", failures)
	}
	if len(messenger.Artifacts()) != 0 {
		t.Fatal("failure path still delivered an artifact")
	}
	if len(marker.uploaded) != 0 {
		t.Fatal("failed synthesis marked uploaded")
	}
}
