package application_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/memory"
	"scorewatch/contexts/score-moderation/artifact-pipeline/application"
	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
)

type stubAssets struct {
	meta       entities.BeatmapMeta
	metaErr    error
	background image.Image
	bgErr      error
}

func (s stubAssets) BeatmapMeta(_ context.Context, _ int64) (entities.BeatmapMeta, error) {
	return s.meta, s.metaErr
}

func (s stubAssets) BackgroundImage(_ context.Context, _, _ int64) (image.Image, error) {
	return s.background, s.bgErr
}

func testBackground(t *testing.T) image.Image {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 36))
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 7), B: 40, A: 255})
		}
	}
	return img
}

func captureBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode capture: %v", err)
	}
	return buf.Bytes()
}

func testScore() entities.Score {
	return entities.Score{
		ID: 1_000_000_777,
		User: entities.User{
			ID:       1001,
			Username: "cookiezi",
			Country:  "KR",
		},
		Beatmap: entities.Beatmap{
			BeatmapMD5:   "d41d8cd98f00b204e9800998ecf8427e",
			BeatmapID:    129891,
			BeatmapsetID: 39804,
			SongName:     "xi - Freedom Dive [FOUR DIMENSIONS]",
			MaxCombo:     2385,
		},
		Total:     132408001,
		MaxCombo:  2385,
		FullCombo: true,
		Mods:      entities.ModHidden | entities.ModHardRock,
		CountMiss: 0,
		Mode:      entities.ModeStandard,
		Accuracy:  99.83,
		PP:        727.0,
		Rank:      "SS",
	}
}

func newAssembler(t *testing.T) (application.ArtifactAssembler, *memory.PerformanceService, *memory.Renderer) {
	t.Helper()
	perf := memory.NewPerformanceService()
	perf.SetResult(entities.Performance{PP: 727.42, Stars: 7.27})
	renderer := memory.NewRenderer(captureBytes(t))
	assembler := application.ArtifactAssembler{
		Assets: stubAssets{
			meta: entities.BeatmapMeta{
				Artist:   "xi",
				Title:    "Freedom Dive",
				Creator:  "Nakagawa-Kanon",
				Version:  "FOUR DIMENSIONS",
				MaxCombo: 2385,
			},
			background: testBackground(t),
		},
		Performance:   perf,
		Renderer:      renderer,
		ServerBaseURL: "https://akatsuki.gg",
	}
	return assembler, perf, renderer
}

func TestGenerateUploadResources(t *testing.T) {
	assembler, _, renderer := newAssembler(t)

	artifact, err := assembler.GenerateUploadResources(context.Background(), testScore())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	wantTitle := "[7.27 ⭐] Vanilla | cookiezi | xi - Freedom Dive [FOUR DIMENSIONS] +HDHR 99.83% 727pp FC"
	if artifact.Title != wantTitle {
		t.Fatalf("title = %q, want %q", artifact.Title, wantTitle)
	}
	for _, want := range []string{
		"Player: https://akatsuki.gg/u/1001",
		"Server: https://akatsuki.gg",
		"Map: https://akatsuki.gg/b/129891",
	} {
		if !strings.Contains(artifact.Description, want) {
			t.Fatalf("description missing %q:\n%s", want, artifact.Description)
		}
	}
	if len(artifact.ImageData) < 2 || artifact.ImageData[0] != 0xFF || artifact.ImageData[1] != 0xD8 {
		t.Fatal("image data is not a JPEG stream")
	}

	document := renderer.LastDocument()
	for _, want := range []string{"cookiezi", "FOUR DIMENSIONS", "+HDHR", "2385x/2385x", "#cde7ff"} {
		if !strings.Contains(document, want) {
			t.Fatalf("rendered document missing %q", want)
		}
	}
	if strings.Contains(document, "<%") {
		t.Fatal("rendered document contains unresolved placeholders")
	}
}

func TestGenerateUsesScoreTotalWithoutMapCombo(t *testing.T) {
	assembler, _, renderer := newAssembler(t)
	assets := assembler.Assets.(stubAssets)
	assets.meta.MaxCombo = 0
	assembler.Assets = assets

	if _, err := assembler.GenerateUploadResources(context.Background(), testScore()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(renderer.LastDocument(), "132,408,001 (2385x)") {
		t.Fatal("combo cell did not fall back to the formatted score total")
	}
}

func TestGenerateMissTitleUsesCrossmark(t *testing.T) {
	assembler, _, _ := newAssembler(t)
	score := testScore()
	score.CountMiss = 2

	artifact, err := assembler.GenerateUploadResources(context.Background(), score)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasSuffix(artifact.Title, "2❌") {
		t.Fatalf("title = %q, want 2❌ suffix", artifact.Title)
	}
}

// A performance miss is terminal: the literal failure string maps from the
// error and nothing partial is returned.
func TestGenerateFailsWithoutPerformanceData(t *testing.T) {
	assembler, _, _ := newAssembler(t)
	assembler.Performance = memory.NewPerformanceService()

	artifact, err := assembler.GenerateUploadResources(context.Background(), testScore())
	if !errors.Is(err, domainerrors.ErrPerformanceNotFound) {
		t.Fatalf("err = %v, want ErrPerformanceNotFound", err)
	}
	if artifact.Title != "" || artifact.Description != "" || len(artifact.ImageData) != 0 {
		t.Fatalf("partial artifact returned: %+v", artifact)
	}
	if got := assembler.FailureMessage(err); got != application.FailurePerformance {
		t.Fatalf("failure message = %q, want %q", got, application.FailurePerformance)
	}
}

func TestGenerateFailsWithoutBeatmap(t *testing.T) {
	assembler, _, _ := newAssembler(t)
	assembler.Assets = stubAssets{metaErr: domainerrors.ErrBeatmapNotFound}

	_, err := assembler.GenerateUploadResources(context.Background(), testScore())
	if !errors.Is(err, domainerrors.ErrBeatmapNotFound) {
		t.Fatalf("err = %v, want ErrBeatmapNotFound", err)
	}
	if got := assembler.FailureMessage(err); got != application.FailureBeatmap {
		t.Fatalf("failure message = %q, want %q", got, application.FailureBeatmap)
	}
}

func TestGenerateFailsOnRenderError(t *testing.T) {
	assembler, _, renderer := newAssembler(t)
	renderer.FailWith(errors.New("browser crashed"))

	_, err := assembler.GenerateUploadResources(context.Background(), testScore())
	if !errors.Is(err, domainerrors.ErrRenderFailed) {
		t.Fatalf("err = %v, want ErrRenderFailed", err)
	}
	if got := assembler.FailureMessage(err); got != application.FailureRender {
		t.Fatalf("failure message = %q, want %q", got, application.FailureRender)
	}
}
