package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"strconv"
	"strings"

	"scorewatch/contexts/score-moderation/artifact-pipeline/application/imagefx"
	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// Terminal failure strings shown to moderators. One per failed stage, never
// a raw error.
const (
	FailureScore       = "Couldn't find this score!"
	FailureBeatmap     = "Couldn't find this beatmap!"
	FailurePerformance = "Couldn't find performance data for this score!"
	FailureRender      = "Something went wrong while rendering the thumbnail!"
)

// ArtifactAssembler orchestrates one synthesis call: assets, composition,
// template fill, rasterization, performance lookup, and text assembly. All
// collaborators are injected; the assembler holds no mutable state.
type ArtifactAssembler struct {
	Assets      ports.AssetResolver
	Performance ports.PerformanceService
	Renderer    ports.Renderer

	// ServerBaseURL roots the player/map links in descriptions, e.g.
	// "https://akatsuki.gg".
	ServerBaseURL string
	Logger        *slog.Logger
}

// GenerateUploadResources produces the complete artifact for a score, or an
// error mapping to exactly one failure string. Nothing partial is returned.
func (a ArtifactAssembler) GenerateUploadResources(
	ctx context.Context,
	score entities.Score,
) (entities.ScoreUploadArtifact, error) {
	logger := resolveLogger(a.Logger)
	ruleset := entities.RulesetFromScoreID(score.ID)

	meta, err := a.Assets.BeatmapMeta(ctx, score.Beatmap.BeatmapID)
	if err != nil {
		return entities.ScoreUploadArtifact{}, err
	}
	background, err := a.Assets.BackgroundImage(ctx, score.Beatmap.BeatmapID, score.Beatmap.BeatmapsetID)
	if err != nil {
		return entities.ScoreUploadArtifact{}, err
	}

	composed := imagefx.ApplyNormalPreset(background)
	backgroundPNG, err := imagefx.EncodePNG(composed)
	if err != nil {
		return entities.ScoreUploadArtifact{}, fmt.Errorf("%w: %v", domainerrors.ErrRenderFailed, err)
	}

	detailText, detailColour := ClassifyScoreDetail(score)
	document, err := FillTemplate(UploadThumbnailTemplate(), map[string]string{
		"bg-image":      base64.StdEncoding.EncodeToString(backgroundPNG),
		"misc-colour":   detailColour,
		"misc-text":     detailText,
		"title-colour":  ruleset.TitleColour(),
		"username":      score.User.Username,
		"mode":          score.Mode.Name(),
		"country":       score.User.Country,
		"userid":        strconv.FormatInt(score.User.ID, 10),
		"artist":        meta.Artist,
		"title":         meta.Title,
		"map-diff":      meta.Version,
		"mods":          "+" + score.Mods.String(),
		"combo":         comboCell(score, meta),
		"pp-val":        strconv.Itoa(int(score.PP)),
		"acc":           fmt.Sprintf("%.2f", score.Accuracy),
	})
	if err != nil {
		return entities.ScoreUploadArtifact{}, err
	}

	capture, err := a.Renderer.Rasterize(ctx, document, imagefx.CanvasWidth, imagefx.CanvasHeight)
	if err != nil {
		return entities.ScoreUploadArtifact{}, fmt.Errorf("%w: %v", domainerrors.ErrRenderFailed, err)
	}
	thumbnail, err := transcodeCapture(capture)
	if err != nil {
		return entities.ScoreUploadArtifact{}, fmt.Errorf("%w: %v", domainerrors.ErrRenderFailed, err)
	}

	performance, err := a.Performance.Calculate(ctx, ports.PerformanceInput{
		BeatmapID: score.Beatmap.BeatmapID,
		Mode:      int(score.Mode),
		Mods:      int64(score.Mods),
		MaxCombo:  score.MaxCombo,
		Accuracy:  score.Accuracy,
		MissCount: score.CountMiss,
		Ruleset:   ruleset,
	})
	if err != nil {
		return entities.ScoreUploadArtifact{}, err
	}

	logger.Info("upload artifact assembled",
		"event", "pipeline_artifact_assembled",
		"module", "score-moderation/artifact-pipeline",
		"layer", "application",
		"score_id", score.ID,
		"beatmap_id", score.Beatmap.BeatmapID,
		"pp", performance.PP,
		"stars", performance.Stars,
	)

	return entities.ScoreUploadArtifact{
		Title:       a.buildTitle(score, meta, ruleset, performance, detailText),
		Description: a.buildDescription(score),
		ImageData:   thumbnail,
	}, nil
}

// FailureMessage maps a terminal synthesis error to its single user-facing
// string.
func (a ArtifactAssembler) FailureMessage(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrScoreNotFound):
		return FailureScore
	case errors.Is(err, domainerrors.ErrBeatmapNotFound),
		errors.Is(err, domainerrors.ErrBackgroundNotFound):
		return FailureBeatmap
	case errors.Is(err, domainerrors.ErrPerformanceNotFound):
		return FailurePerformance
	default:
		return FailureRender
	}
}

func (a ArtifactAssembler) buildTitle(
	score entities.Score,
	meta entities.BeatmapMeta,
	ruleset entities.Ruleset,
	performance entities.Performance,
	detailText string,
) string {
	songName := fmt.Sprintf("%s - %s [%s]", meta.Artist, meta.Title, meta.Version)
	titleDetail := strings.ReplaceAll(detailText, "xMiss", "❌")
	return fmt.Sprintf("[%.2f ⭐] %s | %s | %s +%s %.2f%% %dpp %s",
		performance.Stars,
		ruleset.Label(),
		score.User.Username,
		songName,
		score.Mods,
		score.Accuracy,
		int(performance.PP),
		titleDetail,
	)
}

func (a ArtifactAssembler) buildDescription(score entities.Score) string {
	return strings.Join([]string{
		fmt.Sprintf("Player: %s/u/%d", a.ServerBaseURL, score.User.ID),
		fmt.Sprintf("Server: %s", a.ServerBaseURL),
		fmt.Sprintf("Map: %s/b/%d", a.ServerBaseURL, score.Beatmap.BeatmapID),
		"",
		"Recorded by <>",
		"Uploaded by <>",
		"------------------",
		fmt.Sprintf("Akatsuki is an osu! private server, featuring a normal and relax server"+
			" with many active users! Join our discord here! %s/discord", a.ServerBaseURL),
	}, "\n")
}

// transcodeCapture converts the renderer's PNG capture into the delivery
// JPEG at the fixed quality.
func transcodeCapture(capture []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(capture))
	if err != nil {
		return nil, err
	}
	return imagefx.EncodeJPEG(img, imagefx.JPEGQuality)
}

// comboCell renders "<combo>x/<max>x" when the parsed map reports a max
// combo, otherwise the formatted score total with the raw combo.
func comboCell(score entities.Score, meta entities.BeatmapMeta) string {
	if meta.MaxCombo > 0 {
		return fmt.Sprintf("%dx/%dx", score.MaxCombo, meta.MaxCombo)
	}
	return fmt.Sprintf("%s (%dx)", formatThousands(score.Total), score.MaxCombo)
}

func formatThousands(n int64) string {
	raw := strconv.FormatInt(n, 10)
	negative := strings.HasPrefix(raw, "-")
	digits := strings.TrimPrefix(raw, "-")
	var b strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
