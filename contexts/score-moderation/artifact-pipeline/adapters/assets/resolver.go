package assets

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// directMediaMissSentinel is the body the direct media endpoint returns for a
// missing background. It arrives with a success status, so it has to be
// detected in the payload.
const directMediaMissSentinel = "beatmap not found!"

const userAgent = "scorewatch/artifact-pipeline"

// Resolver implements the asset read path: .osu metadata through the content
// store with API fallback, and backgrounds through the direct media endpoint
// then the ordered mirror chain.
type Resolver struct {
	Store              ports.ContentStore
	MetadataAPI        ports.BeatmapMetadataAPI
	Mirrors            []ports.BeatmapMirror
	HTTPClient         *http.Client
	DirectMediaBaseURL string

	// WriteBackAssets enables writing API-fetched .osu files back to the
	// content store. Off by default: upstream systems may publish newer data.
	WriteBackAssets bool

	Logger *slog.Logger
}

func (r *Resolver) BeatmapMeta(ctx context.Context, beatmapID int64) (entities.BeatmapMeta, error) {
	osuFile, err := r.osuFile(ctx, beatmapID)
	if err != nil {
		return entities.BeatmapMeta{}, err
	}
	return entities.ParseBeatmapMeta(osuFile), nil
}

func (r *Resolver) BackgroundImage(
	ctx context.Context,
	beatmapID int64,
	beatmapsetID int64,
) (image.Image, error) {
	img, err := r.backgroundFromDirectMedia(ctx, beatmapID)
	if err == nil {
		return img, nil
	}
	r.logMiss("pipeline_direct_media_miss", err, "beatmap_id", beatmapID)

	img, err = r.backgroundFromMirrors(ctx, beatmapID, beatmapsetID)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// osuFile is the read-through path: content store first, metadata API on
// miss. The cache is only written back when the policy flag allows it.
func (r *Resolver) osuFile(ctx context.Context, beatmapID int64) ([]byte, error) {
	key := fmt.Sprintf("/beatmaps/%d.osu", beatmapID)
	if r.Store != nil {
		data, err := r.Store.GetObject(ctx, key)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil && !errors.Is(err, domainerrors.ErrObjectNotFound) {
			r.logMiss("pipeline_content_store_miss", err, "key", key)
		}
	}

	data, err := r.MetadataAPI.FetchOsuFile(ctx, beatmapID)
	if err != nil {
		return nil, domainerrors.ErrBeatmapNotFound
	}
	if len(data) == 0 {
		return nil, domainerrors.ErrBeatmapNotFound
	}
	if r.WriteBackAssets && r.Store != nil {
		if err := r.Store.PutObject(ctx, key, data); err != nil {
			r.logMiss("pipeline_content_store_writeback_failed", err, "key", key)
		}
	}
	return data, nil
}

func (r *Resolver) backgroundFromDirectMedia(ctx context.Context, beatmapID int64) (image.Image, error) {
	url := fmt.Sprintf("%s/media/background/%d", r.DirectMediaBaseURL, beatmapID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("direct media endpoint returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(body, []byte(directMediaMissSentinel)) {
		return nil, domainerrors.ErrBackgroundNotFound
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// backgroundFromMirrors walks the mirror chain in order. Transport and
// archive failures are absorbed per mirror; the first mirror whose bundle
// contains the background filename wins.
func (r *Resolver) backgroundFromMirrors(
	ctx context.Context,
	beatmapID int64,
	beatmapsetID int64,
) (image.Image, error) {
	osuFile, err := r.osuFile(ctx, beatmapID)
	if err != nil {
		return nil, err
	}
	filename := entities.BackgroundFilename(osuFile)
	if filename == "" {
		return nil, domainerrors.ErrBackgroundNotFound
	}

	for _, mirror := range r.Mirrors {
		archive, err := mirror.FetchBeatmapsetArchive(ctx, beatmapsetID)
		if err != nil {
			r.logMiss("pipeline_mirror_fetch_failed", err,
				"mirror", mirror.Name(), "beatmapset_id", beatmapsetID)
			continue
		}
		img, err := extractImage(archive, filename)
		if err != nil {
			r.logMiss("pipeline_mirror_extract_failed", err,
				"mirror", mirror.Name(), "beatmapset_id", beatmapsetID)
			continue
		}
		if img == nil {
			continue
		}
		return img, nil
	}
	return nil, domainerrors.ErrBackgroundNotFound
}

// extractImage scans the bundle for the background entry. Entry names are
// map-author data and normalized before comparison. A missing entry is
// (nil, nil): the next mirror may still carry it.
func extractImage(archive []byte, filename string) (image.Image, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	for _, entry := range reader.File {
		if entities.NormalizeArchivePath(entry.Name) != filename {
			continue
		}
		file, err := entry.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		img, _, err := image.Decode(file)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	return nil, nil
}

func (r *Resolver) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}

func (r *Resolver) logMiss(event string, err error, attrs ...any) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fields := append([]any{
		"event", event,
		"module", "score-moderation/artifact-pipeline",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	logger.Warn("asset source miss", fields...)
}

var _ ports.AssetResolver = (*Resolver)(nil)
