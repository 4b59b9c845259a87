package assets_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/assets"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/memory"
	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/osuapi"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

const testOsuFile = "osu file format v14\n" +
	"[Metadata]\n" +
	"Title:Test Song\n" +
	"Artist:Test Artist\n" +
	"Creator:mapper\n" +
	"Version:Insane\n" +
	"[Events]\n" +
	"0,0,\"bg.jpg\",0,0\n"

func pngBytes(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func archiveWith(t *testing.T, filename string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create(filename)
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := entry.Write(data); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

type staticMirror struct {
	name    string
	archive []byte
	err     error
	calls   int
}

func (m *staticMirror) Name() string { return m.name }

func (m *staticMirror) FetchBeatmapsetArchive(_ context.Context, _ int64) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.archive, nil
}

func missDirectMedia(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("beatmap not found!"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBeatmapMetaReadThrough(t *testing.T) {
	store := memory.NewContentStore()
	ctx := context.Background()
	if err := store.PutObject(ctx, "/beatmaps/42.osu", []byte(testOsuFile)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("metadata API called despite store hit")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	resolver := &assets.Resolver{
		Store:       store,
		MetadataAPI: osuapi.NewClient(api.URL, api.Client()),
	}
	meta, err := resolver.BeatmapMeta(ctx, 42)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.Artist != "Test Artist" || meta.Version != "Insane" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestBeatmapMetaFallsBackToAPIWithoutWriteBack(t *testing.T) {
	store := memory.NewContentStore()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testOsuFile))
	}))
	defer api.Close()

	resolver := &assets.Resolver{
		Store:       store,
		MetadataAPI: osuapi.NewClient(api.URL, api.Client()),
	}
	ctx := context.Background()
	if _, err := resolver.BeatmapMeta(ctx, 42); err != nil {
		t.Fatalf("meta: %v", err)
	}
	if _, err := store.GetObject(ctx, "/beatmaps/42.osu"); !errors.Is(err, domainerrors.ErrObjectNotFound) {
		t.Fatal("read-through path wrote the cache with write-back disabled")
	}
}

// Mirrors [A, B, C]: A fails transport, B's bundle lacks the background, C
// has it. The result must come from C and later mirrors must not matter.
func TestBackgroundMirrorOrderPreference(t *testing.T) {
	direct := missDirectMedia(t)
	store := memory.NewContentStore()
	ctx := context.Background()
	if err := store.PutObject(ctx, "/beatmaps/42.osu", []byte(testOsuFile)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	wantPNG := pngBytes(t, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	mirrorA := &staticMirror{name: "a", err: errors.New("connection refused")}
	mirrorB := &staticMirror{name: "b", archive: archiveWith(t, "other.jpg", wantPNG)}
	mirrorC := &staticMirror{name: "c", archive: archiveWith(t, "bg.jpg", wantPNG)}

	resolver := &assets.Resolver{
		Store:              store,
		Mirrors:            []ports.BeatmapMirror{mirrorA, mirrorB, mirrorC},
		HTTPClient:         direct.Client(),
		DirectMediaBaseURL: direct.URL,
	}
	img, err := resolver.BackgroundImage(ctx, 42, 9000)
	if err != nil {
		t.Fatalf("background: %v", err)
	}
	if img == nil {
		t.Fatal("no image returned")
	}
	if mirrorA.calls != 1 || mirrorB.calls != 1 || mirrorC.calls != 1 {
		t.Fatalf("mirror calls = %d/%d/%d, want each tried once in order",
			mirrorA.calls, mirrorB.calls, mirrorC.calls)
	}
}

func TestBackgroundStopsAtFirstMatchingMirror(t *testing.T) {
	direct := missDirectMedia(t)
	store := memory.NewContentStore()
	ctx := context.Background()
	if err := store.PutObject(ctx, "/beatmaps/42.osu", []byte(testOsuFile)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	data := pngBytes(t, color.NRGBA{R: 10, G: 200, B: 10, A: 255})
	mirrorB := &staticMirror{name: "b", archive: archiveWith(t, "bg.jpg", data)}
	mirrorC := &staticMirror{name: "c", archive: archiveWith(t, "bg.jpg", data)}

	resolver := &assets.Resolver{
		Store:              store,
		Mirrors:            []ports.BeatmapMirror{mirrorB, mirrorC},
		HTTPClient:         direct.Client(),
		DirectMediaBaseURL: direct.URL,
	}
	if _, err := resolver.BackgroundImage(ctx, 42, 9000); err != nil {
		t.Fatalf("background: %v", err)
	}
	if mirrorC.calls != 0 {
		t.Fatal("later mirror consulted after an earlier match")
	}
}

func TestBackgroundExhaustionReturnsNotFound(t *testing.T) {
	direct := missDirectMedia(t)
	store := memory.NewContentStore()
	ctx := context.Background()
	if err := store.PutObject(ctx, "/beatmaps/42.osu", []byte(testOsuFile)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	resolver := &assets.Resolver{
		Store:              store,
		Mirrors:            []ports.BeatmapMirror{&staticMirror{name: "a", err: errors.New("down")}},
		HTTPClient:         direct.Client(),
		DirectMediaBaseURL: direct.URL,
	}
	_, err := resolver.BackgroundImage(ctx, 42, 9000)
	if !errors.Is(err, domainerrors.ErrBackgroundNotFound) {
		t.Fatalf("err = %v, want ErrBackgroundNotFound", err)
	}
}

func TestBackgroundDirectMediaHit(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngBytes(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))
	}))
	defer direct.Close()

	resolver := &assets.Resolver{
		HTTPClient:         direct.Client(),
		DirectMediaBaseURL: direct.URL,
	}
	img, err := resolver.BackgroundImage(context.Background(), 42, 9000)
	if err != nil {
		t.Fatalf("background: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}
