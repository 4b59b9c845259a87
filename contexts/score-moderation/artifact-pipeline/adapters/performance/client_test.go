package performance_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scorewatch/contexts/score-moderation/artifact-pipeline/adapters/performance"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

func TestCalculate(t *testing.T) {
	var received []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/calculate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`[{"pp": 727.4, "stars": 7.27}]`))
	}))
	defer server.Close()

	client := performance.NewClient(server.URL, server.Client())
	result, err := client.Calculate(context.Background(), ports.PerformanceInput{
		BeatmapID: 129891,
		Mode:      0,
		Mods:      72,
		MaxCombo:  2385,
		Accuracy:  99.83,
		MissCount: 0,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.PP != 727.4 || result.Stars != 7.27 {
		t.Fatalf("result = %+v", result)
	}
	if len(received) != 1 || received[0]["beatmap_id"] != float64(129891) {
		t.Fatalf("request batch = %+v, want exactly one entry", received)
	}
}

func TestCalculateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := performance.NewClient(server.URL, server.Client())
	_, err := client.Calculate(context.Background(), ports.PerformanceInput{BeatmapID: 1})
	if !errors.Is(err, domainerrors.ErrPerformanceNotFound) {
		t.Fatalf("err = %v, want ErrPerformanceNotFound", err)
	}
}
