package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// HTTPMirror is one archive mirror serving beatmapset bundles at
// <base>/d/<beatmapset_id>.
type HTTPMirror struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPMirror(name, baseURL string, client *http.Client) *HTTPMirror {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPMirror{name: name, baseURL: baseURL, client: client}
}

func (m *HTTPMirror) Name() string { return m.name }

func (m *HTTPMirror) FetchBeatmapsetArchive(ctx context.Context, beatmapsetID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/d/%d", m.baseURL, beatmapsetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("mirror %s returned %d", m.name, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DefaultMirrors is the production chain in preference order.
func DefaultMirrors(client *http.Client) []ports.BeatmapMirror {
	return []ports.BeatmapMirror{
		NewHTTPMirror("osu.direct", "https://api.osu.direct", client),
		NewHTTPMirror("catboy.best", "https://catboy.best", client),
	}
}

var _ ports.BeatmapMirror = (*HTTPMirror)(nil)
