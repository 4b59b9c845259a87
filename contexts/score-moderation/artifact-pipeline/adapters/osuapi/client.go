package osuapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// Client fetches raw .osu file contents from the upstream game server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient wraps the osu! file endpoint, e.g. base "https://old.ppy.sh".
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, client: client}
}

func (c *Client) FetchOsuFile(ctx context.Context, beatmapID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/osu/%d", c.baseURL, beatmapID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, domainerrors.ErrBeatmapNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osu file endpoint returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domainerrors.ErrBeatmapNotFound
	}
	return data, nil
}

var _ ports.BeatmapMetadataAPI = (*Client)(nil)
