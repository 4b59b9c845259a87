package performance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// Client posts a single-score batch to the performance computation service.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, client: client}
}

type performanceResult struct {
	PP    float64 `json:"pp"`
	Stars float64 `json:"stars"`
}

func (c *Client) Calculate(
	ctx context.Context,
	input ports.PerformanceInput,
) (entities.Performance, error) {
	body, err := json.Marshal([]ports.PerformanceInput{input})
	if err != nil {
		return entities.Performance{}, err
	}
	url := c.baseURL + "/api/v1/calculate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return entities.Performance{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return entities.Performance{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return entities.Performance{}, fmt.Errorf("performance endpoint returned %d", resp.StatusCode)
	}

	var results []performanceResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return entities.Performance{}, err
	}
	if len(results) == 0 {
		return entities.Performance{}, domainerrors.ErrPerformanceNotFound
	}
	return entities.Performance{PP: results[0].PP, Stars: results[0].Stars}, nil
}

var _ ports.PerformanceService = (*Client)(nil)
