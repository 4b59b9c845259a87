package scoreapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// Client is the typed score-data provider over the private server's
// GET /api/v1/score endpoint.
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

type scoreResponse struct {
	Code  int `json:"code"`
	Score struct {
		ID        int64   `json:"id,string"`
		Total     int64   `json:"score"`
		MaxCombo  int     `json:"max_combo"`
		FullCombo bool    `json:"full_combo"`
		Mods      int64   `json:"mods"`
		Count300  int     `json:"count_300"`
		Count100  int     `json:"count_100"`
		Count50   int     `json:"count_50"`
		CountMiss int     `json:"count_miss"`
		CountKatu int     `json:"count_katu"`
		CountGeki int     `json:"count_geki"`
		PlayMode  int     `json:"play_mode"`
		Accuracy  float64 `json:"accuracy"`
		PP        float64 `json:"pp"`
		Rank      string  `json:"rank"`
		User      struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Country  string `json:"country"`
		} `json:"user"`
	} `json:"score"`
	Beatmap struct {
		BeatmapMD5   string  `json:"beatmap_md5"`
		BeatmapID    int64   `json:"beatmap_id"`
		BeatmapsetID int64   `json:"beatmapset_id"`
		SongName     string  `json:"song_name"`
		AR           float64 `json:"ar"`
		OD           float64 `json:"od"`
		MaxCombo     int     `json:"max_combo"`
	} `json:"beatmap"`
}

func (c *Client) FetchScore(
	ctx context.Context,
	scoreID int64,
	ruleset entities.Ruleset,
) (entities.Score, error) {
	url := fmt.Sprintf("%s/api/v1/score?id=%d&rx=%d", c.baseURL, scoreID, ruleset.RelaxFlag())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entities.Score{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return entities.Score{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return entities.Score{}, fmt.Errorf("score endpoint returned %d", resp.StatusCode)
	}

	var payload scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return entities.Score{}, err
	}
	if payload.Code != http.StatusOK {
		return entities.Score{}, domainerrors.ErrScoreNotFound
	}

	return entities.Score{
		ID: payload.Score.ID,
		User: entities.User{
			ID:       payload.Score.User.ID,
			Username: payload.Score.User.Username,
			Country:  payload.Score.User.Country,
		},
		Beatmap: entities.Beatmap{
			BeatmapMD5:   payload.Beatmap.BeatmapMD5,
			BeatmapID:    payload.Beatmap.BeatmapID,
			BeatmapsetID: payload.Beatmap.BeatmapsetID,
			SongName:     payload.Beatmap.SongName,
			AR:           payload.Beatmap.AR,
			OD:           payload.Beatmap.OD,
			MaxCombo:     payload.Beatmap.MaxCombo,
		},
		Total:     payload.Score.Total,
		MaxCombo:  payload.Score.MaxCombo,
		FullCombo: payload.Score.FullCombo,
		Mods:      entities.Mods(payload.Score.Mods),
		Count300:  payload.Score.Count300,
		Count100:  payload.Score.Count100,
		Count50:   payload.Score.Count50,
		CountMiss: payload.Score.CountMiss,
		CountKatu: payload.Score.CountKatu,
		CountGeki: payload.Score.CountGeki,
		Mode:      entities.GameMode(payload.Score.PlayMode),
		Accuracy:  payload.Score.Accuracy,
		PP:        payload.Score.PP,
		Rank:      payload.Score.Rank,
	}, nil
}

var _ ports.ScoreProvider = (*Client)(nil)
