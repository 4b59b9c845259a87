package application

import (
	"fmt"
	"strings"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
)

// RequestEmbed is the moderation-thread embed content for one request. Pure
// text/colour composition; the chat layer owns delivery.
type RequestEmbed struct {
	Title       string
	Description string
	ScoreField  string
	CoverURL    string
	Colour      int
}

// BuildRequestEmbed composes the upload-request embed from a fetched score.
func BuildRequestEmbed(score entities.Score, status string, statusColour int, serverBaseURL string) RequestEmbed {
	detailText, _ := ClassifyScoreDetail(score)
	modeName := score.Mode.Name()

	description := strings.Join([]string{
		fmt.Sprintf("Player: [%s](%s/u/%d)", score.User.Username, serverBaseURL, score.User.ID),
		fmt.Sprintf("Leaderboard: [Click here!](%s/b/%d)", serverBaseURL, score.Beatmap.BeatmapID),
		fmt.Sprintf("Replay: [Click here!](%s/web/replays/%d)", serverBaseURL, score.ID),
	}, "\n")

	scoreField := strings.Join([]string{
		fmt.Sprintf("▸ Mode: %s", score.Mode.Readable()),
		fmt.Sprintf("▸ Map: [%s](https://osu.ppy.sh/beatmapsets/%d#%s/%d)",
			score.Beatmap.SongName, score.Beatmap.BeatmapsetID, modeName, score.Beatmap.BeatmapID),
		fmt.Sprintf("▸ Score: +%s %s %.2f%% %.0fpp", score.Mods, detailText, score.Accuracy, score.PP),
		fmt.Sprintf("▸ Combo: %dx/%dx", score.MaxCombo, score.Beatmap.MaxCombo),
	}, "\n")

	caser := "Unknown"
	if status != "" {
		caser = strings.ToUpper(status[:1]) + status[1:]
	}

	return RequestEmbed{
		Title:       fmt.Sprintf("Upload Request: %s", caser),
		Description: description,
		ScoreField:  scoreField,
		CoverURL:    fmt.Sprintf("https://assets.ppy.sh/beatmaps/%d/covers/card.jpg", score.Beatmap.BeatmapsetID),
		Colour:      statusColour,
	}
}
