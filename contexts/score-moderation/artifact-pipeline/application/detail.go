package application

import (
	"fmt"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
)

// Detail colours rendered behind the classification label in the thumbnail.
const (
	DetailColourFC   = "#9df780"
	DetailColourSB   = "#f7e880"
	DetailColourMiss = "#f78080"
)

// ClassifyDetail labels a score: FC for a true full combo, SB when a clean
// pass still lost more than 10% of the map's max combo (possible
// slider-break), otherwise the miss count. Pure function over score fields.
func ClassifyDetail(missCount int, combo int, mapMaxCombo int) (text string, colour string) {
	if missCount != 0 {
		return fmt.Sprintf("%dxMiss", missCount), DetailColourMiss
	}
	if combo <= int(float64(mapMaxCombo)*0.9) {
		return "SB", DetailColourSB
	}
	return "FC", DetailColourFC
}

// ClassifyScoreDetail applies ClassifyDetail to a fetched score record.
func ClassifyScoreDetail(score entities.Score) (string, string) {
	return ClassifyDetail(score.CountMiss, score.MaxCombo, score.Beatmap.MaxCombo)
}
