package entities_test

import (
	"testing"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
)

func TestModsString(t *testing.T) {
	cases := []struct {
		name string
		mods entities.Mods
		want string
	}{
		{name: "no mods", mods: 0, want: "NM"},
		{name: "hidden hardrock", mods: entities.ModHidden | entities.ModHardRock, want: "HDHR"},
		{name: "nightcore suppresses doubletime", mods: entities.ModNightcore | entities.ModDoubleTime, want: "NC"},
		{name: "perfect suppresses suddendeath", mods: entities.ModPerfect | entities.ModSuddenDeath, want: "PF"},
		{name: "combined suppression", mods: entities.ModHidden | entities.ModNightcore | entities.ModDoubleTime | entities.ModPerfect | entities.ModSuddenDeath, want: "HDNCPF"},
		{name: "halftime flashlight", mods: entities.ModHalfTime | entities.ModFlashlight, want: "HTFL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.mods.String(); got != tc.want {
				t.Fatalf("Mods(%d).String() = %q, want %q", tc.mods, got, tc.want)
			}
		})
	}
}

func TestRulesetFromScoreID(t *testing.T) {
	cases := []struct {
		scoreID int64
		want    entities.Ruleset
	}{
		{scoreID: 1, want: entities.RulesetRelax},
		{scoreID: 499999999, want: entities.RulesetRelax},
		{scoreID: 500000000, want: entities.RulesetVanilla},
		{scoreID: 6148914691236517203, want: entities.RulesetVanilla},
		{scoreID: 6148914691236517204, want: entities.RulesetAutopilot},
	}
	for _, tc := range cases {
		if got := entities.RulesetFromScoreID(tc.scoreID); got != tc.want {
			t.Fatalf("RulesetFromScoreID(%d) = %s, want %s", tc.scoreID, got.Label(), tc.want.Label())
		}
	}
}

func TestParseBeatmapMeta(t *testing.T) {
	osuFile := []byte("osu file format v14\r\n" +
		"[Metadata]\r\n" +
		"Title:Freedom Dive\r\n" +
		"Artist:xi\r\n" +
		"Creator:Nakagawa-Kanon\r\n" +
		"Version:FOUR DIMENSIONS\r\n")

	meta := entities.ParseBeatmapMeta(osuFile)
	if meta.Artist != "xi" || meta.Title != "Freedom Dive" ||
		meta.Creator != "Nakagawa-Kanon" || meta.Version != "FOUR DIMENSIONS" {
		t.Fatalf("meta = %+v", meta)
	}
	if meta.MaxCombo != 0 {
		t.Fatalf("max combo = %d, want 0 when no source supplies it", meta.MaxCombo)
	}
}

func TestBackgroundFilename(t *testing.T) {
	osuFile := []byte("osu file format v14\n" +
		"[Events]\n" +
		"//Background and Video events\n" +
		`0,0,"bg.jpg",0,0` + "\n")
	if got := entities.BackgroundFilename(osuFile); got != "bg.jpg" {
		t.Fatalf("background = %q, want bg.jpg", got)
	}

	hostile := []byte("osu file format v14\n" + `0,0,"..\..\evil.jpg",0,0` + "\n")
	if got := entities.BackgroundFilename(hostile); got != "evil.jpg" {
		t.Fatalf("normalized background = %q, want evil.jpg", got)
	}

	if got := entities.BackgroundFilename([]byte("osu file format v14\n")); got != "" {
		t.Fatalf("background = %q, want empty for no events", got)
	}
}
