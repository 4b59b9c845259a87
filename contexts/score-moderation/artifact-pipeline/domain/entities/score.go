package entities

// Ruleset is the scoring variant a score was set under. Raw score ids encode
// it by range.
type Ruleset int

const (
	RulesetVanilla Ruleset = iota
	RulesetRelax
	RulesetAutopilot
)

const (
	relaxScoreIDCeiling   = 500000000
	autopilotScoreIDFloor = 6148914691236517204
)

func RulesetFromScoreID(scoreID int64) Ruleset {
	if scoreID < relaxScoreIDCeiling {
		return RulesetRelax
	}
	if scoreID >= autopilotScoreIDFloor {
		return RulesetAutopilot
	}
	return RulesetVanilla
}

func (r Ruleset) Label() string {
	switch r {
	case RulesetRelax:
		return "Relax"
	case RulesetAutopilot:
		return "Autopilot"
	default:
		return "Vanilla"
	}
}

// TitleColour is the hex colour the thumbnail template uses for the player
// name, one per ruleset (values lifted from the original PSD template).
func (r Ruleset) TitleColour() string {
	switch r {
	case RulesetRelax:
		return "#fcff96"
	case RulesetAutopilot:
		return "#c5ff96"
	default:
		return "#cde7ff"
	}
}

// RelaxFlag is the numeric variant the score API expects in its rx parameter.
func (r Ruleset) RelaxFlag() int {
	return int(r)
}

type GameMode int

const (
	ModeStandard GameMode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

// Name is the short mode slug used in asset URLs and template icons.
func (m GameMode) Name() string {
	switch m {
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "fruits"
	case ModeMania:
		return "mania"
	default:
		return "osu"
	}
}

// Readable is the display form shown in moderation embeds.
func (m GameMode) Readable() string {
	switch m {
	case ModeTaiko:
		return "osu!taiko"
	case ModeCatch:
		return "osu!ctb"
	case ModeMania:
		return "osu!mania"
	default:
		return "osu!std"
	}
}

type User struct {
	ID       int64
	Username string
	Country  string
}

// Beatmap is the score API's view of the map a score was set on.
type Beatmap struct {
	BeatmapMD5   string
	BeatmapID    int64
	BeatmapsetID int64
	SongName     string
	AR           float64
	OD           float64
	MaxCombo     int
}

// Score is the full score record returned by the score data provider.
type Score struct {
	ID        int64
	User      User
	Beatmap   Beatmap
	Total     int64
	MaxCombo  int
	FullCombo bool
	Mods      Mods
	Count300  int
	Count100  int
	Count50   int
	CountMiss int
	CountKatu int
	CountGeki int
	Mode      GameMode
	Accuracy  float64
	PP        float64
	Rank      string
}

// Performance is a computed {pp, stars} pair for a score.
type Performance struct {
	PP    float64
	Stars float64
}

// ScoreUploadArtifact is the finished upload bundle. It is ephemeral; callers
// decide whether to persist it anywhere.
type ScoreUploadArtifact struct {
	Title       string
	Description string
	ImageData   []byte
}
