package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	PostgresDSN string

	// TiePolicy decides a fully-voted request with equal counts: "tied" or
	// "denied".
	TiePolicy string
	// VoterIDs seeds the static roster when no live membership source is
	// wired.
	VoterIDs []int64

	ScoreAPIBaseURL    string
	OsuFileBaseURL     string
	DirectMediaBaseURL string
	MirrorBaseURLs     []string
	PerformanceBaseURL string
	ServerBaseURL      string

	HTTPTimeout      time.Duration
	RenderTimeout    time.Duration
	SynthesisTimeout time.Duration
	PollInterval     time.Duration

	S3Bucket string
	// Write-back policies default off: cached assets could be staler than
	// what upstream systems later publish.
	WriteBackAssets     bool
	WriteBackThumbnails bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "scorewatch"
	}

	tiePolicy := strings.TrimSpace(strings.ToLower(os.Getenv("TIE_POLICY")))
	if tiePolicy != "denied" {
		tiePolicy = "tied"
	}

	mirrors := envList("BEATMAP_MIRROR_URLS")
	if len(mirrors) == 0 {
		mirrors = []string{"https://api.osu.direct", "https://catboy.best"}
	}

	return Config{
		ServiceName: service,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		TiePolicy: tiePolicy,
		VoterIDs:  envInt64List("ELIGIBLE_VOTER_IDS"),

		ScoreAPIBaseURL:    envDefault("SCORE_API_BASE_URL", "https://akatsuki.gg"),
		OsuFileBaseURL:     envDefault("OSU_FILE_BASE_URL", "https://old.ppy.sh"),
		DirectMediaBaseURL: envDefault("DIRECT_MEDIA_BASE_URL", "https://api.osu.direct"),
		MirrorBaseURLs:     mirrors,
		PerformanceBaseURL: envDefault("PERFORMANCE_BASE_URL", "https://performance.akatsuki.gg"),
		ServerBaseURL:      envDefault("SERVER_BASE_URL", "https://akatsuki.gg"),

		HTTPTimeout:      envDuration("HTTP_TIMEOUT", 15*time.Second),
		RenderTimeout:    envDuration("RENDER_TIMEOUT", 30*time.Second),
		SynthesisTimeout: envDuration("SYNTHESIS_TIMEOUT", 2*time.Minute),
		PollInterval:     envDuration("POLL_INTERVAL", 2*time.Second),

		S3Bucket:            os.Getenv("AWS_S3_BUCKET_NAME"),
		WriteBackAssets:     envBool("WRITE_BACK_ASSETS", false),
		WriteBackThumbnails: envBool("WRITE_BACK_THUMBNAILS", false),
	}, nil
}

func envDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envList(name string) []string {
	var items []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func envInt64List(name string) []int64 {
	var items []int64
	for _, value := range envList(name) {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		items = append(items, parsed)
	}
	return items
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
