package entities

import (
	"strings"
)

// BeatmapMeta is the subset of .osu metadata the thumbnail needs. MaxCombo is
// zero unless a difficulty source supplies it; the template substitutes the
// raw score total in that case.
type BeatmapMeta struct {
	Artist   string
	Title    string
	Creator  string
	Version  string
	MaxCombo int
}

// ParseBeatmapMeta scans the key/value metadata lines of a .osu file. The
// first line is the format header and is skipped.
func ParseBeatmapMeta(osuFile []byte) BeatmapMeta {
	var meta BeatmapMeta
	lines := strings.Split(string(osuFile), "\n")
	for _, line := range lines[min(1, len(lines)):] {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "Artist:"):
			meta.Artist = metadataValue(line)
		case strings.HasPrefix(line, "Title:"):
			meta.Title = metadataValue(line)
		case strings.HasPrefix(line, "Creator:"):
			meta.Creator = metadataValue(line)
		case strings.HasPrefix(line, "Version:"):
			meta.Version = metadataValue(line)
		}
	}
	return meta
}

// BackgroundFilename extracts the background image path from the events
// section ("0,0,<path>" lines). The path is map-author data, so it is
// unquoted and normalized before any archive lookup.
func BackgroundFilename(osuFile []byte) string {
	content := strings.TrimPrefix(string(osuFile), "\ufeff")
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "0,0,") {
			continue
		}
		parts := strings.SplitN(line, ",", 4)
		if len(parts) < 3 {
			continue
		}
		return NormalizeArchivePath(strings.Trim(strings.TrimSpace(parts[2]), `"`))
	}
	return ""
}

// NormalizeArchivePath flattens untrusted archive member paths so a crafted
// filename cannot escape the bundle root during matching.
func NormalizeArchivePath(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	for strings.HasPrefix(name, "../") {
		name = strings.TrimPrefix(name, "../")
	}
	return strings.TrimPrefix(name, "/")
}

func metadataValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
