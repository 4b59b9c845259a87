package errors

import "errors"

var (
	ErrScoreNotFound       = errors.New("score not found")
	ErrBeatmapNotFound     = errors.New("beatmap not found")
	ErrBackgroundNotFound  = errors.New("beatmap background not found")
	ErrPerformanceNotFound = errors.New("performance data not found")
	ErrObjectNotFound      = errors.New("object not found")
	ErrRenderFailed        = errors.New("render failed")
	ErrTemplateInvalid     = errors.New("template values invalid")
)
