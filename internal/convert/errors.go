package convert

import "errors"

// Fatal conditions. Callers wrap them with context and test with
// errors.Is.
var (
	ErrLoad         = errors.New("load failed")
	ErrEngineLoad   = errors.New("engine rejected module")
	ErrInvalidTrack = errors.New("invalid track")
	ErrIO           = errors.New("output failed")
	ErrTooLong      = errors.New("track too long for WAV")
)
