// Package engine defines the contract between the conversion pipeline
// and an NSF render engine, plus a Host that drives an out-of-process
// renderer over pipes.
//
// Every call is blocking. Configuration is only ever changed through
// Apply, which pushes the complete Settings and resets playback.
package engine

import "github.com/binaryphile/nsf2wav/internal/nsf"

// Renderer produces interleaved native 16-bit PCM frames.
type Renderer interface {
	// Render fills buf with up to frames frames and returns how many
	// were produced. Fewer frames means the stream ended.
	Render(buf []int16, frames int) (int, error)
	// TotalRendered is the cumulative count of frames rendered or
	// skipped since the last reset.
	TotalRendered() uint64
}

// Engine is the full render engine surface the pipeline drives.
type Engine interface {
	Renderer

	Load(m *nsf.Module) error
	SetPlayFreq(rate float64) error
	SetChannels(n int) error
	SetSong(index int) error

	// Apply pushes s and resets the engine so it takes effect from the
	// start of playback.
	Apply(s Settings) error

	// Skip advances playback without producing output.
	Skip(frames int) error

	IsFading() bool
	PlaytimeDetected() bool
}
