package convert

import (
	"fmt"
	"io"

	"github.com/binaryphile/nsf2wav/internal/engine"
	"github.com/binaryphile/nsf2wav/internal/wav"
)

// ProgressFunc receives the frames still to write and the engine's
// cumulative rendered count after each chunk.
type ProgressFunc func(remaining, rendered uint64)

// Writer renders a plan into a WAV stream.
type Writer struct {
	// Progress is called after every chunk unless the options are quiet.
	Progress ProgressFunc

	// Trailer holds complete RIFF chunks written after the audio data.
	Trailer []byte
}

// Write renders plan with a zero-value Writer.
func Write(eng engine.Renderer, plan RenderPlan, opts Options, sink io.Writer) (uint64, error) {
	return Writer{}.Write(eng, plan, opts, sink)
}

// Write emits the header sized for plan.TotalFrames, then exactly that
// many frames in chunks of at most ChunkFrames. A chunk the engine
// returns short is padded with silence so the data matches the header.
// Write failures wrap ErrIO.
func (w Writer) Write(eng engine.Renderer, plan RenderPlan, opts Options, sink io.Writer) (uint64, error) {
	format := wav.Format{Channels: opts.Channels, SampleRate: uint32(opts.SampleRate)}
	stream := wav.NewStream(sink, format, plan.TotalFrames, w.Trailer)

	if err := stream.WriteHeader(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	buf := make([]int16, ChunkFrames*opts.Channels)
	for stream.Remaining() > 0 {
		fc := int(min(stream.Remaining(), ChunkFrames))
		samples := buf[:fc*opts.Channels]

		n, err := eng.Render(samples, fc)
		if err != nil {
			return stream.Written(), fmt.Errorf("render: %w", err)
		}
		n = min(max(n, 0), fc)
		clear(samples[n*opts.Channels:])

		if err := stream.WriteFrames(samples); err != nil {
			return stream.Written(), fmt.Errorf("%w: %w", ErrIO, err)
		}

		if w.Progress != nil && !opts.Quiet {
			w.Progress(stream.Remaining(), eng.TotalRendered())
		}
	}

	if err := stream.Finish(); err != nil {
		return stream.Written(), fmt.Errorf("%w: %w", ErrIO, err)
	}
	return stream.Written(), nil
}
