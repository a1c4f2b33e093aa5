package convert

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/binaryphile/nsf2wav/internal/encode"
	"github.com/binaryphile/nsf2wav/internal/engine"
	"github.com/binaryphile/nsf2wav/internal/nsf"
	"github.com/binaryphile/nsf2wav/internal/wav"
)

// Load reads a module file or playlist entry, wrapping failures in
// ErrLoad.
func Load(arg string) (*nsf.Module, error) {
	m, err := nsf.Load(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, arg, err)
	}
	return m, nil
}

// Converter runs one conversion at a time against its engine.
type Converter struct {
	Engine engine.Engine
	Logger zerolog.Logger

	// Out receives the per-track summary; nil or quiet options print
	// nothing.
	Out io.Writer

	Progress ProgressFunc
}

// Result describes a finished conversion.
type Result struct {
	Path    string
	Track   TrackDescriptor
	Plan    RenderPlan
	Config  ChannelConfig
	Frames  uint64
	Tagged  bool
	Written int64 // bytes on disk
}

// Run converts the selected track of m into a WAV file at outPath.
//
// Everything that can fail before rendering (options, track, output
// size, engine load) is checked before the output file is created.
// Detection only shortens a track, so the size check uses the nominal
// length and runs before the engine is touched. If the header
// never reaches the file, the file is removed.
func (c *Converter) Run(m *nsf.Module, opts Options, outPath string) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid options: %w", err)
	}

	td, err := Resolve(m, opts)
	if err != nil {
		return Result{}, err
	}
	for _, w := range td.Warnings {
		c.Logger.Warn().Int("track", td.Number).Msg(w)
	}
	c.printTrack(td, opts)

	var trailer []byte
	if opts.Tag {
		trailer, err = encode.BuildTags(trackMeta(m, td)).Chunk()
		if err != nil {
			return Result{}, fmt.Errorf("build tag: %w", err)
		}
	}

	if err := CheckSize(td, opts, len(trailer)); err != nil {
		return Result{}, err
	}

	if err := c.Engine.Load(m); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEngineLoad, err)
	}
	if err := c.configure(td, opts); err != nil {
		return Result{}, err
	}

	pre := engine.Settings{Audio: engine.DefaultAudio(), Detect: DetectionSettings(td, opts)}
	if err := c.Engine.Apply(pre); err != nil {
		return Result{}, fmt.Errorf("apply detection settings: %w", err)
	}

	plan, err := Detect(c.Engine, td, opts)
	if err != nil {
		return Result{}, fmt.Errorf("detect: %w", err)
	}
	c.logPlan(plan)

	cfg := Compile(opts)
	if !opts.Mask.Empty() || opts.MaskReverse {
		c.Logger.Debug().Uint64("mask", cfg.Mask).Bool("reverse", opts.MaskReverse).Msg("channel mask")
	}
	for _, slot := range cfg.Muted() {
		c.Logger.Debug().Int("slot", slot).Str("channel", nsf.ChannelName(slot)).Msg("channel muted")
	}
	if err := c.Engine.Apply(cfg.Settings(plan.DetectSettings())); err != nil {
		return Result{}, fmt.Errorf("apply render settings: %w", err)
	}

	res := Result{Path: outPath, Track: td, Plan: plan, Config: cfg, Tagged: trailer != nil}

	f, err := os.Create(outPath)
	if err != nil {
		return res, fmt.Errorf("%w: open %s: %w", ErrIO, outPath, err)
	}

	cw := &countingWriter{w: f}
	bw := bufio.NewWriterSize(cw, 64*1024)

	w := Writer{Progress: c.Progress, Trailer: trailer}
	res.Frames, err = w.Write(c.Engine, plan, opts, bw)
	if err == nil {
		if ferr := bw.Flush(); ferr != nil {
			err = fmt.Errorf("%w: flush %s: %w", ErrIO, outPath, ferr)
		}
	}
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("%w: close %s: %w", ErrIO, outPath, cerr)
	}
	res.Written = cw.n

	if err != nil {
		if cw.n < wav.HeaderSize {
			os.Remove(outPath)
		}
		return res, err
	}

	c.Logger.Debug().
		Str("path", outPath).
		Uint64("frames", res.Frames).
		Int64("bytes", res.Written).
		Msg("wav written")

	return res, nil
}

// CheckSize rejects a track whose nominal length, plus trailerLen bytes
// of trailing chunks, can't fit a WAV file.
func CheckSize(td TrackDescriptor, opts Options, trailerLen int) error {
	format := wav.Format{Channels: opts.Channels, SampleRate: uint32(opts.SampleRate)}
	nominal := NominalFrames(td.LengthMS, td.FadeMS, opts.SampleRate)
	if err := format.CheckSize(nominal, trailerLen); err != nil {
		return fmt.Errorf("%w: track %d: %w", ErrTooLong, td.Number, err)
	}
	return nil
}

func (c *Converter) configure(td TrackDescriptor, opts Options) error {
	if err := c.Engine.SetPlayFreq(opts.SampleRate); err != nil {
		return fmt.Errorf("set play frequency: %w", err)
	}
	if err := c.Engine.SetChannels(opts.Channels); err != nil {
		return fmt.Errorf("set channels: %w", err)
	}
	if err := c.Engine.SetSong(td.Index); err != nil {
		return fmt.Errorf("set song: %w", err)
	}
	return nil
}

func (c *Converter) printTrack(td TrackDescriptor, opts Options) {
	if c.Out == nil || opts.Quiet {
		return
	}
	fmt.Fprintf(c.Out, "Track %03d: %s\n", td.Number, td.Title)
	fmt.Fprintf(c.Out, "  length: %d ms\n", td.LengthMS)
	fmt.Fprintf(c.Out, "    fade: %d ms\n", td.FadeMS)
}

func (c *Converter) logPlan(plan RenderPlan) {
	switch plan.Outcome {
	case DetectionFound:
		c.Logger.Info().
			Uint64("frames", plan.TotalFrames).
			Uint64("nominal", plan.NominalFrames).
			Msg("detected loop time")
	case DetectionNotFound:
		c.Logger.Debug().
			Uint64("frames", plan.TotalFrames).
			Msg("no loop detected, using nominal length")
	}
	c.Logger.Debug().
		Str("outcome", plan.Outcome.String()).
		Int("stop_sec", plan.StopSeconds).
		Bool("trigger", plan.Trigger).
		Msg("render plan")
}

func trackMeta(m *nsf.Module, td TrackDescriptor) encode.TrackMeta {
	total := m.TotalSongs
	if len(m.Playlist) > 0 {
		total = len(m.Playlist)
	}
	return encode.TrackMeta{
		Artist:     m.Artist,
		Game:       m.Title,
		Title:      td.Title,
		Copyright:  m.Copyright,
		Ripper:     m.Ripper,
		TrackNum:   td.Number,
		TrackTotal: total,
	}
}

// countingWriter tracks how many bytes reached the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
