package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/binaryphile/nsf2wav/internal/config"
	"github.com/binaryphile/nsf2wav/internal/convert"
	"github.com/binaryphile/nsf2wav/internal/encode"
	"github.com/binaryphile/nsf2wav/internal/engine"
	"github.com/binaryphile/nsf2wav/internal/nsf"
)

const (
	appName    = "nsf2wav"
	appVersion = "1.0"

	exitUsage = 64 // EX_USAGE
)

const longHelp = `Convert an NSF or NSFe track to WAV.

The file to convert can either be a path to an NSF or NSFe file, or a
NEZ M3U playlist entry such as "game.nsf::NSF,3,Boss,1:30,,5,".

If no output is given, nsf2wav prints the module's metadata and track
list and exits without converting. If the output is an existing
directory, the file name is generated from the metadata.

Defaults come from ~/.config/nsf2wav/config.yaml (or --config) and the
NSF2WAV_ENGINE, NSF2WAV_SAMPLERATE and NSF2WAV_LOG_LEVEL variables;
flags override both.`

// usageError marks failures caused by how the command was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type cliFlags struct {
	configPath string
	engine     string
	logLevel   string

	channels   int
	samplerate float64
	lengthMS   int32
	fadeMS     int32
	track      int

	quiet       bool
	lengthForce bool
	trigger     bool
	tag         bool

	ops convert.MaskOps
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:     appName + " [flags] (file.nsf[e] | m3u-entry) [out.wav | outdir]",
		Short:   "Convert an NSF or NSFe track to WAV",
		Long:    longHelp,
		Version: appVersion,

		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},

		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), f, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.IntVarP(&f.channels, "channels", "c", defaults.Channels, "The number of audio channels to output")
	fs.Int32VarP(&f.fadeMS, "fade_ms", "f", defaults.FadeMS, "Fade-out length in milliseconds")
	fs.Int32VarP(&f.lengthMS, "length_ms", "l", defaults.LengthMS, "Length in milliseconds to output before the fade")
	fs.BoolVarP(&f.lengthForce, "length_force", "y", false, "Output the full length even if the track loops or ends earlier")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Suppress all non-error output")
	fs.Float64VarP(&f.samplerate, "samplerate", "s", defaults.SampleRate, "The audio sample rate")
	fs.IntVarP(&f.track, "track", "t", 1, "Track number, starting with 1")
	addMaskFlags(fs, &f.ops)
	fs.BoolVarP(&f.trigger, "trigger", "w", false, "Output trigger waves instead of normal output")

	fs.StringVar(&f.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	fs.StringVar(&f.engine, "engine", defaults.Engine, "Render engine command and arguments")
	fs.BoolVar(&f.tag, "tag", false, "Append an ID3 chunk with the module metadata")
	fs.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")

	return cmd
}

func run(fs *pflag.FlagSet, f *cliFlags, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	f.override(fs, &cfg)

	if errs := cfg.Validate(); len(errs) > 0 {
		return usageError{errors.Join(errs...)}
	}
	if high := maxSlot(f.ops); high >= cfg.ChannelWidth {
		return usageError{fmt.Errorf("channel slot %d outside the %d configured slots", high, cfg.ChannelWidth)}
	}

	logger := newLogger(stderr, cfg.LogLevel, f.quiet)

	m, err := convert.Load(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if !f.quiet {
			printInfo(stdout, m)
		}
		return nil
	}

	opts := f.options(cfg)
	if err := opts.Validate(); err != nil {
		return usageError{err}
	}

	// Settle the track before starting the engine.
	td, err := convert.Resolve(m, opts)
	if err != nil {
		return err
	}
	if err := convert.CheckSize(td, opts, 0); err != nil {
		return err
	}
	outPath := outputPath(m, td, args[1])

	host, err := engine.StartHost(cfg.Engine, cfg.EngineArgs...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := host.Close(); cerr != nil {
			logger.Debug().Err(cerr).Msg("engine shutdown")
		}
	}()

	c := &convert.Converter{Engine: host, Logger: logger, Out: stdout}
	if !opts.Quiet {
		c.Progress = newProgress(stderr, isTerminal(stderr))
	}

	res, err := c.Run(m, opts, outPath)
	if err != nil {
		return err
	}

	logger.Info().
		Str("path", res.Path).
		Uint64("frames", res.Frames).
		Int64("bytes", res.Written).
		Msg("wrote")
	return nil
}

// override copies the flags the user actually gave over cfg.
func (f *cliFlags) override(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("engine") {
		if fields := strings.Fields(f.engine); len(fields) > 0 {
			cfg.Engine = fields[0]
			cfg.EngineArgs = fields[1:]
		}
	}
	if fs.Changed("channels") {
		cfg.Channels = f.channels
	}
	if fs.Changed("samplerate") {
		cfg.SampleRate = f.samplerate
	}
	if fs.Changed("length_ms") {
		cfg.LengthMS = f.lengthMS
	}
	if fs.Changed("fade_ms") {
		cfg.FadeMS = f.fadeMS
	}
	if fs.Changed("tag") {
		cfg.Tag = f.tag
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func (f *cliFlags) options(cfg config.Config) convert.Options {
	mask, mute, reverse := f.ops.Fold(cfg.ChannelWidth)

	return convert.Options{
		Channels:    cfg.Channels,
		SampleRate:  cfg.SampleRate,
		LengthMS:    cfg.LengthMS,
		FadeMS:      cfg.FadeMS,
		Track:       f.track,
		Quiet:       f.quiet,
		Mask:        mask,
		Mute:        mute,
		MaskReverse: reverse,
		Trigger:     f.trigger,
		ForceLength: f.lengthForce,
		Tag:         cfg.Tag,
	}
}

// newLogger writes human-readable log lines to w. Quiet keeps warnings
// and errors only.
func newLogger(w io.Writer, level string, quiet bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if quiet && lvl < zerolog.WarnLevel {
		lvl = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      !isTerminal(w),
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(out).Level(lvl)
}

// outputPath returns arg, or a generated file name inside arg when it is
// an existing directory.
func outputPath(m *nsf.Module, td convert.TrackDescriptor, arg string) string {
	info, err := os.Stat(arg)
	if err != nil || !info.IsDir() {
		return arg
	}
	return filepath.Join(arg, encode.GenerateFilename(m.Artist, m.Title, td.Number, td.Title))
}

// printInfo lists the module metadata and its tracks in playlist order.
func printInfo(w io.Writer, m *nsf.Module) {
	fmt.Fprintf(w, "Title: %s\n", m.Title)
	fmt.Fprintf(w, "Artist: %s\n", m.Artist)
	fmt.Fprintf(w, "Copyright: %s\n", m.Copyright)
	fmt.Fprintf(w, "Ripper: %s\n", m.Ripper)

	for _, t := range m.Tracks() {
		fmt.Fprintf(w, "Track %03d: %s\n", t.Num, t.Label)
	}
}
