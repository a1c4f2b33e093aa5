package convert

import (
	"errors"

	"github.com/binaryphile/nsf2wav/internal/engine"
	"github.com/binaryphile/nsf2wav/internal/nsf"
)

var _ engine.Engine = (*fakeEngine)(nil)

// fakeEngine records calls and simulates a renderer whose fader starts
// at fadeAt frames.
type fakeEngine struct {
	channels int
	total    uint64

	fadeAt     uint64 // 0 = never fades
	noDetect   bool   // fade without reporting a detected play time
	shortAfter int    // cap on frames returned per Render; 0 = none
	fill       int16

	loadErr   error
	renderErr error

	calls   []string
	skips   []int
	applied []engine.Settings
	song    int
}

func (f *fakeEngine) Load(m *nsf.Module) error {
	f.calls = append(f.calls, "load")
	return f.loadErr
}

func (f *fakeEngine) SetPlayFreq(rate float64) error {
	f.calls = append(f.calls, "play_freq")
	return nil
}

func (f *fakeEngine) SetChannels(n int) error {
	f.calls = append(f.calls, "channels")
	if n < 1 {
		return errors.New("bad channel count")
	}
	f.channels = n
	return nil
}

func (f *fakeEngine) SetSong(index int) error {
	f.calls = append(f.calls, "song")
	f.song = index
	return nil
}

func (f *fakeEngine) Apply(s engine.Settings) error {
	f.calls = append(f.calls, "apply")
	f.applied = append(f.applied, s)
	f.total = 0
	return nil
}

func (f *fakeEngine) Skip(frames int) error {
	f.calls = append(f.calls, "skip")
	f.skips = append(f.skips, frames)
	f.total += uint64(frames)
	return nil
}

func (f *fakeEngine) Render(buf []int16, frames int) (int, error) {
	if f.renderErr != nil {
		return 0, f.renderErr
	}
	n := frames
	if f.shortAfter > 0 && n > f.shortAfter {
		n = f.shortAfter
	}
	ch := max(f.channels, 1)
	for i := 0; i < n*ch; i++ {
		buf[i] = f.fill
	}
	f.total += uint64(n)
	return n, nil
}

func (f *fakeEngine) TotalRendered() uint64 { return f.total }

func (f *fakeEngine) IsFading() bool {
	return f.fadeAt > 0 && f.total >= f.fadeAt
}

func (f *fakeEngine) PlaytimeDetected() bool {
	return !f.noDetect && f.IsFading()
}

// testModule returns a plain NSF module with no timing metadata.
func testModule(songs int) *nsf.Module {
	return &nsf.Module{
		Format:     nsf.FormatNSF,
		Title:      "Test Game",
		Artist:     "Composer",
		Copyright:  "1987 Somebody",
		TotalSongs: songs,
		StartSong:  1,
		TimeMS:     nsf.Unknown,
		FadeMS:     nsf.Unknown,
		LoopMS:     nsf.Unknown,
		LoopNum:    -1,
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Channels = 2
	opts.SampleRate = 44100
	opts.Quiet = true
	return opts
}
