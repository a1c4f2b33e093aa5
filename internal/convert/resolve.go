package convert

import (
	"fmt"

	"github.com/binaryphile/nsf2wav/internal/nsf"
)

// Source records where a resolved time came from.
type Source int

const (
	SourceEntry   Source = iota // per-track NSFe metadata
	SourceModule                // module-wide time, e.g. from a playlist entry
	SourceDefault               // caller-supplied or built-in default
)

func (s Source) String() string {
	switch s {
	case SourceEntry:
		return "entry"
	case SourceModule:
		return "module"
	default:
		return "default"
	}
}

// TrackDescriptor is the resolved track and its timing.
type TrackDescriptor struct {
	Index    int // song-table index passed to the engine
	Position int // 0-based listing position, Index before playlist mapping
	Number   int // 1-based display number
	Title    string

	LengthMS     int32
	FadeMS       int32
	LengthSource Source
	FadeSource   Source

	// Warnings lists non-fatal fallbacks taken during resolution.
	Warnings []string
}

// Resolve picks the track to render and its play and fade times.
//
// Times are taken from the track's own metadata first (outside playlist
// mode), then the module-wide values, then opts. Falling back to opts
// produces a warning, except for the length when ForceLength is set.
func Resolve(m *nsf.Module, opts Options) (TrackDescriptor, error) {
	var td TrackDescriptor

	if m.PlaylistMode {
		td.Position = m.Song
		td.Index = m.Song
		if td.Index < 0 || td.Index >= m.TotalSongs {
			return TrackDescriptor{}, fmt.Errorf("%w: playlist song %d of %d", ErrInvalidTrack, td.Index+1, m.TotalSongs)
		}
	} else {
		if opts.Track < 1 {
			return TrackDescriptor{}, fmt.Errorf("%w: use 1-based track number, got %d", ErrInvalidTrack, opts.Track)
		}
		td.Position = opts.Track - 1

		index, ok := m.SongIndex(td.Position)
		if !ok {
			return TrackDescriptor{}, fmt.Errorf("%w: track %d out of range", ErrInvalidTrack, opts.Track)
		}
		td.Index = index
	}
	td.Number = td.Position + 1

	var entry nsf.Entry
	if !m.PlaylistMode {
		entry = m.Entry(td.Index)
	} else {
		entry = nsf.Entry{TimeMS: nsf.Unknown, FadeMS: nsf.Unknown}
	}

	switch {
	case entry.TimeMS >= 0:
		td.LengthMS, td.LengthSource = entry.TimeMS, SourceEntry
	case m.TimeMS >= 0:
		td.LengthMS, td.LengthSource = m.TimeMS, SourceModule
	default:
		td.LengthMS, td.LengthSource = opts.LengthMS, SourceDefault
		if !opts.ForceLength {
			td.Warnings = append(td.Warnings,
				fmt.Sprintf("could not detect track length, will use default of %d ms", opts.LengthMS))
		}
	}

	switch {
	case entry.FadeMS >= 0:
		td.FadeMS, td.FadeSource = entry.FadeMS, SourceEntry
	case m.FadeMS >= 0:
		td.FadeMS, td.FadeSource = m.FadeMS, SourceModule
	default:
		td.FadeMS, td.FadeSource = opts.FadeMS, SourceDefault
		td.Warnings = append(td.Warnings,
			fmt.Sprintf("could not detect fade time, will use default of %d ms", opts.FadeMS))
	}

	if entry.Label != "" {
		td.Title = entry.Label
	} else {
		td.Title = m.TitleString(nsf.DefaultTitleFormat, td.Index, td.Number)
	}

	return td, nil
}
