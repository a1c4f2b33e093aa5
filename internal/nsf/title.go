package nsf

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitleFormat renders the track label, falling back to the
// module title and track number.
const DefaultTitleFormat = "%L"

// TitleString expands a title template for song index song, shown as
// track number (1-based):
//
//	%T module title     %A artist      %C copyright   %R ripper
//	%L track label      %n track number (1-based)     %e song count
//	%% literal percent
//
// %L is the playlist title in playlist mode, else the NSFe label, else
// "<title> <nnn>".
func (m *Module) TitleString(format string, song, number int) string {
	var b strings.Builder

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'T':
			b.WriteString(m.Title)
		case 'A':
			b.WriteString(m.Artist)
		case 'C':
			b.WriteString(m.Copyright)
		case 'R':
			b.WriteString(m.Ripper)
		case 'L':
			b.WriteString(m.label(song, number))
		case 'n':
			b.WriteString(strconv.Itoa(number))
		case 'e':
			b.WriteString(strconv.Itoa(m.TotalSongs))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}

	return b.String()
}

func (m *Module) label(song, number int) string {
	if m.PlaylistMode && m.PlaylistTitle != "" {
		return m.PlaylistTitle
	}
	if l := m.Entry(song).Label; l != "" {
		return l
	}
	if m.Title == "" {
		return fmt.Sprintf("Track %03d", number)
	}
	return fmt.Sprintf("%s %03d", m.Title, number)
}

// Listing is one line of the module's track list.
type Listing struct {
	Num   int // 1-based position in the listing
	Index int // song index in the module's song table
	Label string
}

// Tracks enumerates the module's track list, honouring the NSFe
// playlist ordering when present. In playlist mode the single selected
// song is listed.
func (m *Module) Tracks() []Listing {
	if m.PlaylistMode {
		return []Listing{{
			Num:   m.Song + 1,
			Index: m.Song,
			Label: m.TitleString(DefaultTitleFormat, m.Song, m.Song+1),
		}}
	}

	count := m.TotalSongs
	if len(m.Playlist) > 0 {
		count = len(m.Playlist)
	}

	tracks := make([]Listing, count)
	for i := range tracks {
		index := i
		if len(m.Playlist) > 0 {
			index = m.Playlist[i]
		}
		tracks[i] = Listing{
			Num:   i + 1,
			Index: index,
			Label: m.TitleString(DefaultTitleFormat, index, i+1),
		}
	}
	return tracks
}

// SongIndex maps a 0-based listing position to a song index through the
// playlist ordering. ok is false when position is out of range.
func (m *Module) SongIndex(position int) (index int, ok bool) {
	if len(m.Playlist) > 0 {
		if position < 0 || position >= len(m.Playlist) {
			return 0, false
		}
		return m.Playlist[position], true
	}
	if position < 0 || position >= m.TotalSongs {
		return 0, false
	}
	return position, true
}
