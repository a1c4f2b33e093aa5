// Package nsf loads NES Sound Format modules (NSF, NSFe and NEZ M3U
// playlist entries) into a Module that the conversion pipeline reads
// metadata and per-track timing hints from.
package nsf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Defaults used when neither the module nor the caller states a time.
const (
	DefaultPlayTimeMS = 180000
	DefaultFadeTimeMS = 8000
	DefaultRate       = 48000
)

// Unknown marks a time or fade the module did not declare.
const Unknown int32 = -1

// Format identifies the container a module was loaded from
type Format int

const (
	FormatNSF Format = iota
	FormatNSFe
)

func (f Format) String() string {
	if f == FormatNSFe {
		return "NSFe"
	}
	return "NSF"
}

// Entry holds the per-song metadata an NSFe file may carry.
// TimeMS and FadeMS are Unknown when not declared.
type Entry struct {
	Label  string
	TimeMS int32
	FadeMS int32
}

// Module is a loaded chiptune program plus its metadata.
type Module struct {
	Path   string
	Format Format

	Version    byte
	TotalSongs int
	StartSong  int // 1-based, as stored in the header

	LoadAddr uint16
	InitAddr uint16
	PlayAddr uint16

	Title     string
	Artist    string
	Copyright string
	Ripper    string
	Text      string

	SpeedNTSC uint16
	SpeedPAL  uint16
	Banks     [8]byte
	Region    byte
	Chips     byte

	// Raw is the complete file image handed to the render engine.
	Raw  []byte
	Data []byte

	// Playlist is the NSFe plst ordering; nil when the module has none.
	Playlist []int
	Entries  []Entry

	// Playlist mode: the module was selected through a playlist entry
	// which dictates the song and the module-wide timing.
	PlaylistMode  bool
	Song          int // 0-based song index in playlist mode
	PlaylistTitle string

	TimeMS  int32
	FadeMS  int32
	LoopMS  int32
	LoopNum int
}

func newModule() *Module {
	return &Module{
		TimeMS:  Unknown,
		FadeMS:  Unknown,
		LoopMS:  Unknown,
		LoopNum: -1,
	}
}

// Load reads a module from a file path or a NEZ M3U playlist entry
// ("file.nsf::NSF,track,title,time,loop,fade,loopcount").
func Load(arg string) (*Module, error) {
	if strings.Contains(arg, "::") {
		return loadPlaylistEntry(arg)
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	m, err := LoadData(data)
	if err != nil {
		return nil, err
	}
	m.Path = arg
	return m, nil
}

// LoadData parses an NSF or NSFe image, picking the format by magic.
func LoadData(data []byte) (*Module, error) {
	switch {
	case len(data) >= 5 && string(data[:5]) == nsfMagic:
		return ParseNSF(data)
	case len(data) >= 4 && string(data[:4]) == nsfeMagic:
		return ParseNSFe(data)
	case len(data) < 4:
		return nil, errors.New("module data too short")
	default:
		return nil, fmt.Errorf("invalid module magic: %q", data[:4])
	}
}

// Entry returns the metadata for song index i. Songs without NSFe
// metadata report Unknown times and an empty label.
func (m *Module) Entry(i int) Entry {
	if i >= 0 && i < len(m.Entries) {
		return m.Entries[i]
	}
	return Entry{TimeMS: Unknown, FadeMS: Unknown}
}

func (m *Module) initEntries() {
	m.Entries = make([]Entry, m.TotalSongs)
	for i := range m.Entries {
		m.Entries[i] = Entry{TimeMS: Unknown, FadeMS: Unknown}
	}
}

// decodeString converts a NUL-terminated metadata field to UTF-8.
// Older rips often carry Shift_JIS or Latin-1 text.
func decodeString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	if utf8.Valid(b) {
		return strings.TrimRight(string(b), " ")
	}
	if s, err := japanese.ShiftJIS.NewDecoder().Bytes(b); err == nil && utf8.Valid(s) {
		return strings.TrimRight(string(s), " ")
	}
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return strings.TrimRight(string(s), " ")
}
