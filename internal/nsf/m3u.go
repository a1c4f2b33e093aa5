package nsf

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// PlaylistEntry is one parsed NEZ M3U line:
//
//	file.nsf::NSF,track,title,time,loop,fade,loopcount
//
// Times are Unknown and LoopCount is -1 when the field is empty.
type PlaylistEntry struct {
	Path      string
	Type      string
	Track     int // 1-based
	Title     string
	TimeMS    int32
	LoopMS    int32
	FadeMS    int32
	LoopCount int
}

// ParsePlaylistEntry parses a NEZ M3U playlist line.
// This is a pure function: line → PlaylistEntry.
func ParsePlaylistEntry(line string) (PlaylistEntry, error) {
	path, rest, ok := strings.Cut(strings.TrimSpace(line), "::")
	if !ok || path == "" {
		return PlaylistEntry{}, fmt.Errorf("invalid playlist entry: %q", line)
	}

	fields := splitEscaped(rest)
	for len(fields) < 7 {
		fields = append(fields, "")
	}

	entry := PlaylistEntry{
		Path:      path,
		Type:      strings.ToUpper(strings.TrimSpace(fields[0])),
		Title:     fields[2],
		LoopCount: -1,
	}
	if entry.Type != "NSF" && entry.Type != "NSFE" {
		return PlaylistEntry{}, fmt.Errorf("unsupported playlist entry type %q", fields[0])
	}

	track, err := parseTrackNumber(fields[1])
	if err != nil {
		return PlaylistEntry{}, err
	}
	entry.Track = track

	if entry.TimeMS, err = ParseTime(fields[3]); err != nil {
		return PlaylistEntry{}, fmt.Errorf("playlist time: %w", err)
	}
	// A trailing '-' marks the loop as relative to the end; only the
	// length matters here.
	if entry.LoopMS, err = ParseTime(strings.TrimSuffix(strings.TrimSpace(fields[4]), "-")); err != nil {
		return PlaylistEntry{}, fmt.Errorf("playlist loop: %w", err)
	}
	if entry.FadeMS, err = ParseTime(fields[5]); err != nil {
		return PlaylistEntry{}, fmt.Errorf("playlist fade: %w", err)
	}
	if s := strings.TrimSpace(fields[6]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return PlaylistEntry{}, fmt.Errorf("playlist loop count: %w", err)
		}
		entry.LoopCount = n
	}

	return entry, nil
}

// ParseTime parses "h:m:s", "m:s" or "s" (seconds may carry a fraction)
// into milliseconds. An empty string is Unknown.
func ParseTime(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	var ms float64
	for i, p := range parts {
		if i < len(parts)-1 {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid time %q", s)
			}
			ms = ms*60 + float64(n)
			continue
		}
		sec, err := strconv.ParseFloat(p, 64)
		if err != nil || sec < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		ms = ms*60 + sec
	}

	ms = math.Floor(ms*1000 + 0.5)
	if ms > math.MaxInt32 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return int32(ms), nil
}

func parseTrackNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	var (
		n   int64
		err error
	)
	if hex, ok := strings.CutPrefix(s, "$"); ok {
		n, err = strconv.ParseInt(hex, 16, 32)
	} else {
		n, err = strconv.ParseInt(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid playlist track %q", s)
	}
	return int(n), nil
}

// splitEscaped splits on commas, honouring backslash escapes.
func splitEscaped(s string) []string {
	var (
		out     []string
		b       strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(out, b.String())
}

// loadPlaylistEntry loads the module named by an M3U line and puts it in
// playlist mode with the entry's song and timing.
func loadPlaylistEntry(line string) (*Module, error) {
	entry, err := ParsePlaylistEntry(line)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	m, err := LoadData(data)
	if err != nil {
		return nil, err
	}

	m.Path = entry.Path
	m.ApplyPlaylistEntry(entry)
	return m, nil
}

// ApplyPlaylistEntry switches the module into playlist mode.
func (m *Module) ApplyPlaylistEntry(entry PlaylistEntry) {
	m.PlaylistMode = true
	m.Song = entry.Track - 1
	if m.Song < 0 {
		m.Song = 0
	}
	m.PlaylistTitle = entry.Title
	m.TimeMS = entry.TimeMS
	m.FadeMS = entry.FadeMS
	m.LoopMS = entry.LoopMS
	m.LoopNum = entry.LoopCount
}
