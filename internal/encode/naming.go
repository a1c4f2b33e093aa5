// Package encode derives output file names and the ID3 tag chunk from
// module metadata.
package encode

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unknownField is the placeholder NSF rippers use for missing metadata.
const unknownField = "<?>"

// GenerateFilename creates a WAV file name from module metadata.
// This is a pure function: (artist, game, track, title) → filename
//
// Format: Artist-Game-NN-Title.wav
// Empty or "<?>" components are left out; a name with nothing left is
// "trackNN.wav".
//
// Character handling:
// - Non-ASCII → ASCII equivalents (ō→o, é→e), Japanese text dropped
// - Spaces, path separators, shell metacharacters → underscores
// - Quotes (' " `) → removed
// - Runs of underscores collapsed, leading/trailing trimmed
func GenerateFilename(artist, game string, track int, title string) string {
	num := fmt.Sprintf("%02d", track)

	var parts []string
	for _, s := range []string{artist, game} {
		if s = sanitize(known(s)); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, num)
	if s := sanitize(known(title)); s != "" {
		parts = append(parts, s)
	}

	if len(parts) == 1 {
		return "track" + num + ".wav"
	}
	return strings.Join(parts, "-") + ".wav"
}

func known(s string) string {
	if strings.TrimSpace(s) == unknownField {
		return ""
	}
	return s
}

// sanitize prepares a string for use in a filename.
func sanitize(s string) string {
	s = normalizeToASCII(s)

	var b strings.Builder
	b.Grow(len(s))

	lastWasUnderscore := false
	for _, r := range s {
		switch {
		case r == '\'' || r == '"' || r == '`':
			// dropped

		case unicode.IsSpace(r) || strings.ContainsRune(`/\$!*?[](){}<>|&;:#~`, r):
			if !lastWasUnderscore {
				b.WriteByte('_')
				lastWasUnderscore = true
			}

		case unicode.IsControl(r):
			// dropped

		default:
			b.WriteRune(r)
			lastWasUnderscore = r == '_'
		}
	}

	return strings.Trim(b.String(), "_")
}

// normalizeToASCII decomposes characters with NFKD, drops the combining
// marks and strips whatever is still outside ASCII.
func normalizeToASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, _ := transform.String(t, s)

	var b strings.Builder
	for _, r := range result {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
