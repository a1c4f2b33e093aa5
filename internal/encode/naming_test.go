package encode

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestGenerateFilename_Basic(t *testing.T) {
	got := GenerateFilename("Koji Kondo", "Super Mario Bros.", 1, "Overworld")
	want := "Koji_Kondo-Super_Mario_Bros.-01-Overworld.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_UnknownFields(t *testing.T) {
	// NSF headers use "<?>" for missing metadata
	got := GenerateFilename("<?>", "Mega Man 2", 3, "<?>")
	want := "Mega_Man_2-03.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_NothingKnown(t *testing.T) {
	got := GenerateFilename("", "<?>", 7, "")
	want := "track07.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_SlashReplaced(t *testing.T) {
	got := GenerateFilename("Hip Tanaka", "Metroid", 2, "Brinstar/Norfair")
	want := "Hip_Tanaka-Metroid-02-Brinstar_Norfair.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_RemovesQuotes(t *testing.T) {
	got := GenerateFilename("Artist", `Kid Icarus "Angel's Quest"`, 1, "Song")
	want := "Artist-Kid_Icarus_Angels_Quest-01-Song.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_CollapsesUnderscores(t *testing.T) {
	got := GenerateFilename("A & B", "C (D) [E]", 1, "F / G: H")
	want := "A_B-C_D_E-01-F_G_H.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_NonASCII(t *testing.T) {
	got := GenerateFilename("Tone-Lōc", "Café", 1, "ドラゴン Theme")
	want := "Tone-Loc-Cafe-01-Theme.wav"

	if got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestGenerateFilename_TrackPadding(t *testing.T) {
	tests := []struct {
		track int
		want  string
	}{
		{9, "A-B-09-C.wav"},
		{12, "A-B-12-C.wav"},
		{128, "A-B-128-C.wav"},
	}
	for _, tt := range tests {
		if got := GenerateFilename("A", "B", tt.track, "C"); got != tt.want {
			t.Errorf("GenerateFilename(track %d) = %q, want %q", tt.track, got, tt.want)
		}
	}
}

func TestGenerateFilename_ShellSafe_Integration(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	testCases := []struct {
		artist string
		game   string
		title  string
	}{
		{"AC/DC", "Back in Black", "Hells Bells"},
		{"Tim Follin", "Solstice", "Won't Stop"},
		{"Test$Artist", "Game!", "Song?"},
		{"Artist", "Game [Beta]", "Track (Alt)"},
		{"Artist", "Game", "Part 1; Part 2 | 3 & 4"},
		{"Artist", "Game ~ Remix #2", "Song"},
	}

	tmpDir := t.TempDir()

	for _, tc := range testCases {
		filename := GenerateFilename(tc.artist, tc.game, 1, tc.title)
		fullPath := filepath.Join(tmpDir, filename)

		if err := os.WriteFile(fullPath, []byte("test"), 0644); err != nil {
			t.Errorf("Failed to create file %q: %v", filename, err)
			continue
		}

		cmd := exec.Command("bash", "-c", "cat "+filename)
		cmd.Dir = tmpDir
		output, err := cmd.Output()
		if err != nil {
			t.Errorf("Filename %q requires shell quoting: %v", filename, err)
			continue
		}
		if string(output) != "test" {
			t.Errorf("Filename %q: unexpected output %q", filename, output)
		}
	}
}

func BenchmarkSanitize(b *testing.B) {
	inputs := []string{
		"Simple Artist",
		"AC/DC",
		"The Who's Greatest Hits",
		"Test$Artist & Friends (Live) [Deluxe Edition]",
		"ロックマン2 Dr.ワイリーの謎",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, input := range inputs {
			_ = GenerateFilename(input, "Game", 1, "Title")
		}
	}
}
