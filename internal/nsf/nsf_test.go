package nsf

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// buildNSF returns a minimal NSF image with a 4-byte program.
func buildNSF(songs, start int, title, artist, copyright string) []byte {
	raw := make([]byte, nsfHeaderSize+4)
	copy(raw[0:5], nsfMagic)
	raw[0x05] = 1
	raw[0x06] = byte(songs)
	raw[0x07] = byte(start)
	binary.LittleEndian.PutUint16(raw[0x08:0x0A], 0x8000) // load
	binary.LittleEndian.PutUint16(raw[0x0A:0x0C], 0x8000) // init
	binary.LittleEndian.PutUint16(raw[0x0C:0x0E], 0x8003) // play
	copy(raw[0x0E:0x2E], title)
	copy(raw[0x2E:0x4E], artist)
	copy(raw[0x4E:0x6E], copyright)
	binary.LittleEndian.PutUint16(raw[0x6E:0x70], 16639) // NTSC speed
	binary.LittleEndian.PutUint16(raw[0x78:0x7A], 19997) // PAL speed
	raw[0x7B] = ChipVRC6
	copy(raw[nsfHeaderSize:], []byte{0x60, 0x60, 0x60, 0x60})
	return raw
}

func TestParseNSF_Header(t *testing.T) {
	m, err := ParseNSF(buildNSF(12, 3, "Mega Tune", "Composer", "1988 Someone"))
	if err != nil {
		t.Fatalf("ParseNSF failed: %v", err)
	}

	if m.Format != FormatNSF {
		t.Errorf("Format = %v, want NSF", m.Format)
	}
	if m.TotalSongs != 12 {
		t.Errorf("TotalSongs = %d, want 12", m.TotalSongs)
	}
	if m.StartSong != 3 {
		t.Errorf("StartSong = %d, want 3", m.StartSong)
	}
	if m.PlayAddr != 0x8003 {
		t.Errorf("PlayAddr = 0x%04x, want 0x8003", m.PlayAddr)
	}
	if m.Title != "Mega Tune" {
		t.Errorf("Title = %q, want %q", m.Title, "Mega Tune")
	}
	if m.Artist != "Composer" {
		t.Errorf("Artist = %q, want %q", m.Artist, "Composer")
	}
	if m.Copyright != "1988 Someone" {
		t.Errorf("Copyright = %q, want %q", m.Copyright, "1988 Someone")
	}
	if m.SpeedNTSC != 16639 {
		t.Errorf("SpeedNTSC = %d, want 16639", m.SpeedNTSC)
	}
	if !m.HasChip(ChipVRC6) || m.HasChip(ChipFDS) {
		t.Errorf("Chips = 0x%02x, want VRC6 only", m.Chips)
	}
	if len(m.Data) != 4 {
		t.Errorf("len(Data) = %d, want 4", len(m.Data))
	}
	if len(m.Entries) != 12 {
		t.Fatalf("len(Entries) = %d, want 12", len(m.Entries))
	}
	if m.Entries[0].TimeMS != Unknown || m.Entries[0].FadeMS != Unknown {
		t.Errorf("Entries[0] = %+v, want unknown times", m.Entries[0])
	}
	if m.TimeMS != Unknown || m.FadeMS != Unknown {
		t.Errorf("module times = %d/%d, want unknown", m.TimeMS, m.FadeMS)
	}
}

func TestParseNSF_TooShort(t *testing.T) {
	if _, err := ParseNSF([]byte(nsfMagic)); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestParseNSF_NoSongs(t *testing.T) {
	if _, err := ParseNSF(buildNSF(0, 1, "", "", "")); err == nil {
		t.Error("expected error for zero songs")
	}
}

func TestParseNSF_ShiftJISTitle(t *testing.T) {
	// "ドラ" in Shift_JIS
	raw := buildNSF(1, 1, "\x83\x68\x83\x89", "", "")

	m, err := ParseNSF(raw)
	if err != nil {
		t.Fatalf("ParseNSF failed: %v", err)
	}
	if m.Title != "ドラ" {
		t.Errorf("Title = %q, want %q", m.Title, "ドラ")
	}
}

func TestLoadData_UnknownMagic(t *testing.T) {
	if _, err := LoadData([]byte("RIFF....")); err == nil {
		t.Error("expected error for unknown magic")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tune.nsf")
	if err := os.WriteFile(path, buildNSF(2, 1, "File Tune", "", ""), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Path != path {
		t.Errorf("Path = %q, want %q", m.Path, path)
	}
	if m.Title != "File Tune" {
		t.Errorf("Title = %q, want %q", m.Title, "File Tune")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.nsf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestChannelName(t *testing.T) {
	if got := ChannelName(0); got != "2A03 Pulse 1" {
		t.Errorf("ChannelName(0) = %q, want %q", got, "2A03 Pulse 1")
	}
	if got := ChannelName(31); got != "Channel 31" {
		t.Errorf("ChannelName(31) = %q, want %q", got, "Channel 31")
	}
}
