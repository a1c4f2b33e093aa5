package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

func TestHeader_Stereo44100(t *testing.T) {
	// 30 s play + 5 s fade at 44100 Hz
	frames := uint64(1543500)
	header, err := Header(Format{Channels: 2, SampleRate: 44100}, frames, 0)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}

	if len(header) != HeaderSize {
		t.Fatalf("header size = %d, want %d", len(header), HeaderSize)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		t.Errorf("magic = %q/%q, want RIFF/WAVE", header[0:4], header[8:12])
	}
	if string(header[12:16]) != "fmt " || string(header[36:40]) != "data" {
		t.Errorf("chunk ids = %q/%q, want fmt/data", header[12:16], header[36:40])
	}

	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", binary.LittleEndian.Uint32(header[4:8]), 36 + 6174000},
		{"fmt size", binary.LittleEndian.Uint32(header[16:20]), 16},
		{"format", uint32(binary.LittleEndian.Uint16(header[20:22])), 1},
		{"channels", uint32(binary.LittleEndian.Uint16(header[22:24])), 2},
		{"sample rate", binary.LittleEndian.Uint32(header[24:28]), 44100},
		{"byte rate", binary.LittleEndian.Uint32(header[28:32]), 176400},
		{"block align", uint32(binary.LittleEndian.Uint16(header[32:34])), 4},
		{"bits", uint32(binary.LittleEndian.Uint16(header[34:36])), 16},
		{"data size", binary.LittleEndian.Uint32(header[40:44]), 6174000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestHeader_Mono(t *testing.T) {
	header, err := Header(Format{Channels: 1, SampleRate: 48000}, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint16(header[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(header[28:32]); got != 96000 {
		t.Errorf("byte rate = %d, want 96000", got)
	}
	if got := binary.LittleEndian.Uint32(header[40:44]); got != 200 {
		t.Errorf("data size = %d, want 200", got)
	}
}

func TestHeader_Empty(t *testing.T) {
	header, err := Header(Format{Channels: 2, SampleRate: 44100}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(header[4:8]); got != 36 {
		t.Errorf("riff size = %d, want 36", got)
	}
	if got := binary.LittleEndian.Uint32(header[40:44]); got != 0 {
		t.Errorf("data size = %d, want 0", got)
	}
}

func TestHeader_Trailer(t *testing.T) {
	header, err := Header(Format{Channels: 2, SampleRate: 44100}, 10, 18)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(header[4:8]); got != 36+40+18 {
		t.Errorf("riff size = %d, want %d", got, 36+40+18)
	}
	if got := binary.LittleEndian.Uint32(header[40:44]); got != 40 {
		t.Errorf("data size = %d, want 40", got)
	}
}

func TestFormat_CheckSize(t *testing.T) {
	f := Format{Channels: 2, SampleRate: 44100}
	limit := uint64((math.MaxUint32 - 36) / 4)

	if err := f.CheckSize(limit, 0); err != nil {
		t.Errorf("CheckSize(%d) = %v, want nil", limit, err)
	}
	if err := f.CheckSize(limit+1, 0); !errors.Is(err, ErrTooLarge) {
		t.Errorf("CheckSize(%d) = %v, want ErrTooLarge", limit+1, err)
	}
	if err := f.CheckSize(limit, 8); !errors.Is(err, ErrTooLarge) {
		t.Errorf("CheckSize with trailer = %v, want ErrTooLarge", err)
	}
}

func TestHeader_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		frames uint64
	}{
		{"no channels", Format{Channels: 0, SampleRate: 44100}, 1},
		{"three channels", Format{Channels: 3, SampleRate: 44100}, 1},
		{"zero rate", Format{Channels: 2}, 1},
		{"too long", Format{Channels: 2, SampleRate: 44100}, 1 << 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Header(tt.format, tt.frames, 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestChunk_Padding(t *testing.T) {
	c := Chunk("id3 ", []byte{1, 2, 3})
	if len(c) != 12 {
		t.Fatalf("chunk size = %d, want 12", len(c))
	}
	if string(c[0:4]) != "id3 " {
		t.Errorf("id = %q, want \"id3 \"", c[0:4])
	}
	if got := binary.LittleEndian.Uint32(c[4:8]); got != 3 {
		t.Errorf("body size = %d, want 3", got)
	}
	if c[11] != 0 {
		t.Errorf("pad byte = %d, want 0", c[11])
	}
}

func TestStream_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, Format{Channels: 2, SampleRate: 44100}, 3, nil)

	if err := s.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	samples := []int16{0, 1, -1, 32767, -32768, 256}
	if err := s.WriteFrames(samples); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}

	if buf.Len() != HeaderSize+12 {
		t.Fatalf("file size = %d, want %d", buf.Len(), HeaderSize+12)
	}
	want := []byte{0x00, 0x00, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0x7F, 0x00, 0x80, 0x00, 0x01}
	if !bytes.Equal(buf.Bytes()[HeaderSize:], want) {
		t.Errorf("data = % x, want % x", buf.Bytes()[HeaderSize:], want)
	}

	d := gowav.NewDecoder(bytes.NewReader(buf.Bytes()))
	if !d.IsValidFile() {
		t.Fatal("decoder rejected file")
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer failed: %v", err)
	}
	if d.NumChans != 2 || d.SampleRate != 44100 || d.BitDepth != 16 {
		t.Errorf("decoded format = %d ch %d Hz %d bit, want 2/44100/16", d.NumChans, d.SampleRate, d.BitDepth)
	}
	if want := (audio.Format{NumChannels: 2, SampleRate: 44100}); pcm.Format == nil || *pcm.Format != want {
		t.Errorf("buffer format = %+v, want %+v", pcm.Format, want)
	}
	if len(pcm.Data) != len(samples) {
		t.Fatalf("decoded samples = %d, want %d", len(pcm.Data), len(samples))
	}
	for i := range samples {
		if pcm.Data[i] != int(samples[i]) {
			t.Errorf("sample[%d] = %d, want %d", i, pcm.Data[i], samples[i])
		}
	}
}

func TestStream_Trailer(t *testing.T) {
	var buf bytes.Buffer
	trailer := Chunk("id3 ", []byte("ID3"))
	s := NewStream(&buf, Format{Channels: 1, SampleRate: 8000}, 2, trailer)

	if err := s.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFrames([]int16{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(len(data)-8) {
		t.Errorf("riff size = %d, want %d", got, len(data)-8)
	}
	if !bytes.HasSuffix(data, trailer) {
		t.Error("trailer chunk not at end of file")
	}
}

func TestStream_Overrun(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, Format{Channels: 2, SampleRate: 44100}, 1, nil)
	if err := s.WriteHeader(); err != nil {
		t.Fatal(err)
	}

	err := s.WriteFrames([]int16{1, 2, 3, 4})
	if !errors.Is(err, ErrOverrun) {
		t.Errorf("error = %v, want ErrOverrun", err)
	}
}

func TestStream_Incomplete(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, Format{Channels: 2, SampleRate: 44100}, 4, nil)
	if err := s.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFrames([]int16{1, 2}); err != nil {
		t.Fatal(err)
	}

	if s.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", s.Remaining())
	}
	if err := s.Finish(); err == nil {
		t.Error("expected error for missing frames")
	}
}

func TestStream_HeaderOrder(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, Format{Channels: 1, SampleRate: 44100}, 1, nil)

	if err := s.WriteFrames([]int16{1}); err == nil {
		t.Error("expected error writing frames before header")
	}
	if err := s.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteHeader(); err == nil {
		t.Error("expected error writing header twice")
	}
	if !s.HeaderWritten() {
		t.Error("HeaderWritten() = false, want true")
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestStream_ShortWrite(t *testing.T) {
	s := NewStream(shortWriter{}, Format{Channels: 2, SampleRate: 44100}, 1, nil)
	if err := s.WriteHeader(); err == nil {
		t.Error("expected error for short write")
	}
	if s.HeaderWritten() {
		t.Error("HeaderWritten() = true after failed write")
	}
}
