package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrOverrun is returned when more frames are written than the header
// declared.
var ErrOverrun = errors.New("frames exceed declared length")

// Stream writes a WAV file of a known length to w. The header is written
// first; the frame count can't change afterwards.
type Stream struct {
	w       io.Writer
	format  Format
	trailer []byte

	declared uint64
	written  uint64

	headerWritten bool
	buf           []byte
}

// NewStream prepares a stream declaring frames frames. trailer holds
// complete RIFF chunks (see Chunk) appended after the audio data.
func NewStream(w io.Writer, f Format, frames uint64, trailer []byte) *Stream {
	return &Stream{
		w:        w,
		format:   f,
		trailer:  trailer,
		declared: frames,
	}
}

// WriteHeader emits the header. It must be called exactly once, before
// any frames.
func (s *Stream) WriteHeader() error {
	if s.headerWritten {
		return errors.New("header already written")
	}
	header, err := Header(s.format, s.declared, len(s.trailer))
	if err != nil {
		return err
	}
	if err := writeFull(s.w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	s.headerWritten = true
	return nil
}

// WriteFrames appends interleaved samples, repacked little-endian.
// len(samples) must be a whole number of frames.
func (s *Stream) WriteFrames(samples []int16) error {
	if !s.headerWritten {
		return errors.New("header not written")
	}
	if len(samples)%s.format.Channels != 0 {
		return fmt.Errorf("partial frame: %d samples for %d channels", len(samples), s.format.Channels)
	}
	frames := uint64(len(samples) / s.format.Channels)
	if s.written+frames > s.declared {
		return ErrOverrun
	}

	n := len(samples) * 2
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	buf := s.buf[:n]
	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}

	if err := writeFull(s.w, buf); err != nil {
		return fmt.Errorf("write frames: %w", err)
	}
	s.written += frames
	return nil
}

// Finish checks that every declared frame was written and appends the
// trailing chunks.
func (s *Stream) Finish() error {
	if s.written != s.declared {
		return fmt.Errorf("wrote %d of %d declared frames", s.written, s.declared)
	}
	if len(s.trailer) == 0 {
		return nil
	}
	if err := writeFull(s.w, s.trailer); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}

func (s *Stream) HeaderWritten() bool { return s.headerWritten }
func (s *Stream) Declared() uint64    { return s.declared }
func (s *Stream) Written() uint64     { return s.written }

// Remaining is the number of frames still owed.
func (s *Stream) Remaining() uint64 { return s.declared - s.written }

func writeFull(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}
