// Package wav writes linear PCM RIFF/WAVE files whose header is emitted
// before any sample data.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTooLarge reports audio whose RIFF size would overflow 32 bits.
var ErrTooLarge = errors.New("audio too long for WAV")

// HeaderSize is the size of the canonical RIFF + fmt + data header.
const HeaderSize = 44

// BitsPerSample is the only sample width written.
const BitsPerSample = 16

// Format describes the PCM stream.
type Format struct {
	Channels   int
	SampleRate uint32
}

// BlockAlign is the size of one frame in bytes.
func (f Format) BlockAlign() int {
	return f.Channels * (BitsPerSample / 8)
}

// ByteRate is the number of data bytes per second.
func (f Format) ByteRate() uint32 {
	return f.SampleRate * uint32(f.BlockAlign())
}

// DataSize is the data chunk size for the given number of frames.
func (f Format) DataSize(frames uint64) uint64 {
	return frames * uint64(f.BlockAlign())
}

// CheckSize reports ErrTooLarge when frames of audio plus trailerLen
// bytes of trailing chunks don't fit a RIFF file.
func (f Format) CheckSize(frames uint64, trailerLen int) error {
	if 36+f.DataSize(frames)+uint64(trailerLen) > math.MaxUint32 {
		return fmt.Errorf("%w: %d frames", ErrTooLarge, frames)
	}
	return nil
}

func (f Format) validate() error {
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	if f.SampleRate == 0 {
		return errors.New("sample rate must be positive")
	}
	return nil
}

// Header builds the 44-byte WAV header for frames frames of audio.
// trailerLen is the size of any chunks that will follow the data chunk,
// counted into the RIFF size.
// This is a pure function: format + frame count → header bytes.
func Header(f Format, frames uint64, trailerLen int) ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	if err := f.CheckSize(frames, trailerLen); err != nil {
		return nil, err
	}
	dataSize := f.DataSize(frames)
	riffSize := 36 + dataSize + uint64(trailerLen)

	header := make([]byte, HeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(riffSize))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(header[24:28], f.SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], f.ByteRate())
	binary.LittleEndian.PutUint16(header[32:34], uint16(f.BlockAlign()))
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return header, nil
}

// Chunk frames body as a RIFF chunk, padding to an even length.
func Chunk(id string, body []byte) []byte {
	size := 8 + len(body)
	if len(body)%2 == 1 {
		size++
	}
	buf := make([]byte, size)
	copy(buf[0:4], id)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[8:], body)
	return buf
}
