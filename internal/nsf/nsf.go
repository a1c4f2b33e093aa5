package nsf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	nsfMagic      = "NESM\x1a"
	nsfHeaderSize = 0x80
)

// Expansion chip bits from header byte 0x7B / INFO byte 7.
const (
	ChipVRC6 byte = 1 << iota
	ChipVRC7
	ChipFDS
	ChipMMC5
	ChipN163
	Chip5B
)

// ParseNSF parses a classic NSF image.
// This is a pure function: file bytes → Module.
func ParseNSF(data []byte) (*Module, error) {
	if len(data) < nsfHeaderSize {
		return nil, errors.New("NSF data too short: need 128-byte header")
	}
	if string(data[:5]) != nsfMagic {
		return nil, fmt.Errorf("invalid NSF magic: %q", data[:5])
	}

	m := newModule()
	m.Format = FormatNSF
	m.Raw = data

	m.Version = data[0x05]
	m.TotalSongs = int(data[0x06])
	m.StartSong = int(data[0x07])
	m.LoadAddr = binary.LittleEndian.Uint16(data[0x08:0x0A])
	m.InitAddr = binary.LittleEndian.Uint16(data[0x0A:0x0C])
	m.PlayAddr = binary.LittleEndian.Uint16(data[0x0C:0x0E])
	m.Title = decodeString(data[0x0E:0x2E])
	m.Artist = decodeString(data[0x2E:0x4E])
	m.Copyright = decodeString(data[0x4E:0x6E])
	m.SpeedNTSC = binary.LittleEndian.Uint16(data[0x6E:0x70])
	copy(m.Banks[:], data[0x70:0x78])
	m.SpeedPAL = binary.LittleEndian.Uint16(data[0x78:0x7A])
	m.Region = data[0x7A]
	m.Chips = data[0x7B]

	if m.TotalSongs == 0 {
		return nil, errors.New("NSF declares no songs")
	}
	if m.StartSong < 1 || m.StartSong > m.TotalSongs {
		m.StartSong = 1
	}

	// NSF2 stores the program length in 0x7D..0x7F; zero means "to EOF".
	end := len(data)
	if m.Version >= 2 {
		progLen := int(data[0x7D]) | int(data[0x7E])<<8 | int(data[0x7F])<<16
		if progLen > 0 && nsfHeaderSize+progLen <= len(data) {
			end = nsfHeaderSize + progLen
		}
	}

	m.Data = make([]byte, end-nsfHeaderSize)
	copy(m.Data, data[nsfHeaderSize:end])

	m.initEntries()
	return m, nil
}

// HasChip reports whether the module uses the given expansion chip.
func (m *Module) HasChip(chip byte) bool {
	return m.Chips&chip != 0
}
