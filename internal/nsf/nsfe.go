package nsf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const nsfeMagic = "NSFE"

// ParseNSFe parses an NSFe chunk stream.
// This is a pure function: file bytes → Module.
//
// Chunks with an uppercase first letter are mandatory: an unknown one
// is an error. Unknown lowercase chunks are skipped.
func ParseNSFe(data []byte) (*Module, error) {
	if len(data) < 4 || string(data[:4]) != nsfeMagic {
		return nil, errors.New("invalid NSFe magic")
	}

	m := newModule()
	m.Format = FormatNSFe
	m.Raw = data
	m.TotalSongs = 1
	m.StartSong = 1

	var (
		haveInfo, haveData, haveEnd bool
		times, fades                []int32
		labels                      []string
	)

	offset := 4
	for offset+8 <= len(data) && !haveEnd {
		size := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		id := string(data[offset+4 : offset+8])
		offset += 8

		if size < 0 || offset+size > len(data) {
			return nil, fmt.Errorf("NSFe chunk %q overruns file (%d bytes)", id, size)
		}
		chunk := data[offset : offset+size]
		offset += size

		switch id {
		case "INFO":
			if len(chunk) < 9 {
				return nil, fmt.Errorf("NSFe INFO chunk too short: %d bytes", len(chunk))
			}
			m.LoadAddr = binary.LittleEndian.Uint16(chunk[0:2])
			m.InitAddr = binary.LittleEndian.Uint16(chunk[2:4])
			m.PlayAddr = binary.LittleEndian.Uint16(chunk[4:6])
			m.Region = chunk[6]
			m.Chips = chunk[7]
			m.TotalSongs = int(chunk[8])
			if len(chunk) >= 10 {
				m.StartSong = int(chunk[9]) + 1
			}
			haveInfo = true

		case "DATA":
			m.Data = make([]byte, len(chunk))
			copy(m.Data, chunk)
			haveData = true

		case "NEND":
			haveEnd = true

		case "BANK":
			copy(m.Banks[:], chunk)

		case "RATE":
			if len(chunk) >= 2 {
				m.SpeedNTSC = binary.LittleEndian.Uint16(chunk[0:2])
			}
			if len(chunk) >= 4 {
				m.SpeedPAL = binary.LittleEndian.Uint16(chunk[2:4])
			}

		case "auth":
			fields := splitNUL(chunk, 4)
			m.Title, m.Artist, m.Copyright, m.Ripper = fields[0], fields[1], fields[2], fields[3]

		case "text":
			m.Text = decodeString(chunk)

		case "plst":
			m.Playlist = make([]int, len(chunk))
			for i, b := range chunk {
				m.Playlist[i] = int(b)
			}

		case "time":
			times = parseInt32s(chunk)

		case "fade":
			fades = parseInt32s(chunk)

		case "tlbl":
			labels = splitNUL(chunk, -1)

		default:
			if id[0] >= 'A' && id[0] <= 'Z' {
				return nil, fmt.Errorf("unsupported mandatory NSFe chunk %q", id)
			}
		}
	}

	if !haveInfo {
		return nil, errors.New("NSFe missing INFO chunk")
	}
	if !haveData {
		return nil, errors.New("NSFe missing DATA chunk")
	}
	if m.TotalSongs == 0 {
		return nil, errors.New("NSFe declares no songs")
	}
	if m.StartSong < 1 || m.StartSong > m.TotalSongs {
		m.StartSong = 1
	}

	m.initEntries()
	for i := range m.Entries {
		if i < len(times) {
			m.Entries[i].TimeMS = times[i]
		}
		if i < len(fades) {
			m.Entries[i].FadeMS = fades[i]
		}
		if i < len(labels) {
			m.Entries[i].Label = labels[i]
		}
	}

	// Drop playlist entries that point outside the song table.
	if m.Playlist != nil {
		valid := m.Playlist[:0]
		for _, s := range m.Playlist {
			if s < m.TotalSongs {
				valid = append(valid, s)
			}
		}
		m.Playlist = valid
	}

	return m, nil
}

// parseInt32s reads little-endian signed 32-bit values; negative means unknown.
func parseInt32s(chunk []byte) []int32 {
	out := make([]int32, len(chunk)/4)
	for i := range out {
		v := int32(binary.LittleEndian.Uint32(chunk[i*4 : i*4+4]))
		if v < 0 {
			v = Unknown
		}
		out[i] = v
	}
	return out
}

// splitNUL splits a run of NUL-terminated strings. With n > 0 the
// result always has n elements.
func splitNUL(chunk []byte, n int) []string {
	var out []string
	start := 0
	for i, b := range chunk {
		if b == 0 {
			out = append(out, decodeString(chunk[start:i]))
			start = i + 1
		}
	}
	if start < len(chunk) {
		out = append(out, decodeString(chunk[start:]))
	}
	for n > 0 && len(out) < n {
		out = append(out, "")
	}
	return out
}
