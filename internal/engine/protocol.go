package engine

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Host wire protocol.
//
// Requests are single-line JSON objects. Every request is answered by a
// fixed 20-byte status block followed by PayloadLen bytes: s16le PCM for
// render, a UTF-8 message when the request failed, nothing otherwise.
//
//	[0:4]   "NSFR" signature
//	[4]     status (0 = ok, 1 = failed)
//	[5]     flags (bit 0 fading, bit 1 play time detected)
//	[6:8]   reserved
//	[8:16]  total rendered frames, little-endian
//	[16:20] payload length, little-endian
const (
	StatusSignature = "NSFR"
	StatusSize      = 20
)

// Request operations
const (
	OpLoad     = "load"
	OpPlayFreq = "play_freq"
	OpChannels = "channels"
	OpSong     = "song"
	OpApply    = "apply"
	OpSkip     = "skip"
	OpRender   = "render"
	OpQuit     = "quit"
)

// Status flag bits
const (
	FlagFading   = 0x01
	FlagDetected = 0x02
)

// Status codes
const (
	StatusOK     = 0x00
	StatusFailed = 0x01
)

// maxPayload bounds a single response payload.
const maxPayload = 64 << 20

// Request is one command sent to the renderer.
type Request struct {
	Op     string           `json:"op"`
	Path   string           `json:"path,omitempty"`
	Module []byte           `json:"module,omitempty"`
	Rate   float64          `json:"rate,omitempty"`
	Value  int              `json:"value,omitempty"`
	Frames int              `json:"frames,omitempty"`
	Config map[string]int64 `json:"config,omitempty"`
}

// Status is the fixed block that opens every response.
type Status struct {
	Code        byte
	Fading      bool
	Detected    bool
	TotalRender uint64
	PayloadLen  uint32
}

// BuildRequest encodes a request line.
// This is a pure function: Request → newline-terminated JSON.
func BuildRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseRequest decodes a request line.
func ParseRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if req.Op == "" {
		return Request{}, errors.New("request missing op")
	}
	return req, nil
}

// BuildStatus encodes a status block.
// This is a pure function: Status → 20 bytes.
func BuildStatus(s Status) []byte {
	buf := make([]byte, StatusSize)
	copy(buf[0:4], StatusSignature)
	buf[4] = s.Code
	if s.Fading {
		buf[5] |= FlagFading
	}
	if s.Detected {
		buf[5] |= FlagDetected
	}
	binary.LittleEndian.PutUint64(buf[8:16], s.TotalRender)
	binary.LittleEndian.PutUint32(buf[16:20], s.PayloadLen)
	return buf
}

// ParseStatus decodes a status block.
func ParseStatus(data []byte) (Status, error) {
	if len(data) < StatusSize {
		return Status{}, errors.New("status too short")
	}
	if string(data[0:4]) != StatusSignature {
		return Status{}, fmt.Errorf("invalid status signature: %q", data[0:4])
	}

	return Status{
		Code:        data[4],
		Fading:      data[5]&FlagFading != 0,
		Detected:    data[5]&FlagDetected != 0,
		TotalRender: binary.LittleEndian.Uint64(data[8:16]),
		PayloadLen:  binary.LittleEndian.Uint32(data[16:20]),
	}, nil
}

// ReadResponse reads one status block and its payload. A failed status
// is returned as an error carrying the renderer's message.
func ReadResponse(r io.Reader) (Status, []byte, error) {
	head := make([]byte, StatusSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return Status{}, nil, fmt.Errorf("read status: %w", err)
	}

	st, err := ParseStatus(head)
	if err != nil {
		return Status{}, nil, err
	}
	if st.PayloadLen > maxPayload {
		return Status{}, nil, fmt.Errorf("payload too large: %d bytes", st.PayloadLen)
	}

	payload := make([]byte, st.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Status{}, nil, fmt.Errorf("read payload: %w", err)
	}

	if st.Code != StatusOK {
		return st, nil, fmt.Errorf("renderer: %s", payload)
	}
	return st, payload, nil
}

// DecodePCM converts s16le bytes to native samples.
func DecodePCM(data []byte, out []int16) int {
	n := len(data) / 2
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return n
}

// EncodePCM converts native samples to s16le bytes.
func EncodePCM(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
