package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/binaryphile/nsf2wav/internal/nsf"
)

// Host drives a renderer process speaking the wire protocol on its
// stdin/stdout. State reported in each response (fading, detection,
// total rendered) is cached for the query methods.
type Host struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	w io.Writer
	r *bufio.Reader

	channels int
	status   Status
}

// NewHost returns a Host that talks over r and w.
func NewHost(r io.Reader, w io.Writer) *Host {
	return &Host{
		w:        w,
		r:        bufio.NewReader(r),
		channels: 1,
	}
}

// StartHost launches a renderer process.
// This is boundary code - starts an external process.
func StartHost(command string, args ...string) (*Host, error) {
	if command == "" {
		return nil, errors.New("no renderer command configured")
	}

	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("renderer stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("renderer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start renderer: %w", err)
	}

	h := NewHost(stdout, stdin)
	h.cmd = cmd
	h.stdin = stdin
	return h, nil
}

// Close asks the renderer to exit and waits for it.
func (h *Host) Close() error {
	if h.cmd == nil {
		return nil
	}
	// The renderer may already be gone; Wait reports how it ended.
	if line, err := BuildRequest(Request{Op: OpQuit}); err == nil {
		h.w.Write(line)
	}
	h.stdin.Close()

	err := h.cmd.Wait()
	h.cmd = nil
	if err != nil {
		return fmt.Errorf("renderer exit: %w", err)
	}
	return nil
}

func (h *Host) call(req Request) ([]byte, error) {
	line, err := BuildRequest(req)
	if err != nil {
		return nil, err
	}
	if _, err := h.w.Write(line); err != nil {
		return nil, fmt.Errorf("%s: write request: %w", req.Op, err)
	}

	st, payload, err := ReadResponse(h.r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Op, err)
	}
	h.status = st
	return payload, nil
}

// Load sends the module image to the renderer.
func (h *Host) Load(m *nsf.Module) error {
	_, err := h.call(Request{Op: OpLoad, Path: m.Path, Module: m.Raw})
	return err
}

func (h *Host) SetPlayFreq(rate float64) error {
	_, err := h.call(Request{Op: OpPlayFreq, Rate: rate})
	return err
}

func (h *Host) SetChannels(n int) error {
	if n < 1 {
		return fmt.Errorf("invalid channel count %d", n)
	}
	if _, err := h.call(Request{Op: OpChannels, Value: n}); err != nil {
		return err
	}
	h.channels = n
	return nil
}

func (h *Host) SetSong(index int) error {
	_, err := h.call(Request{Op: OpSong, Value: index})
	return err
}

// Apply pushes the flattened settings; the renderer resets on receipt.
func (h *Host) Apply(s Settings) error {
	_, err := h.call(Request{Op: OpApply, Config: s.Keys()})
	return err
}

func (h *Host) Skip(frames int) error {
	_, err := h.call(Request{Op: OpSkip, Frames: frames})
	return err
}

// Render requests frames and decodes the returned PCM into buf.
func (h *Host) Render(buf []int16, frames int) (int, error) {
	payload, err := h.call(Request{Op: OpRender, Frames: frames})
	if err != nil {
		return 0, err
	}

	want := frames * h.channels
	if want > len(buf) {
		want = len(buf)
	}
	n := DecodePCM(payload, buf[:want])
	return n / h.channels, nil
}

func (h *Host) TotalRendered() uint64 { return h.status.TotalRender }
func (h *Host) IsFading() bool        { return h.status.Fading }
func (h *Host) PlaytimeDetected() bool {
	return h.status.Detected
}
