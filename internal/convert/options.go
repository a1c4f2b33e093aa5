// Package convert turns a loaded module into a WAV file: it resolves the
// track and its timing, optionally detects the loop point, compiles the
// channel configuration and streams the rendered audio.
package convert

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/binaryphile/nsf2wav/internal/nsf"
	"github.com/binaryphile/nsf2wav/internal/wav"
)

// DefaultChannelWidth is the number of logical channel slots a
// ChannelSet covers unless told otherwise.
const DefaultChannelWidth = nsf.ChannelSlots

// MaxChannelWidth is the widest set a ChannelSet can hold.
const MaxChannelWidth = 64

// ChannelSet is a fixed-width set of channel slots. The zero value is an
// empty set of DefaultChannelWidth slots.
type ChannelSet struct {
	width int
	bits  uint64
}

// NewChannelSet returns an empty set over width slots, clamped to
// 1..MaxChannelWidth.
func NewChannelSet(width int) ChannelSet {
	switch {
	case width < 1:
		width = 1
	case width > MaxChannelWidth:
		width = MaxChannelWidth
	}
	return ChannelSet{width: width}
}

// Width is the number of defined slots.
func (s ChannelSet) Width() int {
	if s.width == 0 {
		return DefaultChannelWidth
	}
	return s.width
}

func (s ChannelSet) rangeMask() uint64 {
	if s.Width() == 64 {
		return ^uint64(0)
	}
	return 1<<uint(s.Width()) - 1
}

// With returns s with slot added. Slots outside the defined range are
// ignored.
func (s ChannelSet) With(slot int) ChannelSet {
	if slot < 0 || slot >= s.Width() {
		return s
	}
	s.bits |= 1 << uint(slot)
	return s
}

func (s ChannelSet) Has(slot int) bool {
	if slot < 0 || slot >= s.Width() {
		return false
	}
	return s.bits&(1<<uint(slot)) != 0
}

// Complement flips every defined slot; bits beyond Width stay clear.
func (s ChannelSet) Complement() ChannelSet {
	s.bits = ^s.bits & s.rangeMask()
	return s
}

// Bits returns the set as a bitmask, slot 0 in bit 0.
func (s ChannelSet) Bits() uint64 { return s.bits }

func (s ChannelSet) Len() int { return bits.OnesCount64(s.bits) }

func (s ChannelSet) Empty() bool { return s.bits == 0 }

func (s ChannelSet) Equal(o ChannelSet) bool {
	return s.Width() == o.Width() && s.bits == o.bits
}

// Slots lists the members in ascending order.
func (s ChannelSet) Slots() []int {
	var out []int
	for i := 0; i < s.Width(); i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// MaskOpKind identifies a command-line channel operation.
type MaskOpKind int

const (
	OpMask    MaskOpKind = iota // add a slot to the mask
	OpReverse                   // complement the mask
	OpMute                      // commit the mask as the mute set
)

// MaskOp is one channel operation in command-line order.
type MaskOp struct {
	Kind MaskOpKind
	Slot int
}

// MaskOps is an ordered list of channel operations.
type MaskOps []MaskOp

// Fold replays ops over width slots. Mute commits the effective mask
// (reversed if a reverse is pending) into the mute set and clears both
// the mask and the pending reverse.
func (ops MaskOps) Fold(width int) (mask, mute ChannelSet, reverse bool) {
	mask = NewChannelSet(width)
	mute = NewChannelSet(width)

	for _, op := range ops {
		switch op.Kind {
		case OpMask:
			mask = mask.With(op.Slot)
		case OpReverse:
			reverse = !reverse
		case OpMute:
			mute = mask
			if reverse {
				mute = mask.Complement()
			}
			mask = NewChannelSet(width)
			reverse = false
		}
	}
	return mask, mute, reverse
}

// MaxSampleRate is the highest rate whose byte rate still fits the
// 32-bit WAV header field for the given channel count.
func MaxSampleRate(channels int) float64 {
	return math.Floor(math.MaxUint32 / float64(max(channels, 1)*wav.BitsPerSample/8))
}

// Options is the immutable description of one conversion.
type Options struct {
	Channels   int
	SampleRate float64
	LengthMS   int32
	FadeMS     int32
	Track      int // 1-based; ignored in playlist mode
	Quiet      bool

	Mask        ChannelSet
	Mute        ChannelSet
	MaskReverse bool

	Trigger     bool
	ForceLength bool

	// Tag appends an ID3 chunk carrying the module metadata.
	Tag bool
}

// DefaultOptions returns mono output at the default rate with the
// module defaults for length and fade.
func DefaultOptions() Options {
	return Options{
		Channels:   1,
		SampleRate: nsf.DefaultRate,
		LengthMS:   nsf.DefaultPlayTimeMS,
		FadeMS:     nsf.DefaultFadeTimeMS,
		Track:      1,
	}
}

// Validate reports option combinations the pipeline can't honour.
// Track is checked by Resolve, which knows whether the module is in
// playlist mode.
func (o Options) Validate() error {
	var errs []error

	if o.Channels != 1 && o.Channels != 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", o.Channels))
	}
	if math.IsNaN(o.SampleRate) || o.SampleRate < 1 {
		errs = append(errs, fmt.Errorf("sample rate must be at least 1 Hz, got %g", o.SampleRate))
	}
	if o.SampleRate > MaxSampleRate(o.Channels) {
		errs = append(errs, fmt.Errorf("sample rate too large: %g", o.SampleRate))
	}
	if o.LengthMS < 0 {
		errs = append(errs, fmt.Errorf("length must not be negative, got %d", o.LengthMS))
	}
	if o.FadeMS < 0 {
		errs = append(errs, fmt.Errorf("fade must not be negative, got %d", o.FadeMS))
	}

	return errors.Join(errs...)
}
