package convert

import (
	"slices"

	"github.com/binaryphile/nsf2wav/internal/engine"
)

// FullScale is the volume of an unmuted channel.
const FullScale = engine.FullVolume

// TriggerFDSCutoffHz effectively disables the FDS low-pass filter.
const TriggerFDSCutoffHz = 96000

// ChannelConfig is the per-channel volume table, the suppress mask and
// the mixing overrides for the final render.
type ChannelConfig struct {
	Volumes []int
	Mask    uint64
	Trigger bool
	Mixing  *engine.Mixing
}

// Compile builds the channel configuration from the mask and mute sets.
// This is a pure function: same options, same ChannelConfig.
func Compile(opts Options) ChannelConfig {
	width := opts.Mute.Width()
	volumes := make([]int, width)
	for i := range volumes {
		if opts.Mute.Has(i) {
			continue
		}
		volumes[i] = FullScale
	}

	mask := opts.Mask
	if opts.MaskReverse {
		mask = mask.Complement()
	}

	cfg := ChannelConfig{
		Volumes: volumes,
		Mask:    mask.Bits(),
		Trigger: opts.Trigger,
	}
	if opts.Trigger {
		cfg.Mixing = &engine.Mixing{FDSCutoffHz: TriggerFDSCutoffHz}
	}
	return cfg
}

// Settings composes the complete engine configuration for one phase.
func (c ChannelConfig) Settings(detect engine.DetectSettings) engine.Settings {
	audio := engine.DefaultAudio()
	audio.Mask = c.Mask
	audio.Trigger = c.Trigger
	audio.Volumes = slices.Clone(c.Volumes)
	if c.Mixing != nil {
		m := *c.Mixing
		audio.Mixing = &m
	}
	return engine.Settings{Audio: audio, Detect: detect}
}

// Equal reports whether two configurations are identical.
func (c ChannelConfig) Equal(o ChannelConfig) bool {
	if c.Mask != o.Mask || c.Trigger != o.Trigger || !slices.Equal(c.Volumes, o.Volumes) {
		return false
	}
	if (c.Mixing == nil) != (o.Mixing == nil) {
		return false
	}
	return c.Mixing == nil || *c.Mixing == *o.Mixing
}

// Muted lists the slots compiled to zero volume.
func (c ChannelConfig) Muted() []int {
	var out []int
	for i, v := range c.Volumes {
		if v == 0 {
			out = append(out, i)
		}
	}
	return out
}
