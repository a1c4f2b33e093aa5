package engine

import "fmt"

// FullVolume is the per-channel volume that leaves a channel unchanged.
const FullVolume = 128

// Mixing overrides the chips' analog mixing models. The pipeline sets it
// in trigger mode so raw oscillator output is captured uncoloured.
type Mixing struct {
	APU1NonLinear bool
	APU2NonLinear bool
	MMC5NonLinear bool
	N163Multiplex bool
	FDSCutoffHz   int
}

// AudioSettings shape the rendered signal.
type AudioSettings struct {
	MasterVolume        int
	RandomNoisePhase    bool
	RandomTrianglePhase bool

	// Mask suppresses channels bit-exactly, slot 0 = 2A03 Pulse 1.
	Mask    uint64
	Trigger bool
	Mixing  *Mixing

	// Volumes holds one entry per channel slot; nil leaves the
	// engine's own volumes untouched.
	Volumes []int
}

// DetectSettings control loop/end detection and play-time limits.
// The zero value disables detection.
type DetectSettings struct {
	AutoDetect       bool
	LoopNum          int
	DetectIntervalMS int
	StopSeconds      int

	// PlayTimeMS and FadeTimeMS drive the engine's fader; negative
	// means "use the module's own value".
	PlayTimeMS int32
	FadeTimeMS int32
}

// Settings is the complete configuration pushed by one Apply call.
type Settings struct {
	Audio  AudioSettings
	Detect DetectSettings
}

// DefaultAudio returns the audio settings every conversion starts from:
// doubled master volume and deterministic noise/triangle phase at reset.
func DefaultAudio() AudioSettings {
	return AudioSettings{MasterVolume: 256}
}

// Detection returns detection settings with auto-detect enabled.
func Detection() DetectSettings {
	return DetectSettings{
		AutoDetect:       true,
		LoopNum:          2,
		DetectIntervalMS: 1000,
		PlayTimeMS:       -1,
		FadeTimeMS:       -1,
	}
}

// NoDetection returns detection settings with auto-detect disabled.
func NoDetection() DetectSettings {
	return DetectSettings{PlayTimeMS: -1, FadeTimeMS: -1}
}

// Keys flattens s into the renderer's key/value configuration.
// This is a pure function: Settings → config keys.
func (s Settings) Keys() map[string]int64 {
	keys := map[string]int64{
		"MASTER_VOLUME": int64(s.Audio.MasterVolume),
		"APU2_OPTION5":  boolKey(s.Audio.RandomNoisePhase),
		"APU2_OPTION7":  boolKey(s.Audio.RandomTrianglePhase),
		"MASK":          int64(s.Audio.Mask),
		"TRIGGER":       boolKey(s.Audio.Trigger),

		"AUTO_DETECT": boolKey(s.Detect.AutoDetect),
		"LOOP_NUM":    int64(s.Detect.LoopNum),
		"STOP_SEC":    int64(s.Detect.StopSeconds),
	}

	if s.Detect.DetectIntervalMS > 0 {
		keys["DETECT_INT"] = int64(s.Detect.DetectIntervalMS)
	}
	if s.Detect.PlayTimeMS >= 0 {
		keys["PLAY_TIME"] = int64(s.Detect.PlayTimeMS)
	}
	if s.Detect.FadeTimeMS >= 0 {
		keys["FADE_TIME"] = int64(s.Detect.FadeTimeMS)
	}

	if m := s.Audio.Mixing; m != nil {
		keys["APU1_OPTION2"] = boolKey(m.APU1NonLinear)
		keys["APU2_OPTION4"] = boolKey(m.APU2NonLinear)
		keys["MMC5_OPTION0"] = boolKey(m.MMC5NonLinear)
		keys["N163_OPTION0"] = boolKey(m.N163Multiplex)
		keys["FDS_OPTION0"] = int64(m.FDSCutoffHz)
	}

	for i, v := range s.Audio.Volumes {
		keys[fmt.Sprintf("CHANNEL_%02d_VOL", i)] = int64(v)
	}

	return keys
}

func boolKey(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
