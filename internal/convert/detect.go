package convert

import (
	"fmt"
	"math"

	"github.com/binaryphile/nsf2wav/internal/engine"
)

// ChunkFrames is the most frames requested from the engine in one call.
const ChunkFrames = 4096

// Outcome is the result of loop detection.
type Outcome int

const (
	DetectionNotRequested Outcome = iota
	DetectionNotFound
	DetectionFound
)

func (o Outcome) String() string {
	switch o {
	case DetectionNotFound:
		return "not found"
	case DetectionFound:
		return "found"
	default:
		return "not requested"
	}
}

// RenderPlan fixes how many frames the writer renders and how the engine
// is configured for the final pass.
type RenderPlan struct {
	NominalFrames uint64
	TotalFrames   uint64
	Outcome       Outcome
	Trigger       bool

	// Engine fader times for the final pass.
	PlayTimeMS int32
	FadeTimeMS int32

	// StopSeconds is the engine-side hard stop; zero when detection
	// didn't run.
	StopSeconds int

	// Rendered is the engine's frame count when detection stopped.
	Rendered uint64
}

// NominalFrames is the frame count for length plus fade at rate,
// truncated.
func NominalFrames(lengthMS, fadeMS int32, rate float64) uint64 {
	return uint64((float64(lengthMS)+float64(fadeMS))*rate) / 1000
}

// DetectionSettings are the detection controls applied before the
// detection pass.
func DetectionSettings(td TrackDescriptor, opts Options) engine.DetectSettings {
	s := engine.NoDetection()
	if !opts.ForceLength {
		s = engine.Detection()
	}
	s.PlayTimeMS = td.LengthMS
	s.FadeTimeMS = td.FadeMS
	return s
}

// DetectSettings are the detection controls for the final render. Once
// a loop has been found detection is switched off so it can't recur.
func (p RenderPlan) DetectSettings() engine.DetectSettings {
	var s engine.DetectSettings
	switch p.Outcome {
	case DetectionNotFound:
		s = engine.Detection()
	default:
		s = engine.NoDetection()
	}
	s.PlayTimeMS = p.PlayTimeMS
	s.FadeTimeMS = p.FadeTimeMS
	s.StopSeconds = p.StopSeconds
	return s
}

// Detect fast-forwards eng looking for the module's natural end. With
// ForceLength set the engine is not touched and the nominal length is
// kept. The returned TotalFrames never exceeds NominalFrames.
func Detect(eng engine.Engine, td TrackDescriptor, opts Options) (RenderPlan, error) {
	nominal := NominalFrames(td.LengthMS, td.FadeMS, opts.SampleRate)

	plan := RenderPlan{
		NominalFrames: nominal,
		TotalFrames:   nominal,
		Outcome:       DetectionNotRequested,
		Trigger:       opts.Trigger,
		PlayTimeMS:    td.LengthMS,
		FadeTimeMS:    td.FadeMS,
	}
	if opts.ForceLength {
		return plan, nil
	}

	remaining := nominal
	for remaining > 0 && !eng.IsFading() {
		fc := min(remaining, ChunkFrames)
		if err := eng.Skip(int(fc)); err != nil {
			return RenderPlan{}, fmt.Errorf("skip: %w", err)
		}
		remaining -= fc
	}
	plan.Rendered = eng.TotalRendered()

	if eng.PlaytimeDetected() {
		fadeFrames := float64(td.FadeMS) * opts.SampleRate / 1000
		plan.TotalFrames = min(uint64(float64(plan.Rendered)+fadeFrames), nominal)
		plan.Outcome = DetectionFound

		// Capture the tail as sustain rather than fading it out.
		if opts.Trigger {
			plan.PlayTimeMS += plan.FadeTimeMS
			plan.FadeTimeMS = 0
		}
	} else {
		plan.Outcome = DetectionNotFound
	}

	plan.StopSeconds = int(math.Ceil(float64(plan.Rendered)/opts.SampleRate + float64(td.FadeMS)/1000))

	return plan, nil
}
