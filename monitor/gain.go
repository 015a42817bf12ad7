package monitor

import (
	"github.com/cwbudde/algo-dsp/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// VolumeFloor is the level in dB at and below which the output is
// fully silenced rather than attenuated.
const VolumeFloor = -64.0

// Levels is the output gain selection for one block. Exactly one of
// the three dB levels applies: dim wins over reference, reference wins
// over the monitor level.
type Levels struct {
	Monitor float64
	Dim     float64
	Ref     float64

	Mute  bool
	DimOn bool
	RefOn bool
}

// Resolve returns the linear output gain. Mute and levels at or below
// the floor resolve to zero.
func (l Levels) Resolve() float64 {
	if l.Mute {
		return 0
	}

	level := l.Monitor
	switch {
	case l.DimOn:
		level = l.Dim
	case l.RefOn:
		level = l.Ref
	}

	if level <= VolumeFloor {
		return 0
	}
	return core.DBToLinear(level)
}

// ApplyGain scales one stereo block in place by the resolved gain.
// Unity gain leaves the buffers untouched.
func ApplyGain(left, right []float64, l Levels) {
	g := l.Resolve()
	if g == 1 {
		return
	}
	vecmath.ScaleBlockInPlace(left, g)
	vecmath.ScaleBlockInPlace(right, g)
}
