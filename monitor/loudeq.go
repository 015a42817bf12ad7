package monitor

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// loudnessStages are the fixed peaking-EQ corrections applied in loud
// mode: an inverse equal-loudness contour voiced for low playback
// levels. Frequencies in Hz, gains in dB.
var loudnessStages = [...]struct {
	freq, gainDB, q float64
}{
	{20, -38.9, 4.45},
	{1130, 3.85, 0.65},
	{1490, -8.15, 2.20},
	{3290, 6.55, 0.59},
	{8850, -12.88, 1.78},
	{12300, 5.44, 4.50},
	{20000, -10.50, 3.50},
}

// LoudnessEQ is the loud-mode correction filter, one peaking cascade
// per channel. The curve is fixed; only the sample rate varies.
type LoudnessEQ struct {
	chains [2]*biquad.Chain
}

// NewLoudnessEQ designs the correction cascade at the given sample
// rate. Stages at or above the Nyquist frequency are dropped; the
// design routine would otherwise hand back a muting section.
func NewLoudnessEQ(sampleRate float64) *LoudnessEQ {
	coeffs := make([]biquad.Coefficients, 0, len(loudnessStages))
	for _, s := range loudnessStages {
		if s.freq >= sampleRate/2 {
			continue
		}
		coeffs = append(coeffs, design.Peak(s.freq, s.gainDB, s.q, sampleRate))
	}

	e := &LoudnessEQ{}
	for ch := range e.chains {
		e.chains[ch] = biquad.NewChain(coeffs)
	}
	return e
}

// Process filters one stereo block in place.
func (e *LoudnessEQ) Process(left, right []float64) {
	e.chains[0].ProcessBlock(left)
	e.chains[1].ProcessBlock(right)
}

// Chain returns the cascade of one channel for response inspection.
func (e *LoudnessEQ) Chain(ch int) *biquad.Chain { return e.chains[ch] }

// Reset clears both channels' filter state.
func (e *LoudnessEQ) Reset() {
	for _, c := range e.chains {
		c.Reset()
	}
}
