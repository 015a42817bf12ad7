// Package testutil provides deterministic test signals and float-slice
// assertions for the audio-path and engine tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns a sine burst with a phase of zero at the
// first sample, so repeated runs and channel pairs are bit-identical.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise returns seeded uniform noise in [-amplitude,
// amplitude]. Broadband content exercises all four crossover bands at
// once.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse returns a unit impulse at pos, the canonical probe for
// filter state and peak-meter behaviour.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// StereoPair duplicates one generated signal into two independent
// channel buffers, for feeding in-place stereo processors without the
// channels aliasing each other.
func StereoPair(src []float64) (left, right []float64) {
	left = append([]float64(nil), src...)
	right = append([]float64(nil), src...)
	return left, right
}
