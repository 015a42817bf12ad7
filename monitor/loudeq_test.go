package monitor

import (
	"testing"

	"github.com/daveee/DreamControl/internal/testutil"
)

// TestNewLoudnessEQ_StageCount verifies stages above Nyquist are
// dropped instead of muting the cascade.
func TestNewLoudnessEQ_StageCount(t *testing.T) {
	tests := []struct {
		sr   float64
		want int
	}{
		{96000, 7},
		{48000, 7},
		{44100, 7},
		{32000, 6}, // 20 kHz stage is above the 16 kHz Nyquist
	}
	for _, tt := range tests {
		eq := NewLoudnessEQ(tt.sr)
		if got := eq.Chain(0).NumSections(); got != tt.want {
			t.Errorf("sr %.0f: %d sections, want %d", tt.sr, got, tt.want)
		}
	}
}

// TestLoudnessEQ_ResponseShape spot-checks the correction curve: boost
// around the presence dip of the ear, cuts at the harsh regions.
func TestLoudnessEQ_ResponseShape(t *testing.T) {
	sr := 96000.0
	eq := NewLoudnessEQ(sr)
	chain := eq.Chain(0)

	tests := []struct {
		freq float64
		sign float64
	}{
		{20, -1},
		{1130, 1},
		{1490, -1},
		{3290, 1},
		{8850, -1},
	}
	for _, tt := range tests {
		mag := chain.MagnitudeDB(tt.freq, sr)
		if mag*tt.sign <= 0 {
			t.Errorf("at %.0f Hz: %.2f dB, want sign %v", tt.freq, mag, tt.sign)
		}
	}
}

// TestLoudnessEQ_ProcessIsFiniteAndStereoSymmetric verifies both
// channel cascades are independent but identically designed.
func TestLoudnessEQ_ProcessIsFiniteAndStereoSymmetric(t *testing.T) {
	eq := NewLoudnessEQ(48000)

	sig := testutil.DeterministicNoise(3, 0.5, 2048)
	left, right := testutil.StereoPair(sig)

	eq.Process(left, right)

	testutil.RequireFinite(t, left)
	for i := range left {
		if left[i] != right[i] {
			t.Fatalf("sample %d: channels diverged on identical input", i)
		}
	}
	if diff, err := testutil.MaxAbsDiff(left, sig); err != nil || diff == 0 {
		t.Errorf("EQ left the signal unmodified (diff %v, err %v)", diff, err)
	}
}

// TestLoudnessEQ_Reset verifies cleared state reproduces the first
// block exactly.
func TestLoudnessEQ_Reset(t *testing.T) {
	eq := NewLoudnessEQ(48000)
	sig := testutil.DeterministicSine(440, 48000, 0.5, 1024)

	first, firstR := testutil.StereoPair(sig)
	eq.Process(first, firstR)

	eq.Reset()

	second, secondR := testutil.StereoPair(sig)
	eq.Process(second, secondR)

	if diff, _ := testutil.MaxAbsDiff(first, second); diff != 0 {
		t.Errorf("post-reset output differs by %v", diff)
	}
}
