package metering

import (
	"math"
	"testing"
	"time"

	"github.com/daveee/DreamControl/param"
)

// fakeMeter is a scripted measurement unit.
type fakeMeter struct {
	short, momentary, integrated float64
	samples                      int
	resets                       int
}

func (f *fakeMeter) ProcessSample(frame []float64) { f.samples++ }
func (f *fakeMeter) Momentary() float64            { return f.momentary }
func (f *fakeMeter) ShortTerm() float64            { return f.short }
func (f *fakeMeter) Integrated() float64           { return f.integrated }
func (f *fakeMeter) Reset()                        { f.resets++ }

// blockingMeter signals entry into Integrated and then stalls until
// released, standing in for a gated-loudness readout whose cost grows
// with session length.
type blockingMeter struct {
	fakeMeter
	entered chan struct{}
	release chan struct{}
}

func (b *blockingMeter) Integrated() float64 {
	close(b.entered)
	<-b.release
	return b.fakeMeter.integrated
}

func testOutputs() Outputs {
	return Outputs{
		Short:      param.NewFloat("lufsShort", "LUFS Short", LoudnessFloor, 0, 0),
		Momentary:  param.NewFloat("lufsMomentary", "LUFS Momentary", LoudnessFloor, 0, 0),
		Integrated: param.NewFloat("lufsIntegrated", "LUFS Integrated", LoudnessFloor, 0, 0),
		RangeMin:   param.NewFloat("lufsRangeMin", "LUFS Range Min", LoudnessFloor, 0, 0),
		RangeMax:   param.NewFloat("lufsRangeMax", "LUFS Range Max", LoudnessFloor, 0, 0),
		PeakL:      param.NewFloat("peakMeterL", "True Peak L", TruePeakFloor, TruePeakCeiling, 0),
		PeakR:      param.NewFloat("peakMeterR", "True Peak R", TruePeakFloor, TruePeakCeiling, 0),
		HeldPeakL:  param.NewFloat("peakMeterMaxL", "Max Peak L", TruePeakFloor, TruePeakCeiling, 0),
		HeldPeakR:  param.NewFloat("peakMeterMaxR", "Max Peak R", TruePeakFloor, TruePeakCeiling, 0),
		ClipL:      param.NewBool("clipMeterL", "Clip L", false),
		ClipR:      param.NewBool("clipMeterR", "Clip R", false),
	}
}

// TestAdapter_FeedReachesMeter verifies every frame of a stereo block
// reaches the measurement unit on the following tick.
func TestAdapter_FeedReachesMeter(t *testing.T) {
	fm := &fakeMeter{}
	a := NewAdapter(fm, testOutputs(), 10*time.Millisecond)

	block := make([]float64, 256)
	a.Feed(block, block)
	a.Tick(0)
	if fm.samples != 256 {
		t.Errorf("samples = %d, want 256", fm.samples)
	}
}

// TestAdapter_FeedDoesNotWaitOnReadout verifies the audio-side hand-off
// completes while a slow meter readout is in progress on the timer
// side.
func TestAdapter_FeedDoesNotWaitOnReadout(t *testing.T) {
	bm := &blockingMeter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	a := NewAdapter(bm, testOutputs(), 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		a.Tick(0)
		close(done)
	}()

	<-bm.entered
	block := make([]float64, 256)
	start := time.Now()
	a.Feed(block, block)
	elapsed := time.Since(start)

	close(bm.release)
	<-done

	if elapsed > 5*time.Millisecond {
		t.Errorf("Feed took %v while a readout was in progress", elapsed)
	}
}

// TestAdapter_OverflowDropsFrames verifies a stalled timer drops
// frames instead of backing up into the audio context, and the count
// handed to the unit caps at the ring capacity.
func TestAdapter_OverflowDropsFrames(t *testing.T) {
	fm := &fakeMeter{}
	a := NewAdapter(fm, testOutputs(), 10*time.Millisecond)

	block := make([]float64, 4096)
	for i := 0; i < ringFrames/4096+2; i++ {
		a.Feed(block, block)
	}
	a.Tick(0)
	if fm.samples != ringFrames {
		t.Errorf("samples = %d, want ring capacity %d", fm.samples, ringFrames)
	}
}

// TestAdapter_NormalizationBounds verifies the floor maps to
// normalized 0, 0 dB maps to 1, and values beyond the floor clamp.
func TestAdapter_NormalizationBounds(t *testing.T) {
	tests := []struct {
		name  string
		short float64
		want  float64
	}{
		{"at floor", LoudnessFloor, 0},
		{"at zero", 0, 1},
		{"beyond floor clamps", -90, 0},
		{"midpoint", -32, 0.5},
	}
	for _, tt := range tests {
		fm := &fakeMeter{short: tt.short, momentary: tt.short, integrated: tt.short}
		out := testOutputs()
		a := NewAdapter(fm, out, 10*time.Millisecond)

		a.Tick(0)
		if got := out.Short.Normalized(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: normalized = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestAdapter_PeakConversion verifies the per-tick linear peak comes
// back as dBTP on the parameter and as an offset value in the readout.
func TestAdapter_PeakConversion(t *testing.T) {
	fm := &fakeMeter{}
	out := testOutputs()
	a := NewAdapter(fm, out, 10*time.Millisecond)

	// Left peaks at full scale (0 dBTP), right at half (about -6 dBTP).
	left := make([]float64, 64)
	right := make([]float64, 64)
	left[10] = 1.0
	right[20] = 0.5
	a.Feed(left, right)

	r := a.Tick(0)
	if math.Abs(r.Peak[0]-(-TruePeakCeiling)) > 1e-9 {
		t.Errorf("offset peak L = %v, want %v", r.Peak[0], -TruePeakCeiling)
	}
	if got := out.PeakL.Value(); math.Abs(got) > 1e-9 {
		t.Errorf("param peak L = %v, want 0 dBTP", got)
	}
	wantR := 20 * math.Log10(0.5)
	if got := out.PeakR.Value(); math.Abs(got-wantR) > 1e-9 {
		t.Errorf("param peak R = %v, want %v", got, wantR)
	}

	// Peak capture is per tick: with no new audio the next tick reads
	// silence, which clamps to the parameter floor.
	r = a.Tick(0)
	if !math.IsInf(r.Peak[0], -1) {
		t.Errorf("second tick offset peak = %v, want -Inf", r.Peak[0])
	}
	if got := out.PeakL.Value(); got != TruePeakFloor {
		t.Errorf("second tick param peak = %v, want floor %v", got, TruePeakFloor)
	}
}

// TestAdapter_ClipFlags verifies samples above full scale raise the
// clip parameters.
func TestAdapter_ClipFlags(t *testing.T) {
	fm := &fakeMeter{}
	out := testOutputs()
	a := NewAdapter(fm, out, 10*time.Millisecond)

	left := []float64{0.0, 1.1, 0.0}
	right := []float64{0.2, 0.0, 0.0}
	a.Feed(left, right)

	r := a.Tick(5)
	if !r.Clip[0] || r.Clip[1] {
		t.Errorf("clip = %v, want [true false]", r.Clip)
	}
	if !out.ClipL.Value() || out.ClipR.Value() {
		t.Errorf("clip params = [%v %v], want [true false]", out.ClipL.Value(), out.ClipR.Value())
	}
}

// TestAdapter_LoudnessRange verifies range min/max track short-term
// loudness above the absolute gate and survive quiet passages.
func TestAdapter_LoudnessRange(t *testing.T) {
	fm := &fakeMeter{short: -30}
	a := NewAdapter(fm, testOutputs(), 10*time.Millisecond)

	a.Tick(0)
	fm.short = -20
	a.Tick(0)
	fm.short = -120 // below the gate: ignored
	a.Tick(0)
	fm.short = -25
	r := a.Tick(0)

	if r.RangeMin != -30 || r.RangeMax != -20 {
		t.Errorf("range = [%v %v], want [-30 -20]", r.RangeMin, r.RangeMax)
	}
}

// TestAdapter_ResetIsEdgeTriggered verifies one request produces
// exactly one reset of the measurement unit, clears range and hold
// state, and discards frames buffered before the reset.
func TestAdapter_ResetIsEdgeTriggered(t *testing.T) {
	fm := &fakeMeter{short: -30}
	a := NewAdapter(fm, testOutputs(), 10*time.Millisecond)

	block := make([]float64, 32)
	a.Feed(block, block)
	a.Tick(0)
	if fm.samples != 32 {
		t.Fatalf("samples before reset = %d, want 32", fm.samples)
	}

	a.Feed(block, block)
	a.RequestReset()
	r := a.Tick(0)
	if fm.resets != 1 {
		t.Fatalf("resets = %d, want 1", fm.resets)
	}
	if fm.samples != 32 {
		t.Errorf("samples after reset = %d, want 32 (pre-reset frames discarded)", fm.samples)
	}
	if !math.IsInf(r.RangeMin, -1) {
		t.Errorf("range min after reset = %v, want -Inf until regated", r.RangeMin)
	}

	a.Tick(0)
	if fm.resets != 1 {
		t.Errorf("resets after further ticks = %d, want still 1", fm.resets)
	}
}
