package monitor

import (
	"testing"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/daveee/DreamControl/internal/testutil"
)

func newTestRouter(t *testing.T, sr float64) (*Topology, *Router) {
	t.Helper()
	topo, err := NewTopology(sr, DefaultCrossovers())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRouter(topo.Current())
	r.Configure(1024)
	return topo, r
}

// TestRouter_NoSoloIsBitExact verifies the bypass path leaves the
// buffers completely untouched.
func TestRouter_NoSoloIsBitExact(t *testing.T) {
	_, r := newTestRouter(t, 48000)

	left := testutil.DeterministicNoise(1, 0.8, 512)
	right := testutil.DeterministicNoise(2, 0.8, 512)
	wantL := append([]float64(nil), left...)
	wantR := append([]float64(nil), right...)

	r.Process(left, right, [NumBands]bool{})

	for i := range left {
		if left[i] != wantL[i] || right[i] != wantR[i] {
			t.Fatalf("sample %d modified on bypass", i)
		}
	}
}

// TestRouter_BandSoloSelects verifies a low-band solo passes a low
// sine and a top-band solo rejects it.
func TestRouter_BandSoloSelects(t *testing.T) {
	sr := 48000.0
	sine := testutil.DeterministicSine(50, sr, 1.0, 4096)

	_, low := newTestRouter(t, sr)
	l, rr := testutil.StereoPair(sine)
	low.Process(l, rr, [NumBands]bool{0: true})

	// Ignore the first half to let the filters settle.
	if peak := vecmath.MaxAbs(l[2048:]); peak < 0.7 {
		t.Errorf("band 0 solo: 50 Hz peak = %v, want near unity", peak)
	}

	_, top := newTestRouter(t, sr)
	l, rr = testutil.StereoPair(sine)
	top.Process(l, rr, [NumBands]bool{3: true})

	if peak := vecmath.MaxAbs(l[2048:]); peak > 1e-3 {
		t.Errorf("band 3 solo: 50 Hz peak = %v, want rejected", peak)
	}
}

// TestRouter_SumOfSolosMatchesIndividual verifies soloing two bands
// yields the sample-wise sum of soloing each alone.
func TestRouter_SumOfSolosMatchesIndividual(t *testing.T) {
	sr := 48000.0
	input := testutil.DeterministicNoise(7, 0.5, 1024)

	process := func(solos [NumBands]bool) []float64 {
		_, r := newTestRouter(t, sr)
		l, rr := testutil.StereoPair(input)
		r.Process(l, rr, solos)
		return l
	}

	a := process([NumBands]bool{1: true})
	b := process([NumBands]bool{2: true})
	both := process([NumBands]bool{1: true, 2: true})

	want := make([]float64, len(a))
	copy(want, a)
	vecmath.AddBlockInPlace(want, b)
	testutil.RequireSliceNearlyEqual(t, both, want, 1e-12)
}

// TestRouter_ApplyPreservesState verifies a coefficient swap does not
// reset the delay lines: output continues without a hard step.
func TestRouter_ApplyPreservesState(t *testing.T) {
	sr := 48000.0
	topo, r := newTestRouter(t, sr)
	sine := testutil.DeterministicSine(50, sr, 1.0, 2048)
	solos := [NumBands]bool{0: true}

	l, rr := testutil.StereoPair(sine)
	r.Process(l, rr, solos)

	if err := topo.Build([NumCrossovers]float64{110, 400, 4000}); err != nil {
		t.Fatal(err)
	}
	r.Apply(topo.Current())

	l2, r2 := testutil.StereoPair(sine)
	r.Process(l2, r2, solos)

	// A 50 Hz tone through a 110 Hz lowpass stays near unity; a state
	// reset would produce a transient overshooting the steady response.
	testutil.RequireFinite(t, l2)
	if peak := vecmath.MaxAbs(l2); peak > 1.2 {
		t.Errorf("post-swap peak = %v, state discontinuity suspected", peak)
	}
}
