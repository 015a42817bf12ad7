// Package monitor implements the audio path of the monitor controller:
// a four-band Linkwitz-Riley band splitter with per-band solo routing,
// mid/side auditioning, a loudness-compensation EQ and the output gain
// stage. Coefficient updates are built off the audio thread into
// immutable snapshots and picked up at block boundaries.
package monitor

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
)

const (
	// NumCrossovers is the number of split frequencies; the splitter
	// produces NumCrossovers+1 bands.
	NumCrossovers = 3
	NumBands      = NumCrossovers + 1

	// CrossoverOrder is the Linkwitz-Riley order of every split point.
	CrossoverOrder = 4

	// MinCrossoverHz is the lowest admissible split frequency. The
	// upper bound is 0.49 of the sample rate.
	MinCrossoverHz = 20.0
)

// DefaultCrossovers returns the factory split frequencies in Hz.
func DefaultCrossovers() [NumCrossovers]float64 {
	return [NumCrossovers]float64{100, 400, 4000}
}

// Snapshot is one immutable set of per-band filter cascades. Band 0 is
// lowpass only, interior bands are a highpass/lowpass pair, and the top
// band is highpass only. Readers must not mutate the coefficient
// slices.
type Snapshot struct {
	generation uint64
	bands      [NumBands][]biquad.Coefficients
}

// Generation returns the monotonically increasing snapshot id.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Band returns the coefficient cascade for band i.
func (s *Snapshot) Band(i int) []biquad.Coefficients { return s.bands[i] }

// Topology designs and publishes band-splitter snapshots. Build runs on
// the timer context; Current may be called from the audio context.
type Topology struct {
	sampleRate float64
	cur        atomic.Pointer[Snapshot]
	gen        uint64
	lastFreqs  [NumCrossovers]float64
}

// NewTopology builds the initial snapshot at the given split
// frequencies and returns the publisher.
func NewTopology(sampleRate float64, freqs [NumCrossovers]float64) (*Topology, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("monitor: sample rate must be positive, got %v", sampleRate)
	}
	t := &Topology{sampleRate: sampleRate}
	if err := t.rebuild(freqs); err != nil {
		return nil, err
	}
	return t, nil
}

// Current returns the latest published snapshot.
func (t *Topology) Current() *Snapshot {
	return t.cur.Load()
}

// SampleRate returns the design sample rate in Hz.
func (t *Topology) SampleRate() float64 { return t.sampleRate }

// Build redesigns and publishes a new snapshot when the requested split
// frequencies differ from the last build. Identical requests are
// no-ops, so callers may invoke it every timer tick.
func (t *Topology) Build(freqs [NumCrossovers]float64) error {
	for i := range freqs {
		freqs[i] = t.clampFreq(freqs[i])
	}
	if freqs == t.lastFreqs {
		return nil
	}
	return t.rebuild(freqs)
}

func (t *Topology) rebuild(freqs [NumCrossovers]float64) error {
	for i := range freqs {
		freqs[i] = t.clampFreq(freqs[i])
	}

	var snap Snapshot
	for b := 0; b < NumBands; b++ {
		cascade, err := designBand(b, freqs, t.sampleRate)
		if err != nil {
			return err
		}
		snap.bands[b] = cascade
	}

	t.gen++
	snap.generation = t.gen
	t.lastFreqs = freqs
	t.cur.Store(&snap)
	return nil
}

// clampFreq forces a split frequency into the designable range. Out of
// range values are accepted and clamped rather than rejected, since
// they arrive from live host automation.
func (t *Topology) clampFreq(f float64) float64 {
	return core.Clamp(f, MinCrossoverHz, 0.49*t.sampleRate)
}

// designBand assembles the cascade for one band: a highpass at the
// lower split edge for every band above the first, then a lowpass at
// the upper split edge for every band below the last. Edge bands carry
// half the stages of interior bands.
func designBand(band int, freqs [NumCrossovers]float64, sampleRate float64) ([]biquad.Coefficients, error) {
	var cascade []biquad.Coefficients

	if band > 0 {
		hp := pass.LinkwitzRileyHP(freqs[band-1], CrossoverOrder, sampleRate)
		if hp == nil {
			return nil, fmt.Errorf("monitor: band %d: highpass design failed at %.1f Hz", band, freqs[band-1])
		}
		cascade = append(cascade, hp...)
	}
	if band < NumBands-1 {
		lp := pass.LinkwitzRileyLP(freqs[band], CrossoverOrder, sampleRate)
		if lp == nil {
			return nil, fmt.Errorf("monitor: band %d: lowpass design failed at %.1f Hz", band, freqs[band])
		}
		cascade = append(cascade, lp...)
	}
	return cascade, nil
}
