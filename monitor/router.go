package monitor

import (
	"github.com/cwbudde/algo-dsp/dsp/buffer"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Router replaces the program signal with the sum of the soloed bands.
// Each band runs its own filter cascade per channel over the unsplit
// input, so soloing all four bands reconstructs the (allpass-filtered)
// program rather than bypassing the splitter.
//
// With no band soloed the router leaves the buffers untouched; the
// bypass path is bit-exact.
type Router struct {
	chains  [2][NumBands]*biquad.Chain
	applied uint64

	in   *buffer.Buffer
	band *buffer.Buffer
}

// NewRouter returns a router primed with the given snapshot. Scratch
// buffers grow on demand; call Configure to presize them for the
// real-time path.
func NewRouter(snap *Snapshot) *Router {
	r := &Router{
		in:   buffer.New(0),
		band: buffer.New(0),
	}
	for ch := 0; ch < 2; ch++ {
		for b := 0; b < NumBands; b++ {
			r.chains[ch][b] = biquad.NewChain(snap.Band(b))
		}
	}
	r.applied = snap.Generation()
	return r
}

// Configure presizes the scratch buffers for blocks up to maxBlock
// frames.
func (r *Router) Configure(maxBlock int) {
	r.in.Grow(maxBlock)
	r.band.Grow(maxBlock)
}

// Apply picks up a newer coefficient snapshot. Delay-line state is
// preserved across the swap, so a split-frequency sweep stays free of
// discontinuities. Call at block start, before Process.
func (r *Router) Apply(snap *Snapshot) {
	if snap.Generation() == r.applied {
		return
	}
	for ch := 0; ch < 2; ch++ {
		for b := 0; b < NumBands; b++ {
			r.chains[ch][b].UpdateCoefficients(snap.Band(b), 1)
		}
	}
	r.applied = snap.Generation()
}

// Process runs one stereo block through the solo routing. Buffers are
// modified in place and must have equal length.
func (r *Router) Process(left, right []float64, solos [NumBands]bool) {
	any := false
	for _, s := range solos {
		if s {
			any = true
			break
		}
	}
	if !any || len(left) == 0 {
		return
	}

	r.in.Grow(len(left))
	r.band.Grow(len(left))
	r.processChannel(0, left, solos)
	r.processChannel(1, right, solos)
}

func (r *Router) processChannel(ch int, buf []float64, solos [NumBands]bool) {
	n := len(buf)
	in := r.in.Samples()[:n]
	band := r.band.Samples()[:n]
	copy(in, buf)

	for i := range buf {
		buf[i] = 0
	}
	for b := 0; b < NumBands; b++ {
		if !solos[b] {
			continue
		}
		copy(band, in)
		r.chains[ch][b].ProcessBlock(band)
		vecmath.AddBlockInPlace(buf, band)
	}
}

// Reset clears all band filter states.
func (r *Router) Reset() {
	for ch := range r.chains {
		for b := range r.chains[ch] {
			r.chains[ch][b].Reset()
		}
	}
}
