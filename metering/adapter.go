// Package metering adapts the external loudness measurement unit to
// the monitor core: it collects audio blocks on the real-time path,
// runs the unit on the timer cadence, tracks loudness range and held
// peaks, and mirrors everything into the host-visible parameters.
package metering

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/daveee/DreamControl/param"
)

// Display bounds in dB. The loudness meters bottom out at -64 LUFS;
// the true-peak meters span -125 to +3 dBTP. Wire values for peaks
// travel offset by the ceiling so that 0 dBTP reads as -3.
const (
	LoudnessFloor   = -64.0
	TruePeakFloor   = -125.0
	TruePeakCeiling = 3.0

	// absoluteGate is the R128 absolute threshold below which
	// short-term readings do not enter the loudness-range tracking.
	absoluteGate = -70.0
)

// ringFrames is the capacity of the sample hand-off ring, roughly two
// thirds of a second at 48 kHz. A timer stall beyond that drops frames
// from the meters; it never delays the audio context.
const ringFrames = 1 << 15

// Meter is the narrow contract the adapter needs from the external
// measurement unit. *loudness.Meter from algo-dsp satisfies it.
type Meter interface {
	ProcessSample(frame []float64)
	Momentary() float64
	ShortTerm() float64
	Integrated() float64
	Reset()
}

// Outputs collects the host parameters the adapter writes each tick.
// Any nil handle is skipped.
type Outputs struct {
	Short      *param.Float
	Momentary  *param.Float
	Integrated *param.Float
	RangeMin   *param.Float
	RangeMax   *param.Float
	PeakL      *param.Float
	PeakR      *param.Float
	HeldPeakL  *param.Float
	HeldPeakR  *param.Float
	ClipL      *param.Bool
	ClipR      *param.Bool
}

// Readout is the tick-side snapshot handed to the telemetry encoder.
// Loudness values are raw LUFS (unclamped, possibly -Inf); peak values
// are in the headroom-offset domain.
type Readout struct {
	Short      float64
	Momentary  float64
	Integrated float64
	RangeMin   float64
	RangeMax   float64
	Peak       [2]float64
	Held       [2]float64
	Clip       [2]bool
}

// Adapter mediates between the audio context (Feed), the timer context
// (Tick) and asynchronous reset requests. Feed and Tick share no lock:
// the audio context publishes samples through a fixed-size
// single-producer ring and everything that touches the measurement
// unit happens on the timer side, so a meter readout of any cost can
// never stall the audio path.
type Adapter struct {
	meter Meter
	out   Outputs
	hold  *PeakHold

	ring    sampleRing
	scratch [2][]float64
	frame   [2]float64

	haveRange          bool
	rangeMin, rangeMax float64

	resetPending atomic.Bool
	tickMS       float64
}

// NewAdapter returns an Adapter over the given measurement unit.
func NewAdapter(meter Meter, out Outputs, tickPeriod time.Duration) *Adapter {
	a := &Adapter{
		meter:  meter,
		out:    out,
		hold:   NewPeakHold(),
		tickMS: float64(tickPeriod) / float64(time.Millisecond),
	}
	a.ring.buf = make([]float64, 2*ringFrames)
	a.scratch[0] = make([]float64, ringFrames)
	a.scratch[1] = make([]float64, ringFrames)
	return a
}

// Feed publishes one stereo block to the timer side. Called from the
// audio context, pre-gain; it writes the ring and returns, with no
// lock to contend on. Frames beyond the ring capacity are dropped.
func (a *Adapter) Feed(left, right []float64) {
	a.ring.push(left, right)
}

// RequestReset marks the measurement state for clearing on the next
// tick. Safe to call from any context.
func (a *Adapter) RequestReset() {
	a.resetPending.Store(true)
}

// Tick performs one timer cycle: applies a pending reset, drains the
// sample ring into the measurement unit, reads the unit, updates
// loudness range and peak hold, writes the host parameters and returns
// the snapshot for telemetry.
func (a *Adapter) Tick(holdSeconds float64) Readout {
	if a.resetPending.Swap(false) {
		a.meter.Reset()
		a.hold.Reset()
		a.haveRange = false
		a.ring.discard()
	}

	n := a.ring.drain(a.scratch[0], a.scratch[1])
	for i := 0; i < n; i++ {
		a.frame[0] = a.scratch[0][i]
		a.frame[1] = a.scratch[1][i]
		a.meter.ProcessSample(a.frame[:])
	}

	var r Readout
	r.Short = a.meter.ShortTerm()
	r.Momentary = a.meter.Momentary()
	r.Integrated = a.meter.Integrated()

	if r.Short > absoluteGate {
		if !a.haveRange {
			a.haveRange = true
			a.rangeMin, a.rangeMax = r.Short, r.Short
		} else {
			a.rangeMin = math.Min(a.rangeMin, r.Short)
			a.rangeMax = math.Max(a.rangeMax, r.Short)
		}
	}
	if a.haveRange {
		r.RangeMin, r.RangeMax = a.rangeMin, a.rangeMax
	} else {
		r.RangeMin, r.RangeMax = math.Inf(-1), math.Inf(-1)
	}

	var peak [2]float64
	if n > 0 {
		peak[0] = vecmath.MaxAbs(a.scratch[0][:n])
		peak[1] = vecmath.MaxAbs(a.scratch[1][:n])
	}
	for ch := range peak {
		r.Peak[ch] = core.LinearToDB(peak[ch]) - TruePeakCeiling
	}

	res := a.hold.Update(r.Peak, holdSeconds, a.tickMS)
	r.Held = res.Held
	r.Clip = res.Clip

	a.publish(r)
	return r
}

// publish mirrors the readout into the host parameters. Loudness
// parameters clamp to their -64..0 range; peak parameters take the
// un-offset dBTP value so their normalized position matches the
// hardware scale.
func (a *Adapter) publish(r Readout) {
	setF(a.out.Short, r.Short)
	setF(a.out.Momentary, r.Momentary)
	setF(a.out.Integrated, r.Integrated)
	setF(a.out.RangeMin, r.RangeMin)
	setF(a.out.RangeMax, r.RangeMax)
	setF(a.out.PeakL, r.Peak[0]+TruePeakCeiling)
	setF(a.out.PeakR, r.Peak[1]+TruePeakCeiling)
	setF(a.out.HeldPeakL, r.Held[0]+TruePeakCeiling)
	setF(a.out.HeldPeakR, r.Held[1]+TruePeakCeiling)
	setB(a.out.ClipL, r.Clip[0])
	setB(a.out.ClipR, r.Clip[1])
}

func setF(p *param.Float, v float64) {
	if p != nil {
		p.Set(v)
	}
}

func setB(p *param.Bool, v bool) {
	if p != nil {
		p.Set(v)
	}
}

// sampleRing is a wait-free single-producer/single-consumer hand-off
// for interleaved stereo frames. Indices grow monotonically; the
// buffer length is a power of two, so masking maps them onto slots.
// The producer stores head only after the slot writes and the consumer
// stores tail only after the slot reads, so each side observes
// complete frames.
type sampleRing struct {
	buf  []float64
	head atomic.Uint64
	tail atomic.Uint64
}

// push appends as many frames as fit and drops the rest.
func (r *sampleRing) push(left, right []float64) {
	h := r.head.Load()
	free := uint64(len(r.buf)) - (h - r.tail.Load())
	n := uint64(len(left))
	if lim := free / 2; n > lim {
		n = lim
	}
	mask := uint64(len(r.buf)) - 1
	for i := uint64(0); i < n; i++ {
		r.buf[h&mask] = left[i]
		r.buf[(h+1)&mask] = right[i]
		h += 2
	}
	r.head.Store(h)
}

// drain deinterleaves every published frame into the per-channel
// destinations and returns the frame count.
func (r *sampleRing) drain(left, right []float64) int {
	t := r.tail.Load()
	h := r.head.Load()
	mask := uint64(len(r.buf)) - 1
	n := 0
	for ; t != h; t += 2 {
		left[n] = r.buf[t&mask]
		right[n] = r.buf[(t+1)&mask]
		n++
	}
	r.tail.Store(t)
	return n
}

// discard forgets everything currently buffered.
func (r *sampleRing) discard() {
	r.tail.Store(r.head.Load())
}
