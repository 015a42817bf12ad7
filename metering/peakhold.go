package metering

// PeakHold keeps the decaying/held per-channel maximum shown on the
// hardware peak meters. Values are in the headroom-offset dB domain
// (dBTP minus the meter ceiling), the same domain the telemetry packet
// carries.
//
// The hold window is shared between channels: one elapsed-time counter
// covers both, so a louder peak on either channel restarts neither; a
// new maximum on a channel replaces that channel's held value
// immediately, and expiry of the window releases both channels to
// their current instantaneous values.
type PeakHold struct {
	held      [2]float64
	elapsedMS float64
}

// HoldResult is the outcome of one tick update.
type HoldResult struct {
	Held [2]float64
	Clip [2]bool
}

// NewPeakHold returns a tracker with both channels at the meter floor.
func NewPeakHold() *PeakHold {
	h := &PeakHold{}
	h.Reset()
	return h
}

// Update advances the tracker by one timer tick.
//
// With a zero hold duration the held value always follows the
// instantaneous peak. Otherwise a channel's held value is replaced
// when the instantaneous peak exceeds it or when the hold window has
// expired. Clip flags follow the instantaneous peak against the
// 0 dBFS-equivalent threshold regardless of holding. Elapsed time
// accumulates by the tick period only while holding is active.
func (h *PeakHold) Update(inst [2]float64, holdSeconds, tickMS float64) HoldResult {
	expired := holdSeconds == 0 || h.elapsedMS >= holdSeconds*1000

	var res HoldResult
	for ch := range h.held {
		if expired || inst[ch] > h.held[ch] {
			h.held[ch] = inst[ch]
		}
		res.Held[ch] = h.held[ch]
		res.Clip[ch] = inst[ch]+TruePeakCeiling > 0
	}

	if expired {
		h.elapsedMS = 0
	}
	if holdSeconds > 0 {
		h.elapsedMS += tickMS
	}
	return res
}

// Reset drops both held values to the meter floor and restarts the
// hold window.
func (h *PeakHold) Reset() {
	floor := TruePeakFloor - TruePeakCeiling
	h.held = [2]float64{floor, floor}
	h.elapsedMS = 0
}
