package surface

import "math"

// SysEx command codes following the 3-byte manufacturer id.
const (
	CmdMeterData   = 0x01
	CmdSyncButtons = 0x02
)

// manufacturerID is the registered SysEx vendor prefix of the
// hardware.
var manufacturerID = [3]byte{0x00, 0x21, 0x69}

// MeterFrame carries one tick's worth of meter values, in the dB-like
// units the hardware displays. Peak values are in the headroom-offset
// domain (dBTP minus the +3 dB meter ceiling), matching the display
// firmware's convention.
type MeterFrame struct {
	Short      float64
	Momentary  float64
	Integrated float64
	RangeMin   float64
	RangeMax   float64
	Target     float64
	PeakL      float64
	PeakR      float64
	HeldL      float64
	HeldR      float64
	ClipL      bool
	ClipR      bool
}

// Encode packs the frame into the meter-data SysEx body: manufacturer
// id, command code, twelve integral/fractional byte pairs (short,
// momentary, integrated, range min, range max, range span, target,
// peak L/R, held peak L/R, held peak max) and two clip flag bytes.
//
// The two-digit display hardware cannot show magnitudes beyond 99, so
// each value is clamped to the 0..99 range per component and the sign
// is dropped; all transmitted quantities are negative-or-zero by
// convention. This clamping is a firm wire-compatibility constraint.
func (f MeterFrame) Encode() []byte {
	heldMax := f.HeldL
	if f.HeldR > heldMax {
		heldMax = f.HeldR
	}

	values := [12]float64{
		f.Short, f.Momentary, f.Integrated,
		f.RangeMin, f.RangeMax, f.RangeMax - f.RangeMin,
		f.Target,
		f.PeakL, f.PeakR,
		f.HeldL, f.HeldR, heldMax,
	}

	out := make([]byte, 0, 4+2*len(values)+2)
	out = append(out, manufacturerID[0], manufacturerID[1], manufacturerID[2], CmdMeterData)
	for _, v := range values {
		i, frac := encodePair(v)
		out = append(out, i, frac)
	}
	out = append(out, flagByte(f.ClipL), flagByte(f.ClipR))
	return out
}

// encodePair splits a dB value into magnitude-clamped integral and
// fractional display bytes: integral = |trunc(v)| capped at 99,
// fractional = round(|frac(v)|*100) capped at 99. Non-finite values
// pin to the display extremes.
func encodePair(v float64) (integral, fractional byte) {
	if math.IsNaN(v) {
		return 0, 0
	}
	if math.IsInf(v, 0) {
		return 99, 0
	}

	ip, fp := math.Modf(v)
	i := math.Abs(ip)
	fr := math.Abs(math.Round(fp * 100))
	if i > 99 {
		i = 99
	}
	if fr > 99 {
		fr = 99
	}
	return byte(i), byte(fr)
}

func flagByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
