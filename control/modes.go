// Package control implements the mode-state transition rules of the
// monitor controller as a pure function. A proposed boolean parameter
// change goes in; the consistent next state and the resulting side
// effects (exclusion clears, meter reset) come out. Callers apply the
// effects to the actual parameter handles, so no callback chain ever
// re-enters the reducer.
package control

// Parameter names the reducer knows about. Names not listed here pass
// through with no structural effect beyond the meter-reset rule.
const (
	MidSolo  = "midSolo"
	SideSolo = "sideSolo"
	DimMode  = "dimMode"
	RefMode  = "refMode"
	MuteMode = "muteMode"
	VolMod   = "volModMode"
	Reset    = "lufsReset"
)

// State is the snapshot of the mutually-interacting mode flags.
type State struct {
	MidSolo  bool
	SideSolo bool
	DimMode  bool
	RefMode  bool
}

// Change is one proposed boolean parameter write.
type Change struct {
	Name  string
	Value bool
}

// Effects lists what a transition requires beyond the triggering write
// itself. Writes are additional parameter stores (exclusion clears)
// that the caller must apply and echo. ResetMeter requests a loudness
// accumulation reset.
type Effects struct {
	ResetMeter bool
	Writes     []Change
}

// Apply evaluates one change against the current state.
//
// Mutual exclusion is enforced only in the triggering direction:
// setting one member of {midSolo, sideSolo} or {dimMode, refMode}
// clears the other. Two racing external writes setting both members
// can still leave both true; that matches the original hardware
// contract and is deliberately not "fixed" here.
func Apply(s State, c Change) (State, Effects) {
	var fx Effects

	switch c.Name {
	case MidSolo:
		s.MidSolo = c.Value
		if c.Value && s.SideSolo {
			s.SideSolo = false
			fx.Writes = append(fx.Writes, Change{SideSolo, false})
		}
	case SideSolo:
		s.SideSolo = c.Value
		if c.Value && s.MidSolo {
			s.MidSolo = false
			fx.Writes = append(fx.Writes, Change{MidSolo, false})
		}
	case DimMode:
		s.DimMode = c.Value
		if c.Value && s.RefMode {
			s.RefMode = false
			fx.Writes = append(fx.Writes, Change{RefMode, false})
		}
	case RefMode:
		s.RefMode = c.Value
		if c.Value && s.DimMode {
			s.DimMode = false
			fx.Writes = append(fx.Writes, Change{DimMode, false})
		}
	}

	fx.ResetMeter = ResetsMeter(c.Name)
	return s, fx
}

// ResetsMeter reports whether a change to the named parameter
// invalidates time-weighted loudness measurements. Gain overrides
// (mute/dim/ref), the developer volume-mod toggle and the reset
// trigger itself do not; every other mode switch does, because the
// integrated and short-term values would otherwise span two different
// monitoring configurations.
func ResetsMeter(name string) bool {
	switch name {
	case MuteMode, DimMode, RefMode, VolMod, Reset:
		return false
	}
	return true
}
