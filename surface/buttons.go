// Package surface implements the wire protocol between the monitor
// core and the hardware control surface: the fixed-point SysEx
// telemetry packet, the button/LED state messages, and the inbound
// command handling.
package surface

import (
	"sort"

	"github.com/daveee/DreamControl/param"
)

// Hardware button identifiers. These are MIDI note numbers on the
// control channel and are fixed by the hardware firmware.
const (
	ButtonLoud  = 0
	ButtonMono  = 1
	ButtonSide  = 2
	ButtonLow   = 3
	ButtonLoMid = 4
	ButtonHiMid = 5
	ButtonHigh  = 6

	ButtonMute = 18
	ButtonDim  = 19
	ButtonRef  = 20

	ButtonResetMeter = 35
	ButtonPeakLufs   = 36
	ButtonAbsRel     = 37

	ButtonVolMod         = 45
	ButtonThirdMomentary = 46
	ButtonPeakScale1dB   = 47
)

// Binding ties one hardware button to the boolean parameter it
// controls.
type Binding struct {
	ID    uint8
	Param *param.Bool
}

// ButtonMap is the two-way table between button identifiers and
// parameter handles. It is built once at construction and read-only
// afterwards, so it may be shared across goroutines without locking.
type ButtonMap struct {
	byID   map[uint8]*param.Bool
	byName map[string]uint8
	sorted []Binding
}

// NewButtonMap builds the two-way table. Later duplicate ids replace
// earlier ones.
func NewButtonMap(bindings []Binding) *ButtonMap {
	m := &ButtonMap{
		byID:   make(map[uint8]*param.Bool, len(bindings)),
		byName: make(map[string]uint8, len(bindings)),
	}
	for _, b := range bindings {
		if b.Param == nil {
			continue
		}
		m.byID[b.ID] = b.Param
		m.byName[b.Param.Name()] = b.ID
	}
	for id, p := range m.byID {
		m.sorted = append(m.sorted, Binding{ID: id, Param: p})
	}
	sort.Slice(m.sorted, func(i, j int) bool { return m.sorted[i].ID < m.sorted[j].ID })
	return m
}

// Param returns the parameter bound to the given button id.
func (m *ButtonMap) Param(id uint8) (*param.Bool, bool) {
	p, ok := m.byID[id]
	return p, ok
}

// ID returns the button id bound to the named parameter.
func (m *ButtonMap) ID(name string) (uint8, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Bindings returns all bindings in ascending button-id order. The
// returned slice is shared; callers must not modify it.
func (m *ButtonMap) Bindings() []Binding { return m.sorted }

// Len returns the number of bound buttons.
func (m *ButtonMap) Len() int { return len(m.sorted) }
