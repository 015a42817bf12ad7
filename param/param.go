// Package param provides the parameter handles shared between the host
// shell and the monitor core. Each parameter is a single named scalar
// with atomic load/store semantics, so the audio, timer and hardware
// input contexts can read and write it without locks. Multi-field
// consistency across parameters is the caller's concern.
package param

import (
	"math"
	"sync/atomic"
)

// ChangeFunc is invoked after a notifying write. The callback runs on
// the writer's goroutine; it must not block.
type ChangeFunc func(name string, value float64)

// BoolChangeFunc is invoked after a notifying write to a Bool.
type BoolChangeFunc func(name string, value bool)

// Float is a bounded scalar parameter. The stored value is always
// clamped into [Min, Max].
type Float struct {
	name     string
	label    string
	min, max float64
	bits     atomic.Uint64
	onChange ChangeFunc
}

// NewFloat returns a Float parameter with the given bounds and default.
// The default is clamped into the range.
func NewFloat(name, label string, min, max, def float64) *Float {
	if min > max {
		min, max = max, min
	}
	f := &Float{name: name, label: label, min: min, max: max}
	f.bits.Store(math.Float64bits(clamp(def, min, max)))
	return f
}

// Name returns the parameter identifier.
func (f *Float) Name() string { return f.name }

// Label returns the human-readable parameter name.
func (f *Float) Label() string { return f.label }

// Min returns the lower bound.
func (f *Float) Min() float64 { return f.min }

// Max returns the upper bound.
func (f *Float) Max() float64 { return f.max }

// Value returns the current value.
func (f *Float) Value() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Set clamps v into range, stores it, and fires the change callback.
func (f *Float) Set(v float64) {
	v = clamp(v, f.min, f.max)
	f.bits.Store(math.Float64bits(v))
	if f.onChange != nil {
		f.onChange(f.name, v)
	}
}

// Store writes the value without firing the change callback. Used when
// the core mirrors externally-computed state and notification would
// re-enter the write path.
func (f *Float) Store(v float64) {
	f.bits.Store(math.Float64bits(clamp(v, f.min, f.max)))
}

// Normalized returns the current value mapped onto [0, 1] over the
// parameter range.
func (f *Float) Normalized() float64 {
	if f.max == f.min {
		return 0
	}
	return (f.Value() - f.min) / (f.max - f.min)
}

// SetNormalized maps n from [0, 1] onto the parameter range and stores
// it with notification.
func (f *Float) SetNormalized(n float64) {
	f.Set(f.min + clamp(n, 0, 1)*(f.max-f.min))
}

// StoreNormalized maps n from [0, 1] onto the parameter range and
// stores it without notification.
func (f *Float) StoreNormalized(n float64) {
	f.Store(f.min + clamp(n, 0, 1)*(f.max-f.min))
}

// OnChange registers the change callback. Must be called during setup,
// before concurrent access begins.
func (f *Float) OnChange(fn ChangeFunc) { f.onChange = fn }

// Bool is a boolean parameter.
type Bool struct {
	name     string
	label    string
	val      atomic.Bool
	onChange BoolChangeFunc
}

// NewBool returns a Bool parameter with the given default.
func NewBool(name, label string, def bool) *Bool {
	b := &Bool{name: name, label: label}
	b.val.Store(def)
	return b
}

// Name returns the parameter identifier.
func (b *Bool) Name() string { return b.name }

// Label returns the human-readable parameter name.
func (b *Bool) Label() string { return b.label }

// Value returns the current value.
func (b *Bool) Value() bool { return b.val.Load() }

// Set stores v and fires the change callback, regardless of whether the
// value actually changed. This mirrors host automation semantics where
// every write is observable.
func (b *Bool) Set(v bool) {
	b.val.Store(v)
	if b.onChange != nil {
		b.onChange(b.name, v)
	}
}

// Toggle inverts the value with notification and returns the new value.
func (b *Bool) Toggle() bool {
	v := !b.val.Load()
	b.Set(v)
	return v
}

// Store writes the value without firing the change callback.
func (b *Bool) Store(v bool) { b.val.Store(v) }

// OnChange registers the change callback. Must be called during setup,
// before concurrent access begins.
func (b *Bool) OnChange(fn BoolChangeFunc) { b.onChange = fn }

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
