package monitor

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// ApplyMid replaces both channels with the mid signal (L+R)/2, in
// place. Used to audition mono compatibility.
func ApplyMid(left, right []float64) {
	vecmath.AddBlockInPlace(left, right)
	vecmath.ScaleBlockInPlace(left, 0.5)
	copy(right, left)
}

// ApplySide replaces both channels with the side signal R-L, in place.
// The difference is not halved; this matches the level convention of
// the hardware's side-audition mode.
func ApplySide(left, right []float64) {
	for i := range left {
		s := right[i] - left[i]
		left[i] = s
		right[i] = s
	}
}
