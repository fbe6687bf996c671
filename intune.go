// Package intune implements the pure pitch model for a diatonic
// just-intonation performance: note and key values, the supported key
// table, rational interval arithmetic and octave folding. The stateful
// parts (the current key, tonic frequency and modulation logic) live in
// the tuner package; this package has no mutable state at all.
package intune

import (
	"errors"
	"math"
)

var (
	// ErrUnsupportedKey is returned when a key is not one of the 30
	// supported keys (15 major + 15 minor, tonics without double
	// accidentals).
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrUnsupportedNote is returned when a note cannot be interpreted in
	// the current key, a pitch number is outside 0..127, or raising or
	// lowering would exceed a double accidental.
	ErrUnsupportedNote = errors.New("unsupported note")
)

const (
	// ReferenceHz is the equal-tempered frequency of middle C, the center
	// of the canonical reference octave.
	ReferenceHz = 261.626

	// bandMargin widens the reference band downwards so that the lowest
	// diatonic tonics (around B3) still fold into the same octave as
	// middle C.
	bandMargin = 15.0
)

// FoldOctave returns f moved by whole octaves into the canonical
// reference band [ReferenceHz-bandMargin, 2*(ReferenceHz-bandMargin)).
// It is idempotent for values already in the band.
func FoldOctave(f float64) float64 {
	lo := ReferenceHz - bandMargin
	for f < lo {
		f *= 2
	}
	for f >= 2*lo {
		f /= 2
	}
	return f
}

// EqualTempered returns the 12-TET frequency of an absolute pitch
// number, A4 (pitch 69) = 440 Hz. It is not used by the just-intonation
// resolution itself; collaborators use it to compare output against
// equal temperament.
func EqualTempered(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}
