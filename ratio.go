package intune

import (
	"fmt"
	"math"
)

// Ratio is a just-intonation interval as a small whole-number fraction.
// The zero value is not a valid interval; use Unison for 1/1.
type Ratio struct {
	Num, Den int
}

// Unison is the 1/1 interval.
var Unison = Ratio{1, 1}

// Apply multiplies a frequency by the interval.
func (r Ratio) Apply(hz float64) float64 {
	return hz * float64(r.Num) / float64(r.Den)
}

// Float returns the interval as a plain factor.
func (r Ratio) Float() float64 {
	return float64(r.Num) / float64(r.Den)
}

// Cents returns the size of the interval in cents (1200 per octave),
// handy for comparing a just interval against its equal-tempered
// neighbor.
func (r Ratio) Cents() float64 {
	return 1200 * math.Log2(r.Float())
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
