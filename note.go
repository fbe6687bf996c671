package intune

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// PitchClass is one of the seven note letters, cyclically ordered so
	// that scale-degree arithmetic works modulo 7.
	PitchClass int

	// Accidental is a chromatic alteration of a pitch class, one half-step
	// per step. DoubleFlat and DoubleSharp are the hard bounds; there is
	// no triple accidental.
	Accidental int

	// Note is a pitch class with an accidental and an octave index.
	// Octave 0 is the octave of middle C; each step up doubles the
	// frequency. Two notes name the same scale position when their class
	// and accidental agree, regardless of octave.
	Note struct {
		Class      PitchClass
		Accidental Accidental
		Octave     int
	}
)

const (
	C PitchClass = iota
	D
	E
	F
	G
	A
	B
)

const (
	DoubleFlat Accidental = iota - 2
	Flat
	Natural
	Sharp
	DoubleSharp
)

// classSemitones is the semitone offset of each natural pitch class from C.
var classSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

var classNames = [7]string{"C", "D", "E", "F", "G", "A", "B"}

func (c PitchClass) String() string {
	if c < C || c > B {
		return fmt.Sprintf("PitchClass(%d)", int(c))
	}
	return classNames[c]
}

// Add returns the pitch class n scale steps above c, wrapping around.
func (c PitchClass) Add(n int) PitchClass {
	return PitchClass(((int(c)+n)%7 + 7) % 7)
}

func (a Accidental) String() string {
	switch a {
	case DoubleFlat:
		return "bb"
	case Flat:
		return "b"
	case Natural:
		return ""
	case Sharp:
		return "#"
	case DoubleSharp:
		return "x"
	}
	return fmt.Sprintf("Accidental(%d)", int(a))
}

// Raised returns the note one half-step higher, by accidental only; the
// pitch class and octave never change. Raising a double sharp fails.
func (n Note) Raised() (Note, error) {
	if n.Accidental >= DoubleSharp {
		return Note{}, fmt.Errorf("cannot raise %v: %w", n, ErrUnsupportedNote)
	}
	n.Accidental++
	return n, nil
}

// Lowered returns the note one half-step lower, by accidental only.
// Lowering a double flat fails.
func (n Note) Lowered() (Note, error) {
	if n.Accidental <= DoubleFlat {
		return Note{}, fmt.Errorf("cannot lower %v: %w", n, ErrUnsupportedNote)
	}
	n.Accidental--
	return n, nil
}

// SamePosition reports whether two notes name the same scale position,
// i.e. agree in class and accidental, ignoring octave.
func (n Note) SamePosition(o Note) bool {
	return n.Class == o.Class && n.Accidental == o.Accidental
}

// Pitch returns the absolute pitch number of the note: middle C
// (C natural, octave 0) is 60. The chromatic value of class+accidental
// is shifted up by whole octaves until it reaches the bound implied by
// the note's octave index, so e.g. Cb in octave 0 lands on 71, not 59.
func (n Note) Pitch() int {
	p := classSemitones[n.Class] + int(n.Accidental)
	lower := 60 + 12*n.Octave
	for p < lower {
		p += 12
	}
	return p
}

func (n Note) String() string {
	if n.Octave == 0 {
		return fmt.Sprintf("%v%v", n.Class, n.Accidental)
	}
	return fmt.Sprintf("%v%v%d", n.Class, n.Accidental, n.Octave)
}

// ParseNote parses the textual form of a note: a letter C..B, an
// optional accidental (bb, b, #, x), and an optional octave index, e.g.
// "C#", "Eb-1", "A2". A missing octave means octave 0.
func ParseNote(s string) (Note, error) {
	orig := s
	if s == "" {
		return Note{}, fmt.Errorf("empty note: %w", ErrUnsupportedNote)
	}
	var n Note
	letter := strings.IndexByte("CDEFGAB", s[0]&^0x20)
	if letter < 0 {
		return Note{}, fmt.Errorf("bad note %q: %w", orig, ErrUnsupportedNote)
	}
	n.Class = PitchClass(letter)
	s = s[1:]
	switch {
	case strings.HasPrefix(s, "bb"):
		n.Accidental = DoubleFlat
		s = s[2:]
	case strings.HasPrefix(s, "b"):
		n.Accidental = Flat
		s = s[1:]
	case strings.HasPrefix(s, "#"):
		n.Accidental = Sharp
		s = s[1:]
	case strings.HasPrefix(s, "x"):
		n.Accidental = DoubleSharp
		s = s[1:]
	}
	if s != "" {
		oct, err := strconv.Atoi(s)
		if err != nil {
			return Note{}, fmt.Errorf("bad note %q: %w", orig, ErrUnsupportedNote)
		}
		n.Octave = oct
	}
	return n, nil
}

func (n Note) MarshalYAML() (interface{}, error) {
	return n.String(), nil
}

func (n *Note) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseNote(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
