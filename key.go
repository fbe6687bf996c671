package intune

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// ScaleType is the mode of a key, major or minor. Minor keys use the
	// natural minor scale; the raised sixth and seventh degrees are
	// expressed through accidentals on the notes themselves.
	ScaleType int

	// Key is a tonic note plus a scale type. The tonic octave is forced
	// to the canonical octave 0, so keys compare equal by (class,
	// accidental, type) alone.
	Key struct {
		Tonic Note
		Type  ScaleType
	}
)

const (
	Major ScaleType = iota
	Minor
)

func (s ScaleType) String() string {
	switch s {
	case Major:
		return "major"
	case Minor:
		return "minor"
	}
	return fmt.Sprintf("ScaleType(%d)", int(s))
}

// NewKey builds a supported key from a tonic note and scale type,
// forcing the tonic octave to the canonical octave. Tonics that would
// need a double accidental, and combinations beyond seven sharps or
// seven flats, are rejected.
func NewKey(tonic Note, typ ScaleType) (Key, error) {
	tonic.Octave = 0
	k := Key{Tonic: tonic, Type: typ}
	if _, ok := signatures[sigIndex(k)]; !ok {
		return Key{}, fmt.Errorf("%v %v: %w", tonic, typ, ErrUnsupportedKey)
	}
	return k, nil
}

// Supported reports whether the key is one of the 30 keys in the table.
func (k Key) Supported() bool {
	k.Tonic.Octave = 0
	_, ok := signatures[sigIndex(k)]
	return ok
}

// Accidentals returns the accidental each of the seven scale degrees
// carries in this key, tonic first.
func (k Key) Accidentals() ([7]Accidental, error) {
	k.Tonic.Octave = 0
	acc, ok := degreeAccidentals[sigIndex(k)]
	if !ok {
		return [7]Accidental{}, fmt.Errorf("%v: %w", k, ErrUnsupportedKey)
	}
	return acc, nil
}

// Degree returns the 1-based scale degree a pitch class occupies in
// this key.
func (k Key) Degree(c PitchClass) int {
	return ((int(c)-int(k.Tonic.Class))%7+7)%7 + 1
}

func (k Key) String() string {
	if k.Type == Minor {
		return fmt.Sprintf("%v%vm", k.Tonic.Class, k.Tonic.Accidental)
	}
	return fmt.Sprintf("%v%v", k.Tonic.Class, k.Tonic.Accidental)
}

// ParseKey parses the textual form of a key: a tonic without octave,
// with a trailing "m" for minor, e.g. "Eb", "F#m".
func ParseKey(s string) (Key, error) {
	orig := s
	typ := Major
	if strings.HasSuffix(s, "m") {
		typ = Minor
		s = strings.TrimSuffix(s, "m")
	}
	tonic, err := ParseNote(s)
	if err != nil {
		return Key{}, fmt.Errorf("bad key %q: %w", orig, ErrUnsupportedKey)
	}
	if tonic.Octave != 0 {
		return Key{}, fmt.Errorf("bad key %q: %w", orig, ErrUnsupportedKey)
	}
	return NewKey(tonic, typ)
}

func (k Key) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *Key) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// sig indexes the signature tables by what makes keys distinct.
type sig struct {
	class      PitchClass
	accidental Accidental
	typ        ScaleType
}

func sigIndex(k Key) sig {
	return sig{k.Tonic.Class, k.Tonic.Accidental, k.Type}
}

// signatures maps every supported key to its count of sharps (positive)
// or flats (negative). The 30 entries cover every tonic that does not
// need a double accidental.
var signatures = map[sig]int{
	{C, Flat, Major}:    -7,
	{G, Flat, Major}:    -6,
	{D, Flat, Major}:    -5,
	{A, Flat, Major}:    -4,
	{E, Flat, Major}:    -3,
	{B, Flat, Major}:    -2,
	{F, Natural, Major}: -1,
	{C, Natural, Major}: 0,
	{G, Natural, Major}: 1,
	{D, Natural, Major}: 2,
	{A, Natural, Major}: 3,
	{E, Natural, Major}: 4,
	{B, Natural, Major}: 5,
	{F, Sharp, Major}:   6,
	{C, Sharp, Major}:   7,

	{A, Flat, Minor}:    -7,
	{E, Flat, Minor}:    -6,
	{B, Flat, Minor}:    -5,
	{F, Natural, Minor}: -4,
	{C, Natural, Minor}: -3,
	{G, Natural, Minor}: -2,
	{D, Natural, Minor}: -1,
	{A, Natural, Minor}: 0,
	{E, Natural, Minor}: 1,
	{B, Natural, Minor}: 2,
	{F, Sharp, Minor}:   3,
	{C, Sharp, Minor}:   4,
	{G, Sharp, Minor}:   5,
	{D, Sharp, Minor}:   6,
	{A, Sharp, Minor}:   7,
}

// sharpOrder and flatOrder are the circle-of-fifths orders in which
// sharps and flats accumulate in a key signature.
var (
	sharpOrder = [7]PitchClass{F, C, G, D, A, E, B}
	flatOrder  = [7]PitchClass{B, E, A, D, G, C, F}
)

// degreeAccidentals is derived from signatures once at init and is
// read-only afterwards; no locking is needed anywhere in this package.
var degreeAccidentals = make(map[sig][7]Accidental, len(signatures))

func init() {
	for s, count := range signatures {
		perClass := [7]Accidental{}
		for i := 0; i < count; i++ {
			perClass[sharpOrder[i]] = Sharp
		}
		for i := 0; i < -count; i++ {
			perClass[flatOrder[i]] = Flat
		}
		var acc [7]Accidental
		for d := 0; d < 7; d++ {
			acc[d] = perClass[s.class.Add(d)]
		}
		degreeAccidentals[s] = acc
	}
}
