package tuner

import (
	"fmt"
	"math"

	intune "github.com/megoldsby/intune-sub002"
)

// Snapshot is one coherent observation of the tuning state: the current
// key, its tonic frequency and the subdominant preference, captured
// together under the Tuner's lock. All resolution is done against a
// Snapshot by value, so a caller can batch many lookups knowing no
// modulation can slip in between them.
type Snapshot struct {
	Key         intune.Key
	TonicHz     float64
	Subdominant bool
}

// variant classifies a note's accidental against what its scale degree
// carries in the current key.
type variant int

const (
	normal variant = iota
	lowered
	raised
)

func (v variant) String() string {
	switch v {
	case normal:
		return "normal"
	case lowered:
		return "lowered"
	case raised:
		return "raised"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// classify determines which scale degree the note occupies in the key
// and whether its accidental is the diatonic one, a half-step below it,
// or a half-step above it. Any other accidental has no meaning in the
// key.
func classify(n intune.Note, key intune.Key) (degree int, v variant, err error) {
	accidentals, err := key.Accidentals()
	if err != nil {
		return 0, 0, err
	}
	degree = key.Degree(n.Class)
	expected := accidentals[degree-1]
	switch n.Accidental {
	case expected:
		return degree, normal, nil
	case expected - 1:
		return degree, lowered, nil
	case expected + 1:
		return degree, raised, nil
	}
	return 0, 0, fmt.Errorf("%v has no meaning in %v: %w", n, key, intune.ErrUnsupportedNote)
}

// ratioFor returns the just interval between the tonic and a classified
// scale degree. The subdominant flag picks the subdominant-flavored
// ratio where the two tuning contexts disagree. target selects the
// diminished-fifth ratio used while resolving a modulation target
// (64/45) over the one used in plain playing (25/18); the two are
// deliberately distinct musical intents and must never be merged.
func ratioFor(degree int, v variant, mode intune.ScaleType, subdominant, target bool) (intune.Ratio, error) {
	bad := func() (intune.Ratio, error) {
		return intune.Ratio{}, fmt.Errorf("%v degree %d in %v mode: %w", v, degree, mode, intune.ErrUnsupportedNote)
	}
	switch degree {
	case 1:
		switch v {
		case normal:
			return intune.Unison, nil
		case raised:
			return intune.Ratio{Num: 27, Den: 25}, nil
		}
		return bad()
	case 2:
		switch v {
		case normal:
			if subdominant {
				return intune.Ratio{Num: 10, Den: 9}, nil
			}
			return intune.Ratio{Num: 9, Den: 8}, nil
		case lowered:
			if subdominant {
				return intune.Ratio{Num: 16, Den: 15}, nil
			}
			return intune.Ratio{Num: 27, Den: 25}, nil
		}
		return bad()
	case 3:
		switch {
		case mode == intune.Major && v == normal, mode == intune.Minor && v == raised:
			return intune.Ratio{Num: 5, Den: 4}, nil
		case mode == intune.Major && v == lowered, mode == intune.Minor && v == normal:
			return intune.Ratio{Num: 6, Den: 5}, nil
		}
		return bad()
	case 4:
		// The fourth is 4/3 regardless of accidental.
		return intune.Ratio{Num: 4, Den: 3}, nil
	case 5:
		switch v {
		case normal:
			return intune.Ratio{Num: 3, Den: 2}, nil
		case lowered:
			if target {
				return intune.Ratio{Num: 64, Den: 45}, nil
			}
			return intune.Ratio{Num: 25, Den: 18}, nil
		case raised:
			return intune.Ratio{Num: 25, Den: 16}, nil
		}
		return bad()
	case 6:
		switch {
		case mode == intune.Major && v == normal, mode == intune.Minor && v == raised:
			return intune.Ratio{Num: 5, Den: 3}, nil
		case mode == intune.Major && v == lowered, mode == intune.Minor && v == normal:
			return intune.Ratio{Num: 8, Den: 5}, nil
		}
		return bad()
	case 7:
		switch {
		case mode == intune.Major && v == normal, mode == intune.Minor && v == raised:
			return intune.Ratio{Num: 15, Den: 8}, nil
		case mode == intune.Major && v == lowered, mode == intune.Minor && v == normal:
			if subdominant {
				return intune.Ratio{Num: 16, Den: 9}, nil
			}
			return intune.Ratio{Num: 9, Den: 5}, nil
		}
		return bad()
	}
	return intune.Ratio{}, fmt.Errorf("degree %d: %w", degree, intune.ErrUnsupportedNote)
}

func (s Snapshot) frequency(n intune.Note, target bool) (float64, error) {
	degree, v, err := classify(n, s.Key)
	if err != nil {
		return 0, err
	}
	r, err := ratioFor(degree, v, s.Key.Type, s.Subdominant, target)
	if err != nil {
		return 0, err
	}
	return math.Ldexp(intune.FoldOctave(r.Apply(s.TonicHz)), n.Octave), nil
}

// Frequency returns the just-intonation frequency of a note against
// this snapshot: the degree/variant ratio applied to the tonic, folded
// into the reference octave, then shifted by the note's octave index.
func (s Snapshot) Frequency(n intune.Note) (float64, error) {
	return s.frequency(n, false)
}

// TargetFrequency is Frequency in modulation-target resolution mode: a
// lowered fifth resolves to 64/45 instead of 25/18. Used when the note
// is about to become a new tonic rather than being played.
func (s Snapshot) TargetFrequency(n intune.Note) (float64, error) {
	return s.frequency(n, true)
}

// chromatic is the inverse of the classification above: for each
// semitone offset from the tonic, the scale degree and variant the
// offset means. Offsets 3, 4, 8, 9, 10 and 11 read differently in major
// and minor, because the diatonic third, sixth and seventh sit on
// different semitones.
func chromatic(offset int, mode intune.ScaleType) (degree int, v variant) {
	switch offset {
	case 0:
		return 1, normal
	case 1:
		return 2, lowered
	case 2:
		return 2, normal
	case 3:
		if mode == intune.Minor {
			return 3, normal
		}
		return 3, lowered
	case 4:
		if mode == intune.Minor {
			return 3, raised
		}
		return 3, normal
	case 5:
		return 4, normal
	case 6:
		return 5, lowered
	case 7:
		return 5, normal
	case 8:
		if mode == intune.Minor {
			return 6, normal
		}
		return 6, lowered
	case 9:
		if mode == intune.Minor {
			return 6, raised
		}
		return 6, normal
	case 10:
		if mode == intune.Minor {
			return 7, normal
		}
		return 7, lowered
	default: // 11
		if mode == intune.Minor {
			return 7, raised
		}
		return 7, normal
	}
}

// NoteForPitch spells an absolute pitch number 0..127 as a note in the
// snapshot's key, the exact inverse of the classification Frequency
// uses: the pitch is folded into the reference octave, its semitone
// offset from the tonic is read through the chromatic table, and the
// note is rebuilt from the key's own accidental for that degree.
func (s Snapshot) NoteForPitch(pitch int) (intune.Note, error) {
	if pitch < 0 || pitch > 127 {
		return intune.Note{}, fmt.Errorf("pitch %d out of range 0..127: %w", pitch, intune.ErrUnsupportedNote)
	}
	accidentals, err := s.Key.Accidentals()
	if err != nil {
		return intune.Note{}, err
	}
	octave := 0
	folded := pitch
	for folded < 60 {
		folded += 12
		octave--
	}
	for folded >= 72 {
		folded -= 12
		octave++
	}
	offset := ((folded-s.Key.Tonic.Pitch())%12 + 12) % 12
	degree, v := chromatic(offset, s.Key.Type)
	n := intune.Note{
		Class:      s.Key.Tonic.Class.Add(degree - 1),
		Accidental: accidentals[degree-1],
		Octave:     octave,
	}
	switch v {
	case lowered:
		return n.Lowered()
	case raised:
		return n.Raised()
	}
	return n, nil
}
