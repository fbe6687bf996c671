package tuner

import (
	"errors"
	"math"
	"testing"

	intune "github.com/megoldsby/intune-sub002"
)

func mustKey(t *testing.T, s string) intune.Key {
	t.Helper()
	k, err := intune.ParseKey(s)
	if err != nil {
		t.Fatalf("ParseKey(%q): %v", s, err)
	}
	return k
}

func mustNote(t *testing.T, s string) intune.Note {
	t.Helper()
	n, err := intune.ParseNote(s)
	if err != nil {
		t.Fatalf("ParseNote(%q): %v", s, err)
	}
	return n
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestFrequencyRatios(t *testing.T) {
	const tonic = 260.0
	for _, c := range []struct {
		key    string
		subdom bool
		note   string
		factor float64
	}{
		{"C", false, "C", 1},
		{"C", false, "C#", 27.0 / 25},
		{"C", false, "D", 9.0 / 8},
		{"C", true, "D", 10.0 / 9},
		{"C", false, "Db", 27.0 / 25},
		{"C", true, "Db", 16.0 / 15},
		{"C", false, "E", 5.0 / 4},
		{"C", false, "Eb", 6.0 / 5},
		{"C", false, "F", 4.0 / 3},
		{"C", false, "F#", 4.0 / 3}, // the fourth ignores accidentals
		{"C", false, "Fb", 4.0 / 3},
		{"C", false, "G", 3.0 / 2},
		{"C", false, "Gb", 25.0 / 18},
		{"C", false, "G#", 25.0 / 16},
		{"C", false, "A", 5.0 / 3},
		{"C", false, "Ab", 8.0 / 5},
		{"C", false, "B", 15.0 / 8},
		{"C", false, "Bb", 9.0 / 5},
		{"C", true, "Bb", 16.0 / 9},
		{"Cm", false, "Eb", 6.0 / 5},
		{"Cm", false, "E", 5.0 / 4},
		{"Cm", false, "Ab", 8.0 / 5},
		{"Cm", false, "A", 5.0 / 3},
		{"Cm", false, "Bb", 9.0 / 5},
		{"Cm", true, "Bb", 16.0 / 9},
		{"Cm", false, "B", 15.0 / 8},
	} {
		snap := Snapshot{Key: mustKey(t, c.key), TonicHz: tonic, Subdominant: c.subdom}
		got, err := snap.Frequency(mustNote(t, c.note))
		if err != nil {
			t.Fatalf("%v (subdom=%v) frequency of %s: %v", snap.Key, c.subdom, c.note, err)
		}
		if want := tonic * c.factor; !closeEnough(got, want) {
			t.Errorf("%v (subdom=%v) frequency of %s = %v, want %v", snap.Key, c.subdom, c.note, got, want)
		}
	}
}

func TestFrequencyOctaves(t *testing.T) {
	snap := Snapshot{Key: mustKey(t, "C"), TonicHz: 260}
	for _, c := range []struct {
		note string
		want float64
	}{
		{"D1", 2 * 292.5},
		{"D-1", 292.5 / 2},
		{"D2", 4 * 292.5},
	} {
		got, err := snap.Frequency(mustNote(t, c.note))
		if err != nil {
			t.Fatalf("frequency of %s: %v", c.note, err)
		}
		if !closeEnough(got, c.want) {
			t.Errorf("frequency of %s = %v, want %v", c.note, got, c.want)
		}
	}
}

func TestDiminishedFifthModes(t *testing.T) {
	snap := Snapshot{Key: mustKey(t, "C"), TonicHz: 260}
	gb := mustNote(t, "Gb")
	playing, err := snap.Frequency(gb)
	if err != nil {
		t.Fatalf("Frequency(Gb): %v", err)
	}
	resolving, err := snap.TargetFrequency(gb)
	if err != nil {
		t.Fatalf("TargetFrequency(Gb): %v", err)
	}
	if !closeEnough(playing, 260*25.0/18) {
		t.Errorf("playing diminished fifth = %v, want %v", playing, 260*25.0/18)
	}
	if !closeEnough(resolving, 260*64.0/45) {
		t.Errorf("resolving diminished fifth = %v, want %v", resolving, 260*64.0/45)
	}
}

func TestFrequencyErrors(t *testing.T) {
	snap := Snapshot{Key: mustKey(t, "C"), TonicHz: 260}
	for _, s := range []string{
		"A#", // raised sixth in major
		"B#", // raised seventh in major
		"Cb", // lowered tonic
		"Ex", // two steps above the diatonic third
	} {
		if _, err := snap.Frequency(mustNote(t, s)); !errors.Is(err, intune.ErrUnsupportedNote) {
			t.Errorf("Frequency(%s): expected ErrUnsupportedNote, got %v", s, err)
		}
	}
	minor := Snapshot{Key: mustKey(t, "Am"), TonicHz: 440}
	for _, s := range []string{
		"Fb", // lowered sixth in minor
		"Gb", // lowered seventh in minor
	} {
		if _, err := minor.Frequency(mustNote(t, s)); !errors.Is(err, intune.ErrUnsupportedNote) {
			t.Errorf("minor Frequency(%s): expected ErrUnsupportedNote, got %v", s, err)
		}
	}
}

func TestTonicFrequencyIsTonic(t *testing.T) {
	for s := range allKeyNames {
		key := mustKey(t, s)
		for _, subdom := range []bool{false, true} {
			tonicHz := intune.FoldOctave(300)
			snap := Snapshot{Key: key, TonicHz: tonicHz, Subdominant: subdom}
			got, err := snap.Frequency(key.Tonic)
			if err != nil {
				t.Fatalf("%v: frequency of tonic: %v", key, err)
			}
			if got != tonicHz {
				t.Errorf("%v (subdom=%v): frequency of tonic = %v, want %v", key, subdom, got, tonicHz)
			}
		}
	}
}

// allKeyNames enumerates the full supported key set for exhaustive tests.
var allKeyNames = map[string]struct{}{
	"Cb": {}, "Gb": {}, "Db": {}, "Ab": {}, "Eb": {}, "Bb": {}, "F": {},
	"C": {}, "G": {}, "D": {}, "A": {}, "E": {}, "B": {}, "F#": {}, "C#": {},
	"Abm": {}, "Ebm": {}, "Bbm": {}, "Fm": {}, "Cm": {}, "Gm": {}, "Dm": {},
	"Am": {}, "Em": {}, "Bm": {}, "F#m": {}, "C#m": {}, "G#m": {}, "D#m": {}, "A#m": {},
}

func TestNoteForPitchExamples(t *testing.T) {
	for _, c := range []struct {
		key   string
		pitch int
		want  string
	}{
		{"C", 60, "C"},
		{"C", 61, "Db"},
		{"C", 62, "D"},
		{"C", 63, "Eb"},
		{"C", 64, "E"},
		{"C", 59, "B-1"},
		{"C", 72, "C1"},
		{"Cm", 63, "Eb"},
		{"Cm", 64, "E"}, // raised third in minor
		{"Cm", 70, "Bb"},
		{"Cm", 71, "B"},
		{"B", 60, "C"}, // lowered second of B major
		{"B", 71, "B"},
		{"F#m", 66, "F#"},
		{"Cb", 60, "Dbb"},
	} {
		snap := Snapshot{Key: mustKey(t, c.key), TonicHz: 260}
		got, err := snap.NoteForPitch(c.pitch)
		if err != nil {
			t.Fatalf("%v: NoteForPitch(%d): %v", snap.Key, c.pitch, err)
		}
		if got.String() != c.want {
			t.Errorf("%v: NoteForPitch(%d) = %v, want %s", snap.Key, c.pitch, got, c.want)
		}
	}
}

func TestNoteForPitchRange(t *testing.T) {
	snap := Snapshot{Key: mustKey(t, "C"), TonicHz: 260}
	for _, pitch := range []int{-1, 128, 1000} {
		if _, err := snap.NoteForPitch(pitch); !errors.Is(err, intune.ErrUnsupportedNote) {
			t.Errorf("NoteForPitch(%d): expected ErrUnsupportedNote, got %v", pitch, err)
		}
	}
}

// TestPitchRoundTrip drives every pitch number through NoteForPitch and
// back: reclassifying the spelled note must land on the same scale
// degree and variant, and recomposing that with the octave offset must
// reproduce the pitch number.
func TestPitchRoundTrip(t *testing.T) {
	for s := range allKeyNames {
		key := mustKey(t, s)
		snap := Snapshot{Key: key, TonicHz: 300}
		// invert the chromatic table for this mode
		offsetFor := map[[2]int]int{}
		for off := 0; off < 12; off++ {
			deg, v := chromatic(off, key.Type)
			offsetFor[[2]int{deg, int(v)}] = off
		}
		for pitch := 0; pitch <= 127; pitch++ {
			n, err := snap.NoteForPitch(pitch)
			if err != nil {
				t.Fatalf("%v: NoteForPitch(%d): %v", key, pitch, err)
			}
			deg, v, err := classify(n, key)
			if err != nil {
				t.Fatalf("%v: reclassifying %v (pitch %d): %v", key, n, pitch, err)
			}
			off, ok := offsetFor[[2]int{deg, int(v)}]
			if !ok {
				t.Fatalf("%v: pitch %d spelled %v classifies as degree %d %v, unreachable from any offset", key, pitch, n, deg, v)
			}
			folded := 60 + ((key.Tonic.Pitch()+off-60)%12+12)%12
			if got := folded + 12*n.Octave; got != pitch {
				t.Errorf("%v: pitch %d -> %v -> %d", key, pitch, n, got)
			}
			// the spelled note must resolve to a frequency as well
			if _, err := snap.Frequency(n); err != nil {
				t.Errorf("%v: frequency of spelled %v: %v", key, n, err)
			}
		}
	}
}
