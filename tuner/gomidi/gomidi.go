// Package gomidi translates gitlab.com/gomidi messages into tuning
// lookups against a Tuner. It handles only the message values
// themselves; drivers, devices and file formats stay with the caller.
package gomidi

import (
	intune "github.com/megoldsby/intune-sub002"
	"github.com/megoldsby/intune-sub002/tuner"
	"gitlab.com/gomidi/midi/v2"
)

// NoteEvent is a note-on or note-off message resolved against the
// tuning state: the spelled note in the current key and, for note-ons,
// its just-intonation frequency.
type NoteEvent struct {
	Note      intune.Note
	Frequency float64
	On        bool
	Channel   uint8
	Velocity  uint8
}

// Translator resolves incoming MIDI messages against one Tuner.
type Translator struct {
	tuner *tuner.Tuner
}

func NewTranslator(t *tuner.Tuner) *Translator {
	return &Translator{tuner: t}
}

// Translate resolves a note-on or note-off message. ok is false for
// every other message kind; those are not the tuner's business. A note
// the current key cannot spell surfaces as an error from the core.
func (tr *Translator) Translate(msg midi.Message) (ev NoteEvent, ok bool, err error) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		n, hz, err := tr.tuner.ResolvePitch(int(key))
		if err != nil {
			return NoteEvent{}, true, err
		}
		return NoteEvent{Note: n, Frequency: hz, On: true, Channel: ch, Velocity: vel}, true, nil
	case msg.GetNoteEnd(&ch, &key):
		n, err := tr.tuner.NoteForPitch(int(key))
		if err != nil {
			return NoteEvent{}, true, err
		}
		return NoteEvent{Note: n, Channel: ch}, true, nil
	}
	return NoteEvent{}, false, nil
}
