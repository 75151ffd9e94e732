// Package music provides notes, intervals, scales and beat arithmetic
package music

import (
	"errors"
	"fmt"
	"math"
)

// Equal temperament reference pitch
const (
	A4                 = Note(69)
	A4Frequency        = 440.0
	MinNote            = Note(0)
	MaxNote            = Note(127)
	semitonesPerOctave = 12
)

// Note parsing and range errors
var (
	ErrInvalidLength     = errors.New("note must be 2 or 3 characters")
	ErrInvalidNoteName   = errors.New("invalid note name")
	ErrInvalidAccidental = errors.New("invalid accidental")
	ErrInvalidOctave     = errors.New("invalid octave")
	ErrNoteOutOfRange    = errors.New("note out of MIDI range")
)

// Semitones is a signed pitch interval
type Semitones int

// Common intervals
const (
	Semitone Semitones = 1
	Tone     Semitones = 2
	Octave   Semitones = semitonesPerOctave
)

// Note is a MIDI note number (0-127)
type Note uint8

var sharpNames = [semitonesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Frequency returns the note frequency in Hz
func (n Note) Frequency() float64 {
	semitonesFromA4 := float64(n) - float64(A4)
	return A4Frequency * math.Pow(2, semitonesFromA4/semitonesPerOctave)
}

// Transpose moves the note by the given interval
func (n Note) Transpose(s Semitones) (Note, error) {
	v := int(n) + int(s)
	if v < int(MinNote) || v > int(MaxNote) {
		return 0, fmt.Errorf("%s %+d: %w", n, int(s), ErrNoteOutOfRange)
	}
	return Note(v), nil
}

// Octave returns the scientific pitch octave of the note
func (n Note) Octave() int {
	return int(n)/semitonesPerOctave - 1
}

// String returns the sharp spelling of the note, e.g. C#4
func (n Note) String() string {
	return fmt.Sprintf("%s%d", sharpNames[int(n)%semitonesPerOctave], n.Octave())
}

// ParseNote parses a note name such as C4, A#2 or Bb5
func ParseNote(s string) (Note, error) {
	r := []rune(s)
	var letter, accidental, octave rune
	switch len(r) {
	case 2:
		letter, octave = r[0], r[1]
	case 3:
		letter, accidental, octave = r[0], r[1], r[2]
	default:
		return 0, fmt.Errorf("parse note %q: %w", s, ErrInvalidLength)
	}

	var fromA int
	switch letter {
	case 'C', 'c':
		fromA = -9
	case 'D', 'd':
		fromA = -7
	case 'E', 'e':
		fromA = -5
	case 'F', 'f':
		fromA = -4
	case 'G', 'g':
		fromA = -2
	case 'A', 'a':
		fromA = 0
	case 'B', 'b':
		fromA = 2
	default:
		return 0, fmt.Errorf("parse note %q: %w", s, ErrInvalidNoteName)
	}

	switch accidental {
	case 0:
	case '#':
		fromA++
	case 'b':
		fromA--
	default:
		return 0, fmt.Errorf("parse note %q: %w", s, ErrInvalidAccidental)
	}

	if octave < '0' || octave > '9' {
		return 0, fmt.Errorf("parse note %q: %w", s, ErrInvalidOctave)
	}
	octavesFrom4 := int(octave-'0') - 4

	v := int(A4) + fromA + octavesFrom4*semitonesPerOctave
	if v < int(MinNote) || v > int(MaxNote) {
		return 0, fmt.Errorf("parse note %q: %w", s, ErrNoteOutOfRange)
	}
	return Note(v), nil
}

// MustParseNote is like ParseNote but panics on error
func MustParseNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}
