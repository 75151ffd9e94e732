package music

import (
	"errors"
	"math"
	"testing"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		input    string
		expected Note
	}{
		{"A4", 69},
		{"C4", 60},
		{"C#4", 61},
		{"Bb4", 70},
		{"A0", 21},
		{"G9", 127},
		{"c4", 60},
		{"C0", 12},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNote(tt.input)
			if err != nil {
				t.Fatalf("ParseNote(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseNote(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseNoteEnharmonics(t *testing.T) {
	if MustParseNote("E#4") != MustParseNote("F4") {
		t.Error("E#4 should equal F4")
	}
	if MustParseNote("Cb4") != MustParseNote("B3") {
		t.Error("Cb4 should equal B3")
	}
}

func TestParseNoteErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"A", ErrInvalidLength},
		{"Ab4k", ErrInvalidLength},
		{"", ErrInvalidLength},
		{"Z4", ErrInvalidNoteName},
		{"Ak4", ErrInvalidAccidental},
		{"Ap", ErrInvalidOctave},
		{"G#9", ErrNoteOutOfRange},
		{"Ab9", ErrNoteOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseNote(tt.input)
			if !errors.Is(err, tt.err) {
				t.Errorf("ParseNote(%q) error = %v, want %v", tt.input, err, tt.err)
			}
		})
	}
}

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		note     Note
		expected float64
	}{
		{A4, 440.0},
		{57, 220.0},
		{81, 880.0},
		{60, 261.6256},
	}

	for _, tt := range tests {
		got := tt.note.Frequency()
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("%s.Frequency() = %f, want %f", tt.note, got, tt.expected)
		}
	}
}

func TestNoteString(t *testing.T) {
	tests := []struct {
		note     Note
		expected string
	}{
		{60, "C4"},
		{61, "C#4"},
		{21, "A0"},
		{127, "G9"},
		{0, "C-1"},
	}

	for _, tt := range tests {
		if got := tt.note.String(); got != tt.expected {
			t.Errorf("Note(%d).String() = %q, want %q", tt.note, got, tt.expected)
		}
	}
}

func TestNoteTranspose(t *testing.T) {
	got, err := Note(60).Transpose(Octave)
	if err != nil {
		t.Fatalf("Transpose() error = %v", err)
	}
	if got != 72 {
		t.Errorf("Transpose(Octave) = %d, want 72", got)
	}

	if _, err := Note(120).Transpose(Octave); !errors.Is(err, ErrNoteOutOfRange) {
		t.Errorf("Transpose() past 127 error = %v, want %v", err, ErrNoteOutOfRange)
	}
	if _, err := Note(5).Transpose(-Octave); !errors.Is(err, ErrNoteOutOfRange) {
		t.Errorf("Transpose() below 0 error = %v, want %v", err, ErrNoteOutOfRange)
	}
}
