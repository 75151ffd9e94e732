package music

import (
	"errors"
	"testing"
)

func TestMajorScaleNotes(t *testing.T) {
	notes, err := Major.Notes(MustParseNote("C4"))
	if err != nil {
		t.Fatalf("Notes() error = %v", err)
	}

	expected := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}
	if len(notes) != len(expected) {
		t.Fatalf("Notes() returned %d notes, want %d", len(notes), len(expected))
	}
	for i, exp := range expected {
		if notes[i].String() != exp {
			t.Errorf("notes[%d] = %s, want %s", i, notes[i], exp)
		}
	}
}

func TestMinorHarmonicScale(t *testing.T) {
	notes, err := MinorHarmonic.Notes(MustParseNote("A3"))
	if err != nil {
		t.Fatalf("Notes() error = %v", err)
	}

	expected := []string{"A3", "B3", "C4", "D4", "E4", "F4", "G#4", "A4"}
	for i, exp := range expected {
		if notes[i].String() != exp {
			t.Errorf("notes[%d] = %s, want %s", i, notes[i], exp)
		}
	}
}

func TestScaleSpansOctave(t *testing.T) {
	for _, s := range Scales() {
		if s.Span() != Octave {
			t.Errorf("%s.Span() = %d, want %d", s.Name, s.Span(), Octave)
		}
	}
}

func TestUpAndDown(t *testing.T) {
	tonic := MustParseNote("C4")
	notes, err := Major.UpAndDown(tonic)
	if err != nil {
		t.Fatalf("UpAndDown() error = %v", err)
	}

	if len(notes) != 15 {
		t.Fatalf("UpAndDown() returned %d notes, want 15", len(notes))
	}
	if notes[0] != tonic || notes[14] != tonic {
		t.Errorf("UpAndDown() should start and end on the tonic, got %s and %s", notes[0], notes[14])
	}
	if notes[7].String() != "C5" {
		t.Errorf("notes[7] = %s, want C5", notes[7])
	}
	if notes[8].String() != "B4" {
		t.Errorf("notes[8] = %s, want B4", notes[8])
	}
}

func TestScaleOutOfRange(t *testing.T) {
	if _, err := Major.Notes(MustParseNote("G9")); !errors.Is(err, ErrNoteOutOfRange) {
		t.Errorf("Notes() error = %v, want %v", err, ErrNoteOutOfRange)
	}
}

func TestLookupScale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"major", "major"},
		{"MAJOR", "major"},
		{"minor-harmonic", "minor-harmonic"},
		{"minor_harmonic", "minor-harmonic"},
		{"MinorHarmonic", "minor-harmonic"},
		{"minor", "minor"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := LookupScale(tt.input)
			if err != nil {
				t.Fatalf("LookupScale(%q) error = %v", tt.input, err)
			}
			if s.Name != tt.expected {
				t.Errorf("LookupScale(%q) = %s, want %s", tt.input, s.Name, tt.expected)
			}
		})
	}

	if _, err := LookupScale("dorian"); !errors.Is(err, ErrUnknownScale) {
		t.Errorf("LookupScale(dorian) error = %v, want %v", err, ErrUnknownScale)
	}
}
