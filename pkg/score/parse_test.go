package score

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/synth"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		token    string
		expected Step
	}{
		{"C4/q", Note(60, music.Quarter)},
		{"C#4/e", Note(61, music.Eighth)},
		{"R/w", Rest(music.Whole)},
		{"r/2", Rest(music.Half)},
		{"[C4,E4,G4]/h", Chord([]music.Note{60, 64, 67}, music.Half)},
		{"D4/s~", Step{Kind: StepNote, Notes: []music.Note{62}, Length: music.Sixteenth, Slur: true}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseStep(tt.token)
			if err != nil {
				t.Fatalf("ParseStep(%q) error = %v", tt.token, err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("ParseStep(%q) mismatch (-want +got):\n%s", tt.token, diff)
			}
		})
	}
}

func TestParseStepErrors(t *testing.T) {
	tests := []struct {
		token string
		err   error
	}{
		{"C4", nil},
		{"C4/y", music.ErrInvalidBeat},
		{"Z4/q", music.ErrInvalidNoteName},
		{"[C4,E4/q", nil},
		{"[]/q", nil},
		{"R/q~", nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			_, err := ParseStep(tt.token)
			if err == nil {
				t.Fatalf("ParseStep(%q) expected error", tt.token)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("ParseStep(%q) error = %v, want %v", tt.token, err, tt.err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	s, err := ParseString(`title Test Piece
tempo 90
time 3/4
waveform triangle
volume 180

part melody
C4/q D4/q E4/q | [C4,E4,G4]/h~ R/q |
part bass
waveform square
volume 120
C3/h C#3/q
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if s.Title != "Test Piece" {
		t.Errorf("Title = %q, want %q", s.Title, "Test Piece")
	}
	if s.BPM != 90 {
		t.Errorf("BPM = %v, want 90", s.BPM)
	}
	if s.TimeSignature.String() != "3/4" {
		t.Errorf("TimeSignature = %s, want 3/4", s.TimeSignature)
	}
	if len(s.Parts) != 2 {
		t.Fatalf("Parts = %d, want 2", len(s.Parts))
	}

	melody := s.Parts[0]
	if melody.Waveform != synth.Triangle || melody.Volume != 180 {
		t.Errorf("melody inherits %s/%d, want triangle/180", melody.Waveform, melody.Volume)
	}
	if len(melody.Steps) != 5 {
		t.Errorf("melody steps = %d, want 5", len(melody.Steps))
	}
	if !melody.Steps[3].Slur || melody.Steps[3].Kind != StepChord {
		t.Errorf("step 3 = %+v, want slurred chord", melody.Steps[3])
	}

	bass := s.Parts[1]
	if bass.Waveform != synth.Square || bass.Volume != 120 {
		t.Errorf("bass = %s/%d, want square/120", bass.Waveform, bass.Volume)
	}
	if bass.Steps[1].Notes[0] != 49 {
		t.Errorf("bass step 1 note = %d, want 49 (C#3)", bass.Steps[1].Notes[0])
	}
}

func TestParseImplicitPart(t *testing.T) {
	s, err := ParseString("C4/q D4/q # trailing comment\nE4/h\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(s.Parts) != 1 || s.Parts[0].Name != DefaultPart {
		t.Fatalf("Parts = %+v, want one %q part", s.Parts, DefaultPart)
	}
	if len(s.Parts[0].Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(s.Parts[0].Steps))
	}
	if s.BPM != DefaultBPM || s.Volume != DefaultVolume {
		t.Errorf("defaults = %v/%d, want %v/%d", s.BPM, s.Volume, DefaultBPM, DefaultVolume)
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := ParseString("tempo 100\npart a\nC4/q\nC4/q X9/q\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if perr.Line != 4 {
		t.Errorf("ParseError.Line = %d, want 4", perr.Line)
	}
	if perr.Token != "X9/q" {
		t.Errorf("ParseError.Token = %q, want %q", perr.Token, "X9/q")
	}
	if !errors.Is(err, music.ErrInvalidNoteName) {
		t.Errorf("Parse() error should wrap ErrInvalidNoteName, got %v", err)
	}
}

func TestParseInvalidDirectives(t *testing.T) {
	tests := []string{
		"tempo fast\nC4/q",
		"tempo -3\nC4/q",
		"tempo NaN\nC4/q",
		"tempo Inf\nC4/q",
		"tempo -inf\nC4/q",
		"time 5\nC4/q",
		"waveform noise\nC4/q",
		"volume 300\nC4/q",
		"part\nC4/q",
		"title nothing to play",
	}

	for _, text := range tests {
		if _, err := ParseString(text); err == nil {
			t.Errorf("ParseString(%q) expected error", text)
		}
	}
}

func TestParseRejectsNonFiniteTempo(t *testing.T) {
	for _, tempo := range []string{"NaN", "Inf", "+Inf", "1e400"} {
		_, err := ParseString("tempo " + tempo + "\nC4/q")
		if !errors.Is(err, music.ErrInvalidBPM) {
			t.Errorf("ParseString(tempo %s) error = %v, want %v", tempo, err, music.ErrInvalidBPM)
		}
	}
}
