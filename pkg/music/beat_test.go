package music

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestBeatDivisor(t *testing.T) {
	expected := []int{1, 2, 4, 8, 16, 32, 64}
	for i, b := range Beats() {
		if b.Divisor() != expected[i] {
			t.Errorf("%s.Divisor() = %d, want %d", b, b.Divisor(), expected[i])
		}
	}
}

func TestParseBeat(t *testing.T) {
	tests := []struct {
		input    string
		expected Beat
	}{
		{"q", Quarter},
		{"quarter", Quarter},
		{"4", Quarter},
		{"1/4", Quarter},
		{"w", Whole},
		{"x", SixtyFourth},
		{"E", Eighth},
	}

	for _, tt := range tests {
		got, err := ParseBeat(tt.input)
		if err != nil {
			t.Fatalf("ParseBeat(%q) error = %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseBeat(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseBeat("3"); err == nil {
		t.Error("ParseBeat(3) expected error")
	}
}

func TestParseTimeSignature(t *testing.T) {
	ts, err := ParseTimeSignature("6/8")
	if err != nil {
		t.Fatalf("ParseTimeSignature() error = %v", err)
	}
	if ts.BeatsPerMeasure != 6 || ts.Unit != Eighth {
		t.Errorf("ParseTimeSignature(6/8) = %+v", ts)
	}
	if ts.String() != "6/8" {
		t.Errorf("String() = %q, want 6/8", ts.String())
	}

	for _, bad := range []string{"4", "0/4", "4/3", "x/4"} {
		if _, err := ParseTimeSignature(bad); err == nil {
			t.Errorf("ParseTimeSignature(%q) expected error", bad)
		}
	}
}

func TestBeatCounter(t *testing.T) {
	c := NewBeatCounter(BeatSettings{BPM: 60, TimeSignature: CommonTime})

	if got := c.Beats(Quarter); got != 1 {
		t.Errorf("Beats(Quarter) = %v, want 1", got)
	}
	if got := c.Beats(Eighth); got != 0.5 {
		t.Errorf("Beats(Eighth) = %v, want 0.5", got)
	}
	if got := c.Duration(Half); got != 2*time.Second {
		t.Errorf("Duration(Half) = %v, want 2s", got)
	}

	for i := 0; i < 6; i++ {
		c.Increment(Quarter)
	}
	if got := c.TotalMeasures(); got != 1.5 {
		t.Errorf("TotalMeasures() = %v, want 1.5", got)
	}
	if got := c.TotalSeconds(); got != 6 {
		t.Errorf("TotalSeconds() = %v, want 6", got)
	}
}

func TestBeatCounterCompoundMeter(t *testing.T) {
	c := NewBeatCounter(BeatSettings{BPM: 120, TimeSignature: TimeSignature{BeatsPerMeasure: 6, Unit: Eighth}})

	if got := c.Beats(Quarter); got != 2 {
		t.Errorf("Beats(Quarter) = %v, want 2", got)
	}
	if got := c.Seconds(Quarter); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Seconds(Quarter) = %v, want 1", got)
	}
}

func TestBeatSettingsValidate(t *testing.T) {
	badTempos := []struct {
		name string
		bpm  float64
	}{
		{"zero", 0},
		{"negative", -60},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tt := range badTempos {
		err := (BeatSettings{BPM: tt.bpm, TimeSignature: CommonTime}).Validate()
		if !errors.Is(err, ErrInvalidBPM) {
			t.Errorf("Validate() %s bpm error = %v, want %v", tt.name, err, ErrInvalidBPM)
		}
	}
	if err := (BeatSettings{BPM: 90, TimeSignature: TimeSignature{}}).Validate(); err == nil {
		t.Error("Validate() expected error for empty time signature")
	}
	if err := (BeatSettings{BPM: 90, TimeSignature: CommonTime}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
