package synth

import (
	"errors"
	"math"
	"testing"
)

func TestLerp(t *testing.T) {
	tests := []struct {
		a, b, t  float64
		expected float64
	}{
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{0, 10, 0.5, 5},
		{10, 0, 0, 10},
		{10, 0, 1, 0},
		{10, 0, 0.5, 5},
	}

	for _, tt := range tests {
		if got := lerp(tt.a, tt.b, tt.t); got != tt.expected {
			t.Errorf("lerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.expected)
		}
	}
}

func TestTriangleWave(t *testing.T) {
	tests := []struct {
		phase    float64
		expected float64
	}{
		{0, 0},
		{0.25, 1},
		{0.5, 0},
		{0.75, -1},
		{1, 0},
	}

	for _, tt := range tests {
		if got := triangleWave(tt.phase); got != tt.expected {
			t.Errorf("triangleWave(%v) = %v, want %v", tt.phase, got, tt.expected)
		}
	}
}

func TestWaveformSample(t *testing.T) {
	tests := []struct {
		name     string
		waveform Waveform
		phase    float64
		expected float64
	}{
		{"sine start", Sine, 0, 0},
		{"sine peak", Sine, 0.25, 1},
		{"sine trough", Sine, 0.75, -1},
		{"square high", Square, 0.1, 1},
		{"square low", Square, 0.5, -1},
		{"triangle peak", Triangle, 0.25, 1},
		{"sawtooth start", Sawtooth, 0, 0},
		{"sawtooth top", Sawtooth, 0.5, 1},
		{"sawtooth bottom", Sawtooth, 0.5000001, -1},
		{"sawtooth rise", Sawtooth, 0.75, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.waveform.Sample(tt.phase)
			if math.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("%s.Sample(%v) = %v, want %v", tt.waveform, tt.phase, got, tt.expected)
			}
		})
	}
}

func TestWaveformBounds(t *testing.T) {
	for _, w := range Waveforms() {
		for i := 0; i < 1000; i++ {
			v := w.Sample(float64(i) / 1000)
			if v < -1 || v > 1 {
				t.Fatalf("%s.Sample(%v) = %v, out of [-1, 1]", w, float64(i)/1000, v)
			}
		}
	}
}

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		input    string
		expected Waveform
	}{
		{"sine", Sine},
		{"Square", Square},
		{"triangle", Triangle},
		{"sawtooth", Sawtooth},
		{"saw", Sawtooth},
	}

	for _, tt := range tests {
		got, err := ParseWaveform(tt.input)
		if err != nil {
			t.Fatalf("ParseWaveform(%q) error = %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseWaveform(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseWaveform("noise"); !errors.Is(err, ErrUnknownWaveform) {
		t.Errorf("ParseWaveform(noise) error = %v, want %v", err, ErrUnknownWaveform)
	}
}

func TestWaveformNextWraps(t *testing.T) {
	if Sawtooth.Next() != Sine {
		t.Errorf("Sawtooth.Next() = %s, want sine", Sawtooth.Next())
	}
	if Sine.Next() != Square {
		t.Errorf("Sine.Next() = %s, want square", Sine.Next())
	}
}
