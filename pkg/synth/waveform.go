// Package synth provides waveform oscillators and the voice registry that mixes them
package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownWaveform is returned for unrecognised waveform names
var ErrUnknownWaveform = errors.New("unknown waveform")

// Waveform is a periodic signal shape
type Waveform int

// Supported waveforms
const (
	Sine Waveform = iota
	Square
	Triangle
	Sawtooth
)

var waveformNames = []string{"sine", "square", "triangle", "sawtooth"}

// Waveforms returns all supported waveforms
func Waveforms() []Waveform {
	return []Waveform{Sine, Square, Triangle, Sawtooth}
}

// String returns the waveform name
func (w Waveform) String() string {
	if w < Sine || w > Sawtooth {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform parses a waveform name
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sqr":
		return Square, nil
	case "triangle", "tri":
		return Triangle, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	}
	return Sine, fmt.Errorf("%q: %w", s, ErrUnknownWaveform)
}

// Next returns the waveform that follows w, wrapping around
func (w Waveform) Next() Waveform {
	return (w + 1) % Waveform(len(waveformNames))
}

// Sample returns the waveform value at phase, where phase is in [0, 1)
func (w Waveform) Sample(phase float64) float64 {
	switch w {
	case Square:
		return rectangleWave(0.5, phase)
	case Triangle:
		return triangleWave(phase)
	case Sawtooth:
		if phase <= 0.5 {
			return lerp(0, 1, phase/0.5)
		}
		return lerp(-1, 0, (phase-0.5)/0.5)
	default:
		return math.Sin(phase * 2 * math.Pi)
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func triangleWave(t float64) float64 {
	switch {
	case t <= 0.25:
		return lerp(0, 1, t/0.25)
	case t <= 0.75:
		return lerp(1, -1, (t-0.25)/0.5)
	default:
		return lerp(-1, 0, (t-0.75)/0.25)
	}
}

func rectangleWave(dutyCycle, t float64) float64 {
	if t < dutyCycle {
		return 1
	}
	return -1
}
