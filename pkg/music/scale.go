package music

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScale is returned for scale names that are not registered
var ErrUnknownScale = errors.New("unknown scale")

// Scale is an ordered set of intervals spanning one octave
type Scale struct {
	Name      string
	Intervals []Semitones
}

// Built-in scales
var (
	Major           = Scale{Name: "major", Intervals: []Semitones{Tone, Tone, Semitone, Tone, Tone, Tone, Semitone}}
	MinorHarmonic   = Scale{Name: "minor-harmonic", Intervals: []Semitones{Tone, Semitone, Tone, Tone, Semitone, 3, Semitone}}
	NaturalMinor    = Scale{Name: "minor", Intervals: []Semitones{Tone, Semitone, Tone, Tone, Semitone, Tone, Tone}}
	MajorPentatonic = Scale{Name: "major-pentatonic", Intervals: []Semitones{Tone, Tone, 3, Tone, 3}}
	MinorPentatonic = Scale{Name: "minor-pentatonic", Intervals: []Semitones{3, Tone, Tone, 3, Tone}}
	Chromatic       = Scale{Name: "chromatic", Intervals: []Semitones{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}
)

var scales = []Scale{Major, MinorHarmonic, NaturalMinor, MajorPentatonic, MinorPentatonic, Chromatic}

// Scales returns all built-in scales
func Scales() []Scale {
	out := make([]Scale, len(scales))
	copy(out, scales)
	return out
}

// LookupScale finds a scale by name, ignoring case, underscores and spaces
func LookupScale(name string) (Scale, error) {
	key := normalizeScaleName(name)
	for _, s := range scales {
		if normalizeScaleName(s.Name) == key {
			return s, nil
		}
	}
	return Scale{}, fmt.Errorf("%q: %w", name, ErrUnknownScale)
}

func normalizeScaleName(name string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Span returns the total interval covered by the scale
func (s Scale) Span() Semitones {
	var total Semitones
	for _, i := range s.Intervals {
		total += i
	}
	return total
}

// Notes returns the scale notes from the tonic up to and including the top note
func (s Scale) Notes(tonic Note) ([]Note, error) {
	notes := make([]Note, 0, len(s.Intervals)+1)
	notes = append(notes, tonic)
	current := tonic
	for _, interval := range s.Intervals {
		next, err := current.Transpose(interval)
		if err != nil {
			return nil, fmt.Errorf("%s scale from %s: %w", s.Name, tonic, err)
		}
		notes = append(notes, next)
		current = next
	}
	return notes, nil
}

// UpAndDown returns the scale ascending and then descending back to the tonic
func (s Scale) UpAndDown(tonic Note) ([]Note, error) {
	up, err := s.Notes(tonic)
	if err != nil {
		return nil, err
	}
	out := make([]Note, 0, len(up)*2-1)
	out = append(out, up...)
	for i := len(up) - 2; i >= 0; i-- {
		out = append(out, up[i])
	}
	return out, nil
}
