package score

import (
	"fmt"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/synth"
)

// ScaleScore builds a score that walks a scale up and back down in quarter notes,
// doubled one octave below
func ScaleScore(tonic music.Note, scale music.Scale, settings music.BeatSettings, waveform synth.Waveform, volume uint8) (*Score, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	lowTonic, err := tonic.Transpose(-music.Octave)
	if err != nil {
		return nil, fmt.Errorf("octave below %s: %w", tonic, err)
	}
	melody, err := scale.UpAndDown(tonic)
	if err != nil {
		return nil, err
	}
	bass, err := scale.UpAndDown(lowTonic)
	if err != nil {
		return nil, err
	}

	s := New(fmt.Sprintf("%s %s scale", tonic, scale.Name))
	s.BPM = settings.BPM
	s.TimeSignature = settings.TimeSignature
	s.Waveform = waveform
	s.Volume = volume

	melodySteps := make([]Step, len(melody))
	bassSteps := make([]Step, len(bass))
	for i := range melody {
		melodySteps[i] = Note(melody[i], music.Quarter)
		bassSteps[i] = Note(bass[i], music.Quarter)
	}
	s.AddPart("melody", melodySteps...)
	s.AddPart("octave", bassSteps...)
	return s, nil
}

// ToneScore builds a score holding a single note
func ToneScore(n music.Note, length music.Beat, settings music.BeatSettings, waveform synth.Waveform, volume uint8) (*Score, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := New(fmt.Sprintf("%s %s", n, waveform))
	s.BPM = settings.BPM
	s.TimeSignature = settings.TimeSignature
	s.Waveform = waveform
	s.Volume = volume
	s.AddPart(DefaultPart, Note(n, length))
	return s, nil
}
