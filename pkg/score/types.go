// Package score provides the score model and its text format
package score

import (
	"errors"
	"fmt"
	"time"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/synth"
)

// Defaults applied to scores that do not set them
const (
	DefaultBPM    = 120.0
	DefaultVolume = uint8(200)
	DefaultPart   = "main"
)

// StepKind distinguishes notes, chords and rests
type StepKind int

const (
	StepNote StepKind = iota
	StepChord
	StepRest
)

// Step is one event of a part
type Step struct {
	Kind   StepKind
	Notes  []music.Note
	Length music.Beat
	Slur   bool // no release gap before the next step
}

// Part is a single instrument line
type Part struct {
	Name     string
	Waveform synth.Waveform
	Volume   uint8
	Steps    []Step
}

// Score is a complete piece
type Score struct {
	Title         string
	BPM           float64
	TimeSignature music.TimeSignature
	Waveform      synth.Waveform
	Volume        uint8
	Parts         []Part
}

// New creates an empty score with default settings
func New(title string) *Score {
	return &Score{
		Title:         title,
		BPM:           DefaultBPM,
		TimeSignature: music.CommonTime,
		Waveform:      synth.Sine,
		Volume:        DefaultVolume,
	}
}

// Note creates a single-note step
func Note(n music.Note, length music.Beat) Step {
	return Step{Kind: StepNote, Notes: []music.Note{n}, Length: length}
}

// Chord creates a chord step
func Chord(notes []music.Note, length music.Beat) Step {
	return Step{Kind: StepChord, Notes: append([]music.Note(nil), notes...), Length: length}
}

// Rest creates a rest step
func Rest(length music.Beat) Step {
	return Step{Kind: StepRest, Length: length}
}

// Settings returns the score tempo and meter
func (s *Score) Settings() music.BeatSettings {
	return music.BeatSettings{BPM: s.BPM, TimeSignature: s.TimeSignature}
}

// AddPart appends a part using the score's waveform and volume
func (s *Score) AddPart(name string, steps ...Step) *Part {
	s.Parts = append(s.Parts, Part{
		Name:     name,
		Waveform: s.Waveform,
		Volume:   s.Volume,
		Steps:    steps,
	})
	return &s.Parts[len(s.Parts)-1]
}

// Validate checks the score can be sequenced
func (s *Score) Validate() error {
	if err := s.Settings().Validate(); err != nil {
		return err
	}
	if len(s.Parts) == 0 {
		return errors.New("score has no parts")
	}
	for _, p := range s.Parts {
		for i, step := range p.Steps {
			if step.Length.Divisor() == 0 {
				return fmt.Errorf("part %s step %d: %w", p.Name, i, music.ErrInvalidBeat)
			}
			switch step.Kind {
			case StepNote:
				if len(step.Notes) != 1 {
					return fmt.Errorf("part %s step %d: note step needs exactly one note", p.Name, i)
				}
			case StepChord:
				if len(step.Notes) == 0 {
					return fmt.Errorf("part %s step %d: empty chord", p.Name, i)
				}
			}
		}
	}
	return nil
}

// Beats returns the length of the part in beat units
func (p *Part) Beats(settings music.BeatSettings) float64 {
	c := music.NewBeatCounter(settings)
	for _, step := range p.Steps {
		c.Increment(step.Length)
	}
	return c.TotalBeats()
}

// Duration returns the length of the longest part
func (s *Score) Duration() time.Duration {
	settings := s.Settings()
	var longest float64
	for i := range s.Parts {
		if b := s.Parts[i].Beats(settings); b > longest {
			longest = b
		}
	}
	return time.Duration(longest * settings.SecondsPerBeat() * float64(time.Second))
}

// Clone returns a deep copy of the score
func (s *Score) Clone() *Score {
	c := *s
	c.Parts = make([]Part, len(s.Parts))
	for i, p := range s.Parts {
		c.Parts[i] = p
		c.Parts[i].Steps = make([]Step, len(p.Steps))
		for j, step := range p.Steps {
			step.Notes = append([]music.Note(nil), step.Notes...)
			c.Parts[i].Steps[j] = step
		}
	}
	return &c
}
