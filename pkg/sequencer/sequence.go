package sequencer

import (
	"fmt"
	"time"

	"github.com/james-see/wavetone/pkg/score"
	"github.com/james-see/wavetone/pkg/synth"
)

// Options adjust how a score is sequenced
type Options struct {
	// Waveform replaces every part's waveform when set
	Waveform *synth.Waveform
	// BPM replaces the score tempo when positive
	BPM float64
	// Release is the gap after non-slurred notes; zero means DefaultRelease, Legato means none
	Release time.Duration
}

// Legato as Options.Release plays every note into the next one
const Legato time.Duration = -1

// Sequence lays out every part of a score on a shared timeline
func Sequence(s *score.Score, opts Options) (*Timeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	settings := s.Settings()
	if opts.BPM > 0 {
		settings.BPM = opts.BPM
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}
	release := opts.Release
	if release == 0 {
		release = DefaultRelease
	}

	tl := NewTimeline()
	for _, part := range s.Parts {
		cfg := InstrumentConfig{
			Waveform: part.Waveform,
			Volume:   part.Volume,
			Release:  release,
		}
		if opts.Waveform != nil {
			cfg.Waveform = *opts.Waveform
		}

		inst := NewInstrument(tl, settings, cfg)
		for idx, step := range part.Steps {
			if err := playStep(inst, step); err != nil {
				return nil, fmt.Errorf("part %s step %d: %w", part.Name, idx, err)
			}
		}
		inst.Finish()
	}
	return tl, nil
}

func playStep(inst *Instrument, step score.Step) error {
	switch step.Kind {
	case score.StepRest:
		inst.Rest(step.Length)
	case score.StepChord:
		if step.Slur {
			return inst.PlayChordWithoutRelease(step.Notes, step.Length)
		}
		return inst.PlayChord(step.Notes, step.Length)
	default:
		if step.Slur {
			inst.PlayNoteWithoutRelease(step.Notes[0], step.Length)
		} else {
			inst.PlayNote(step.Notes[0], step.Length)
		}
	}
	return nil
}
