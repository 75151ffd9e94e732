package sequencer

import (
	"errors"
	"time"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/synth"
)

// DefaultRelease is the silence left between notes that are not slurred
const DefaultRelease = 50 * time.Millisecond

// ErrEmptyChord is returned when a chord has no notes
var ErrEmptyChord = errors.New("chord has no notes")

// InstrumentConfig sets the sound of an instrument
type InstrumentConfig struct {
	Waveform synth.Waveform
	Volume   uint8
	Release  time.Duration
}

// Instrument writes the notes of one part onto a timeline.
// Positions come from beat arithmetic, so instruments sharing
// a timeline stay aligned regardless of length.
type Instrument struct {
	timeline *Timeline
	counter  *music.BeatCounter
	offset   float64
	voices   []int
	config   InstrumentConfig
}

// NewInstrument creates an instrument positioned at the start of the timeline
func NewInstrument(tl *Timeline, settings music.BeatSettings, config InstrumentConfig) *Instrument {
	return &Instrument{
		timeline: tl,
		counter:  music.NewBeatCounter(settings),
		config:   config,
	}
}

// Now returns the instrument's position in seconds
func (i *Instrument) Now() float64 {
	return i.offset + i.counter.TotalSeconds()
}

// TotalMeasures returns how many measures have been played
func (i *Instrument) TotalMeasures() float64 {
	return i.counter.TotalMeasures()
}

func (i *Instrument) voice(idx int) int {
	for len(i.voices) <= idx {
		i.voices = append(i.voices, i.timeline.NewVoice(i.Now(), i.config.Waveform))
	}
	return i.voices[idx]
}

// PlayNote plays a note followed by a short release gap
func (i *Instrument) PlayNote(n music.Note, length music.Beat) {
	i.playNotes([]music.Note{n}, length, i.config.Release)
}

// PlayNoteWithoutRelease plays a note that runs straight into the next one
func (i *Instrument) PlayNoteWithoutRelease(n music.Note, length music.Beat) {
	i.playNotes([]music.Note{n}, length, 0)
}

// PlayChord plays every note of the chord on its own voice
func (i *Instrument) PlayChord(notes []music.Note, length music.Beat) error {
	if len(notes) == 0 {
		return ErrEmptyChord
	}
	i.playNotes(notes, length, i.config.Release)
	return nil
}

// PlayChordWithoutRelease plays a chord that runs straight into the next step
func (i *Instrument) PlayChordWithoutRelease(notes []music.Note, length music.Beat) error {
	if len(notes) == 0 {
		return ErrEmptyChord
	}
	i.playNotes(notes, length, 0)
	return nil
}

func (i *Instrument) playNotes(notes []music.Note, length music.Beat, release time.Duration) {
	start := i.Now()
	duration := i.counter.Seconds(length)

	for idx, n := range notes {
		v := i.voice(idx)
		i.timeline.Add(Event{At: start, Voice: v, Kind: EventFrequency, Shape: synth.Shape{Frequency: n.Frequency()}})
		i.timeline.Add(Event{At: start, Voice: v, Kind: EventVolume, Shape: synth.Shape{Volume: i.config.Volume}})
	}
	for _, v := range i.voices[len(notes):] {
		i.timeline.Add(Event{At: start, Voice: v, Kind: EventVolume})
	}

	i.counter.Increment(length)

	if release > 0 {
		gap := release.Seconds()
		if gap > duration/2 {
			gap = duration / 2
		}
		for _, v := range i.voices[:len(notes)] {
			i.timeline.Add(Event{At: start + duration - gap, Voice: v, Kind: EventVolume})
		}
	}
	i.timeline.Extend(i.Now())
}

// Rest silences the instrument for the given length
func (i *Instrument) Rest(length music.Beat) {
	at := i.Now()
	for _, v := range i.voices {
		i.timeline.Add(Event{At: at, Voice: v, Kind: EventVolume})
	}
	i.counter.Increment(length)
	i.timeline.Extend(i.Now())
}

// Finish releases every voice at the current position
func (i *Instrument) Finish() {
	at := i.Now()
	for _, v := range i.voices {
		i.timeline.Add(Event{At: at, Voice: v, Kind: EventRelease})
	}
}
