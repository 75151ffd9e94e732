// Package sequencer turns scores into timed voice events and renders them to samples
package sequencer

import (
	"sort"

	"github.com/james-see/wavetone/pkg/synth"
)

// EventKind is the kind of change an event applies to a voice
type EventKind int

const (
	EventStart EventKind = iota
	EventFrequency
	EventVolume
	EventRelease
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventFrequency:
		return "frequency"
	case EventVolume:
		return "volume"
	case EventRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Event changes one voice at a point in time
type Event struct {
	At    float64 // seconds from the start
	Voice int
	Kind  EventKind
	Shape synth.Shape
}

// Timeline is an append-only list of voice events
type Timeline struct {
	events []Event
	voices int
	end    float64
}

// NewTimeline creates an empty timeline
func NewTimeline() *Timeline {
	return &Timeline{}
}

// NewVoice allocates a voice that starts silent at the given time
func (t *Timeline) NewVoice(at float64, waveform synth.Waveform) int {
	v := t.voices
	t.voices++
	t.Add(Event{At: at, Voice: v, Kind: EventStart, Shape: synth.Shape{Waveform: waveform}})
	return v
}

// Add appends an event
func (t *Timeline) Add(e Event) {
	t.events = append(t.events, e)
	t.Extend(e.At)
}

// Extend moves the end of the timeline to at least the given time
func (t *Timeline) Extend(at float64) {
	if at > t.end {
		t.end = at
	}
}

// Events returns the events ordered by time; simultaneous events keep insertion order
func (t *Timeline) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At < out[j].At
	})
	return out
}

// End returns the time of the last event in seconds
func (t *Timeline) End() float64 {
	return t.end
}

// Voices returns how many voices have been allocated
func (t *Timeline) Voices() int {
	return t.voices
}

// Len returns the number of events
func (t *Timeline) Len() int {
	return len(t.events)
}
