package music

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Beat is a note length relative to a whole note
type Beat int

// Note lengths
const (
	Whole Beat = iota
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	SixtyFourth
)

// ErrInvalidBeat is returned when a note length cannot be parsed
var ErrInvalidBeat = errors.New("invalid note length")

var beatInfo = []struct {
	name    string
	symbol  string
	divisor int
}{
	{"whole", "w", 1},
	{"half", "h", 2},
	{"quarter", "q", 4},
	{"eighth", "e", 8},
	{"sixteenth", "s", 16},
	{"thirty-second", "t", 32},
	{"sixty-fourth", "x", 64},
}

// Beats returns all note lengths from longest to shortest
func Beats() []Beat {
	return []Beat{Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth}
}

// Divisor returns how many of this length fit in a whole note
func (b Beat) Divisor() int {
	if b < Whole || b > SixtyFourth {
		return 0
	}
	return beatInfo[b].divisor
}

// String returns the length name
func (b Beat) String() string {
	if b < Whole || b > SixtyFourth {
		return fmt.Sprintf("Beat(%d)", int(b))
	}
	return beatInfo[b].name
}

// Symbol returns the one-letter length used in score text
func (b Beat) Symbol() string {
	if b < Whole || b > SixtyFourth {
		return "?"
	}
	return beatInfo[b].symbol
}

// ParseBeat parses a length given as symbol (q), name (quarter), divisor (4) or fraction (1/4)
func ParseBeat(s string) (Beat, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, "1/")
	for i, info := range beatInfo {
		if key == info.symbol || key == info.name || key == strconv.Itoa(info.divisor) {
			return Beat(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidBeat)
}

// TimeSignature is a meter such as 4/4 or 6/8
type TimeSignature struct {
	BeatsPerMeasure int
	Unit            Beat
}

// CommonTime is 4/4
var CommonTime = TimeSignature{BeatsPerMeasure: 4, Unit: Quarter}

// ParseTimeSignature parses "n/d"
func ParseTimeSignature(s string) (TimeSignature, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q", s)
	}
	unit, err := ParseBeat(den)
	if err != nil {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q: %w", s, err)
	}
	return TimeSignature{BeatsPerMeasure: n, Unit: unit}, nil
}

// String returns the n/d form
func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.BeatsPerMeasure, ts.Unit.Divisor())
}

// BeatSettings holds tempo and meter
type BeatSettings struct {
	BPM           float64
	TimeSignature TimeSignature
}

// ErrInvalidBPM is returned for tempos that are not positive finite numbers
var ErrInvalidBPM = errors.New("bpm must be a positive number")

// ValidateBPM rejects zero, negative, NaN and infinite tempos
func ValidateBPM(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidBPM, bpm)
	}
	return nil
}

// Validate checks that tempo and meter are usable
func (s BeatSettings) Validate() error {
	if err := ValidateBPM(s.BPM); err != nil {
		return err
	}
	if s.TimeSignature.BeatsPerMeasure <= 0 || s.TimeSignature.Unit.Divisor() == 0 {
		return fmt.Errorf("invalid time signature %s", s.TimeSignature)
	}
	return nil
}

// SecondsPerBeat returns the duration of one beat unit
func (s BeatSettings) SecondsPerBeat() float64 {
	return 60.0 / s.BPM
}

// BeatCounter tracks the position of one instrument in beats
type BeatCounter struct {
	settings   BeatSettings
	totalBeats float64
}

// NewBeatCounter creates a counter at position zero
func NewBeatCounter(settings BeatSettings) *BeatCounter {
	return &BeatCounter{settings: settings}
}

// Settings returns the counter's tempo and meter
func (c *BeatCounter) Settings() BeatSettings {
	return c.settings
}

// Beats returns how many beat units the given length spans
func (c *BeatCounter) Beats(length Beat) float64 {
	return float64(c.settings.TimeSignature.Unit.Divisor()) / float64(length.Divisor())
}

// Seconds returns the duration of the given length in seconds
func (c *BeatCounter) Seconds(length Beat) float64 {
	return c.settings.SecondsPerBeat() * c.Beats(length)
}

// Duration returns the duration of the given length
func (c *BeatCounter) Duration(length Beat) time.Duration {
	return time.Duration(c.Seconds(length) * float64(time.Second))
}

// Increment advances the counter and returns the seconds spanned by length
func (c *BeatCounter) Increment(length Beat) float64 {
	c.totalBeats += c.Beats(length)
	return c.Seconds(length)
}

// TotalBeats returns the beats counted so far
func (c *BeatCounter) TotalBeats() float64 {
	return c.totalBeats
}

// TotalMeasures returns the measures counted so far
func (c *BeatCounter) TotalMeasures() float64 {
	return c.totalBeats / float64(c.settings.TimeSignature.BeatsPerMeasure)
}

// TotalSeconds returns the elapsed time in seconds
func (c *BeatCounter) TotalSeconds() float64 {
	return c.totalBeats * c.settings.SecondsPerBeat()
}
