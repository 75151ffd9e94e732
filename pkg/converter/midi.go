package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/score"
)

const (
	defaultTicksPerQuarter = 480
	drumChannel            = 9
	gridPerQuarter         = 16 // sixty-fourth notes
	// a tempo event holds 1 to 0xFFFFFF microseconds per quarter note
	minQuarterBPM = 60000000.0 / 0xFFFFFF
	maxQuarterBPM = 60000000.0
)

// ImportedTitle names MIDI files without a sequence name
const ImportedTitle = "Imported MIDI"

// MIDI errors
var (
	ErrNoNotes         = errors.New("no notes found")
	ErrTempoOutOfRange = errors.New("tempo out of MIDI range")
)

// MIDIConverter handles MIDI file parsing and generation
type MIDIConverter struct {
	ticksPerQuarter uint16
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: defaultTicksPerQuarter,
	}
}

// ParseMIDIFile reads a MIDI file into a score
func (m *MIDIConverter) ParseMIDIFile(filename string) (*score.Score, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return m.ParseMIDI(data)
}

type midiNote struct {
	start, end int64
	key        uint8
	velocity   uint8
}

type noteKey struct {
	track, channel, key uint8
}

// ParseMIDI parses MIDI data into a score.
// Notes are quantised to sixty-fourth notes; notes sharing start and end form chords,
// and overlapping notes are spread over separate parts.
func (m *MIDIConverter) ParseMIDI(data []byte) (*score.Score, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	// Get ticks per quarter note from time format
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok && mt.Resolution() > 0 {
		m.ticksPerQuarter = mt.Resolution()
	}

	sc := score.New("")
	quarterBPM := 0.0
	var notes []midiNote

	for ti, track := range s.Tracks {
		open := make(map[noteKey][]midiNote)
		var currentTick int64

		for _, ev := range track {
			currentTick += int64(ev.Delta)
			msg := ev.Message

			var (
				channel, key, velocity uint8
				num, denom             uint8
				bpm                    float64
				text                   string
			)
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				k := noteKey{track: uint8(ti), channel: channel, key: key}
				open[k] = append(open[k], midiNote{start: currentTick, key: key, velocity: velocity})
			case msg.GetNoteEnd(&channel, &key):
				k := noteKey{track: uint8(ti), channel: channel, key: key}
				pending := open[k]
				if len(pending) == 0 {
					continue
				}
				n := pending[0]
				open[k] = pending[1:]
				n.end = currentTick
				notes = append(notes, n)
			case msg.GetMetaTempo(&bpm):
				if quarterBPM == 0 && bpm > 0 && !math.IsInf(bpm, 0) {
					quarterBPM = bpm
				}
			case msg.GetMetaMeter(&num, &denom):
				if ts, err := music.ParseTimeSignature(fmt.Sprintf("%d/%d", num, denom)); err == nil {
					sc.TimeSignature = ts
				}
			// only the first track names the sequence
			case ti == 0 && sc.Title == "" && msg.GetMetaTrackName(&text):
				// score titles are a single line
				sc.Title = strings.Join(strings.Fields(text), " ")
			}
		}
	}

	if len(notes) == 0 {
		return nil, ErrNoNotes
	}
	if sc.Title == "" {
		sc.Title = ImportedTitle
	}
	if quarterBPM == 0 {
		quarterBPM = score.DefaultBPM
	}
	sc.BPM = roundBPM(quarterBPM * float64(sc.TimeSignature.Unit.Divisor()) / 4)

	m.buildParts(sc, m.quantize(notes))
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func roundBPM(bpm float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(bpm, 'f', 2, 64), 64)
	return v
}

// quantize snaps notes to the sixty-fourth grid; start and end are returned in grid units
func (m *MIDIConverter) quantize(notes []midiNote) []midiNote {
	grid := float64(m.ticksPerQuarter) / gridPerQuarter
	out := make([]midiNote, 0, len(notes))
	for _, n := range notes {
		start := int64(float64(n.start)/grid + 0.5)
		end := int64(float64(n.end)/grid + 0.5)
		if end <= start {
			end = start + 1
		}
		out = append(out, midiNote{start: start, end: end, key: n.key, velocity: n.velocity})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		if out[i].end != out[j].end {
			return out[i].end < out[j].end
		}
		return out[i].key < out[j].key
	})
	return out
}

type chordEvent struct {
	start, end int64
	keys       []music.Note
}

type lane struct {
	events []chordEvent
	end    int64
}

// buildParts groups notes into chords and lanes and writes one part per lane
func (m *MIDIConverter) buildParts(sc *score.Score, notes []midiNote) {
	var chords []chordEvent
	for _, n := range notes {
		last := len(chords) - 1
		if last >= 0 && chords[last].start == n.start && chords[last].end == n.end {
			if chords[last].keys[len(chords[last].keys)-1] != music.Note(n.key) {
				chords[last].keys = append(chords[last].keys, music.Note(n.key))
			}
			continue
		}
		chords = append(chords, chordEvent{start: n.start, end: n.end, keys: []music.Note{music.Note(n.key)}})
	}

	var lanes []*lane
	var total int64
	for _, c := range chords {
		var target *lane
		for _, l := range lanes {
			if l.end <= c.start {
				target = l
				break
			}
		}
		if target == nil {
			target = &lane{}
			lanes = append(lanes, target)
		}
		target.events = append(target.events, c)
		target.end = c.end
		if c.end > total {
			total = c.end
		}
	}

	for i, l := range lanes {
		name := score.DefaultPart
		if len(lanes) > 1 {
			name = fmt.Sprintf("voice%d", i+1)
		}

		var steps []score.Step
		var cursor int64
		for _, c := range l.events {
			steps = append(steps, rests(c.start-cursor)...)
			steps = append(steps, tiedSteps(c.keys, c.end-c.start)...)
			cursor = c.end
		}
		steps = append(steps, rests(total-cursor)...)
		sc.AddPart(name, steps...)
	}
}

// splitGrid decomposes a length in sixty-fourth notes into the fewest note lengths
func splitGrid(units int64) []music.Beat {
	var out []music.Beat
	for units > 0 {
		for _, b := range music.Beats() {
			size := int64(64 / b.Divisor())
			if size <= units {
				out = append(out, b)
				units -= size
				break
			}
		}
	}
	return out
}

func rests(units int64) []score.Step {
	var steps []score.Step
	for _, b := range splitGrid(units) {
		steps = append(steps, score.Rest(b))
	}
	return steps
}

func tiedSteps(keys []music.Note, units int64) []score.Step {
	lengths := splitGrid(units)
	steps := make([]score.Step, 0, len(lengths))
	for i, b := range lengths {
		var st score.Step
		if len(keys) == 1 {
			st = score.Note(keys[0], b)
		} else {
			st = score.Chord(keys, b)
		}
		st.Slur = i < len(lengths)-1
		steps = append(steps, st)
	}
	return steps
}

// GenerateMIDI creates a format 1 MIDI file from a score:
// a conductor track followed by one track per part
func (m *MIDIConverter) GenerateMIDI(sc *score.Score) ([]byte, error) {
	if sc == nil {
		return nil, errors.New("nil score")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	// MIDI tempo counts quarter notes
	unit := sc.TimeSignature.Unit.Divisor()
	quarterBPM := sc.BPM * 4 / float64(unit)
	if quarterBPM < minQuarterBPM || quarterBPM > maxQuarterBPM {
		return nil, fmt.Errorf("%w: %v bpm", ErrTempoOutOfRange, sc.BPM)
	}

	var conductor smf.Track
	if sc.Title != "" {
		conductor.Add(0, smf.MetaTrackSequenceName(sc.Title))
	}
	conductor.Add(0, smf.MetaTempo(quarterBPM))
	conductor.Add(0, smf.MetaTimeSig(uint8(sc.TimeSignature.BeatsPerMeasure), uint8(unit), 24, 8))
	conductor.Close(0)

	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	for i, part := range sc.Parts {
		track := m.partTrack(part, partChannel(i))
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track %s: %w", part.Name, err)
		}
	}

	// Write to buffer
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// partChannel assigns channels in order, skipping the General MIDI drum channel
func partChannel(i int) uint8 {
	ch := i % 15
	if ch >= drumChannel {
		ch++
	}
	return uint8(ch)
}

func (m *MIDIConverter) ticks(b music.Beat) uint32 {
	return uint32(m.ticksPerQuarter) * 4 / uint32(b.Divisor())
}

func (m *MIDIConverter) partTrack(part score.Part, channel uint8) smf.Track {
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(part.Name))

	velocity := uint8(int(part.Volume) * 127 / 255)
	if velocity == 0 {
		velocity = 1
	}

	var pending uint32
	steps := part.Steps
	for i := 0; i < len(steps); i++ {
		step := steps[i]
		length := m.ticks(step.Length)

		if step.Kind == score.StepRest {
			pending += length
			continue
		}

		// Slurred steps with the same pitches sound as one held note
		for step.Slur && i+1 < len(steps) && sameNotes(step, steps[i+1]) {
			i++
			length += m.ticks(steps[i].Length)
			step = steps[i]
		}

		for j, n := range step.Notes {
			delta := uint32(0)
			if j == 0 {
				delta = pending
			}
			track.Add(delta, midi.NoteOn(channel, uint8(n), velocity))
		}
		for j, n := range step.Notes {
			delta := uint32(0)
			if j == 0 {
				delta = length
			}
			track.Add(delta, midi.NoteOff(channel, uint8(n)))
		}
		pending = 0
	}

	track.Close(pending)
	return track
}

func sameNotes(a, b score.Step) bool {
	if b.Kind == score.StepRest || len(a.Notes) != len(b.Notes) {
		return false
	}
	for i := range a.Notes {
		if a.Notes[i] != b.Notes[i] {
			return false
		}
	}
	return true
}

// WriteMIDIFile writes a score to a MIDI file
func (m *MIDIConverter) WriteMIDIFile(sc *score.Score, filename string) error {
	data, err := m.GenerateMIDI(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
