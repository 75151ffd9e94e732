package converter

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2/wav"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/wavetone/pkg/score"
	"github.com/james-see/wavetone/pkg/sequencer"
)

const melody = `title Test Tune
tempo 120
C4/q D4/q E4/h
`

func testOptions() Options {
	return Options{Render: sequencer.RenderConfig{SampleRate: 8000, Channels: 2, Gain: 0.3, Tail: 250 * time.Millisecond}}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"test.MID", FormatMIDI},
		{"test.score", FormatScore},
		{"test.txt", FormatScore},
		{"test.wav", FormatWAV},
		{"test.seq", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"WAV file", []byte("RIFF\x24\x00\x00\x00WAVE"), FormatWAV},
		{"Score text", []byte("tempo 90\nC4/q\n"), FormatScore},
		{"Empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestConverterOptions(t *testing.T) {
	conv := New(DefaultOptions())
	if conv.GetOptions().Render.SampleRate != sequencer.DefaultSampleRate {
		t.Errorf("GetOptions().Render.SampleRate = %d, want %d", conv.GetOptions().Render.SampleRate, sequencer.DefaultSampleRate)
	}

	conv.SetOptions(testOptions())
	if conv.GetOptions().Render.SampleRate != 8000 {
		t.Error("SetOptions() did not replace the options")
	}
}

func TestScoreToWAV(t *testing.T) {
	s, err := score.ParseString(melody)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	data, err := New(testOptions()).ScoreToWAV(s)
	if err != nil {
		t.Fatalf("ScoreToWAV() error = %v", err)
	}
	if DetectFormatFromContent(data) != FormatWAV {
		t.Fatalf("output is not a RIFF file")
	}

	stream, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("wav.Decode() error = %v", err)
	}
	defer stream.Close()

	if format.SampleRate != 8000 || format.NumChannels != 2 || format.Precision != 2 {
		t.Errorf("format = %+v, want 8000 Hz stereo 16-bit", format)
	}
	// two seconds of music plus the tail
	if want := 8000*2 + 2000; stream.Len() != want {
		t.Errorf("frames = %d, want %d", stream.Len(), want)
	}
}

func TestScoreToMIDIRoundTrip(t *testing.T) {
	s, err := score.ParseString("title Round Trip\ntempo 90\nC4/q D4/q R/q [C4,E4,G4]/q E4/h\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	conv := New(testOptions())

	data, err := conv.ScoreToMIDI(s)
	if err != nil {
		t.Fatalf("ScoreToMIDI() error = %v", err)
	}
	if DetectFormatFromContent(data) != FormatMIDI {
		t.Fatalf("output is not a MIDI file")
	}

	got, err := conv.MIDIToScore(data)
	if err != nil {
		t.Fatalf("MIDIToScore() error = %v", err)
	}

	if got.Title != "Round Trip" {
		t.Errorf("Title = %q, want %q", got.Title, "Round Trip")
	}
	if got.BPM != 90 {
		t.Errorf("BPM = %v, want 90", got.BPM)
	}
	if len(got.Parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(got.Parts))
	}

	want := []string{"C4/q", "D4/q", "R/q", "[C4,E4,G4]/q", "E4/h"}
	steps := got.Parts[0].Steps
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i, st := range steps {
		if st.String() != want[i] {
			t.Errorf("step %d = %s, want %s", i, st, want[i])
		}
	}
}

func TestMIDIConductorTrack(t *testing.T) {
	s, err := score.ParseString("title Jig #3\ntempo 120\ntime 6/8\nC4/e D4/e E4/e F4/e G4/e A4/e\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	data, err := NewMIDIConverter().GenerateMIDI(s)
	if err != nil {
		t.Fatalf("GenerateMIDI() error = %v", err)
	}

	file, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("smf.ReadFrom() error = %v", err)
	}
	var (
		name       string
		bpm        float64
		num, denom uint8
	)
	for _, ev := range file.Tracks[0] {
		ev.Message.GetMetaTrackName(&name)
		ev.Message.GetMetaTempo(&bpm)
		ev.Message.GetMetaMeter(&num, &denom)
	}
	if name != "Jig #3" {
		t.Errorf("sequence name = %q, want %q", name, "Jig #3")
	}
	if math.Abs(bpm-60) > 0.01 {
		t.Errorf("tempo = %v quarter notes per minute, want 60", bpm)
	}
	if num != 6 || denom != 8 {
		t.Errorf("meter = %d/%d, want 6/8", num, denom)
	}

	got, err := NewMIDIConverter().ParseMIDI(data)
	if err != nil {
		t.Fatalf("ParseMIDI() error = %v", err)
	}
	if got.Title != "Jig #3" || got.BPM != 120 || got.TimeSignature.String() != "6/8" {
		t.Errorf("ParseMIDI() = %q %v %s, want Jig #3 120 6/8", got.Title, got.BPM, got.TimeSignature)
	}
}

func TestGenerateMIDITempoRange(t *testing.T) {
	tests := []struct {
		tempo string
		ok    bool
	}{
		{"2", false},
		{"3.5", false},
		{"4", true},
		{"240", true},
		{"1e9", false},
	}
	for _, tt := range tests {
		s, err := score.ParseString("tempo " + tt.tempo + "\nC4/q\n")
		if err != nil {
			t.Fatalf("ParseString() error = %v", err)
		}
		_, err = NewMIDIConverter().GenerateMIDI(s)
		if tt.ok && err != nil {
			t.Errorf("GenerateMIDI(tempo %s) error = %v", tt.tempo, err)
		}
		if !tt.ok && !errors.Is(err, ErrTempoOutOfRange) {
			t.Errorf("GenerateMIDI(tempo %s) error = %v, want %v", tt.tempo, err, ErrTempoOutOfRange)
		}
	}
}

func TestMIDIMergesSlurredNotes(t *testing.T) {
	s, err := score.ParseString("C4/q~ C4/q D4/q\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	conv := New(testOptions())
	data, err := conv.ScoreToMIDI(s)
	if err != nil {
		t.Fatalf("ScoreToMIDI() error = %v", err)
	}
	got, err := conv.MIDIToScore(data)
	if err != nil {
		t.Fatalf("MIDIToScore() error = %v", err)
	}

	steps := got.Parts[0].Steps
	if len(steps) != 2 || steps[0].String() != "C4/h" {
		t.Errorf("steps = %v, want [C4/h D4/q]", steps)
	}
}

func TestMIDIImportSplitsOverlappingParts(t *testing.T) {
	s, err := score.ParseString("part high\nC5/w\npart low\nC3/h E3/h\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	conv := New(testOptions())
	data, err := conv.ScoreToMIDI(s)
	if err != nil {
		t.Fatalf("ScoreToMIDI() error = %v", err)
	}
	got, err := conv.MIDIToScore(data)
	if err != nil {
		t.Fatalf("MIDIToScore() error = %v", err)
	}
	if len(got.Parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(got.Parts))
	}
	for _, p := range got.Parts {
		if beats := p.Beats(got.Settings()); beats != 4 {
			t.Errorf("part %s spans %v beats, want 4", p.Name, beats)
		}
	}
}

func TestSplitGrid(t *testing.T) {
	tests := []struct {
		units int64
		want  string
	}{
		{64, "w"},
		{48, "hq"},
		{24, "qe"},
		{3, "tx"},
		{0, ""},
	}
	for _, tt := range tests {
		got := ""
		for _, b := range splitGrid(tt.units) {
			got += b.Symbol()
		}
		if got != tt.want {
			t.Errorf("splitGrid(%d) = %q, want %q", tt.units, got, tt.want)
		}
	}
}

func TestParseMIDIInvalid(t *testing.T) {
	if _, err := NewMIDIConverter().ParseMIDI([]byte("not midi")); err == nil {
		t.Error("ParseMIDI() expected error for invalid data")
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tune.score")
	if err := os.WriteFile(input, []byte(melody), 0644); err != nil {
		t.Fatal(err)
	}
	conv := New(testOptions())

	for _, name := range []string{"tune.wav", "tune.mid", "copy.score"} {
		out := filepath.Join(dir, name)
		if err := conv.ConvertFile(input, out); err != nil {
			t.Fatalf("ConvertFile(%s) error = %v", name, err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if got := DetectFormatFromContent(data); got != DetectFormat(name) {
			t.Errorf("%s content format = %v, want %v", name, got, DetectFormat(name))
		}
	}

	s, err := conv.LoadScore(filepath.Join(dir, "tune.mid"))
	if err != nil {
		t.Fatalf("LoadScore(mid) error = %v", err)
	}
	if s.Title != "Test Tune" {
		t.Errorf("Title = %q, want %q", s.Title, "Test Tune")
	}

	if err := conv.ConvertFile(input, filepath.Join(dir, "tune.xyz")); err == nil {
		t.Error("ConvertFile() expected error for unknown output format")
	}
	if err := conv.ConvertFile(filepath.Join(dir, "tune.wav"), filepath.Join(dir, "back.score")); !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("ConvertFile(wav) error = %v, want %v", err, ErrUnsupportedConversion)
	}
}

func TestLoadScoreUsesFileNameAsTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "untitled.score")
	if err := os.WriteFile(path, []byte("A4/q\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := New(testOptions()).LoadScore(path)
	if err != nil {
		t.Fatalf("LoadScore() error = %v", err)
	}
	if s.Title != "untitled" {
		t.Errorf("Title = %q, want %q", s.Title, "untitled")
	}

	s.Title = ""
	midPath := filepath.Join(filepath.Dir(path), "nameless.mid")
	if err := NewMIDIConverter().WriteMIDIFile(s, midPath); err != nil {
		t.Fatalf("WriteMIDIFile() error = %v", err)
	}
	raw, err := NewMIDIConverter().ParseMIDIFile(midPath)
	if err != nil {
		t.Fatalf("ParseMIDIFile() error = %v", err)
	}
	if raw.Title != ImportedTitle {
		t.Errorf("ParseMIDIFile() Title = %q, want %q", raw.Title, ImportedTitle)
	}
	loaded, err := New(testOptions()).LoadScore(midPath)
	if err != nil {
		t.Fatalf("LoadScore(mid) error = %v", err)
	}
	if loaded.Title != "nameless" {
		t.Errorf("LoadScore(mid) Title = %q, want %q", loaded.Title, "nameless")
	}
}

func TestSeekBuffer(t *testing.T) {
	var b seekBuffer
	b.Write([]byte("hello world"))
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("J"))
	if _, err := b.Seek(-5, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("W"))
	if got := string(b.Bytes()); got != "Jello World" {
		t.Errorf("Bytes() = %q, want %q", got, "Jello World")
	}
	if _, err := b.Seek(-100, io.SeekCurrent); err == nil {
		t.Error("Seek() expected error for negative position")
	}
}

func TestGetSupportedConversions(t *testing.T) {
	if got := len(GetSupportedConversions()); got != 4 {
		t.Errorf("GetSupportedConversions() returned %d entries, want 4", got)
	}
}
