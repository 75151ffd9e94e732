package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/wavetone/pkg/score"
)

// Format represents a file format
type Format string

const (
	FormatScore   Format = "score"
	FormatMIDI    Format = "midi"
	FormatWAV     Format = "wav"
	FormatUnknown Format = "unknown"
)

// ErrUnsupportedConversion is returned for conversions with no path between the formats
var ErrUnsupportedConversion = errors.New("unsupported conversion")

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".score", ".txt":
		return FormatScore
	case ".mid", ".midi":
		return FormatMIDI
	case ".wav":
		return FormatWAV
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) == 0 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if bytes.HasPrefix(data, []byte("MThd")) {
		return FormatMIDI
	}

	// Check for RIFF container
	if bytes.HasPrefix(data, []byte("RIFF")) {
		return FormatWAV
	}

	// Everything else is treated as score text
	return FormatScore
}

// LoadScore reads a score or MIDI file into a score
func (c *Converter) LoadScore(path string) (*score.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}

	var s *score.Score
	switch format {
	case FormatScore:
		s, err = score.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case FormatMIDI:
		s, err = c.MIDIToScore(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: cannot read %s as a score", ErrUnsupportedConversion, format)
	}

	if s.Title == "" || s.Title == ImportedTitle {
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	s, err := c.LoadScore(inputPath)
	if err != nil {
		return err
	}

	outputData, err := c.Encode(s, outputFormat)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	// Write output
	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// Encode writes a score in the given format
func (c *Converter) Encode(s *score.Score, format Format) ([]byte, error) {
	switch format {
	case FormatWAV:
		return c.ScoreToWAV(s)
	case FormatMIDI:
		return c.ScoreToMIDI(s)
	case FormatScore:
		return []byte(score.Format(s)), nil
	default:
		return nil, fmt.Errorf("%w: score to %s", ErrUnsupportedConversion, format)
	}
}

// ScoreToMIDI converts a score to a standard MIDI file
func (c *Converter) ScoreToMIDI(s *score.Score) ([]byte, error) {
	return NewMIDIConverter().GenerateMIDI(s)
}

// MIDIToScore converts MIDI data to a score
func (c *Converter) MIDIToScore(midiData []byte) (*score.Score, error) {
	return NewMIDIConverter().ParseMIDI(midiData)
}

// MIDIToWAV renders MIDI data to WAV
func (c *Converter) MIDIToWAV(midiData []byte) ([]byte, error) {
	s, err := c.MIDIToScore(midiData)
	if err != nil {
		return nil, err
	}
	return c.ScoreToWAV(s)
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"score -> wav",
		"score -> midi",
		"midi -> score",
		"midi -> wav",
	}
}
