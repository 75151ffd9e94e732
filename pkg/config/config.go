// Package config loads wavetone settings from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/sequencer"
	"github.com/james-see/wavetone/pkg/synth"
)

// Config is the full configuration
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Synth   SynthConfig   `yaml:"synth"`
	Tempo   TempoConfig   `yaml:"tempo"`
	Server  ServerConfig  `yaml:"server"`
	Library LibraryConfig `yaml:"library"`
	Log     LogConfig     `yaml:"log"`
}

// AudioConfig controls rendering and playback
type AudioConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	Backend    string  `yaml:"backend"` // oto, malgo or discard
	Gain       float64 `yaml:"gain"`
	TailMs     int     `yaml:"tail_ms"`
	MaxSeconds int     `yaml:"max_seconds"` // longest render allowed
}

// SynthConfig sets the default instrument sound
type SynthConfig struct {
	Waveform  string `yaml:"waveform"`
	Volume    int    `yaml:"volume"`     // 1-255
	ReleaseMs *int   `yaml:"release_ms"` // 0 plays legato
}

// TempoConfig sets tempo and meter for generated scores
type TempoConfig struct {
	BPM           float64 `yaml:"bpm"`
	TimeSignature string  `yaml:"time_signature"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LibraryConfig locates the score database
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultPath returns ~/.wavetone/config.yaml
func DefaultPath() string {
	return filepath.Join(dataDir(), "config.yaml")
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".wavetone"
	}
	return filepath.Join(home, ".wavetone")
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads a YAML config file.
// ${VAR_NAME} references are expanded from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or the default path when empty.
// A missing default file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := Load(DefaultPath())
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func setDefaults(cfg *Config) {
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = sequencer.DefaultSampleRate
	}
	if cfg.Audio.Channels == 0 {
		cfg.Audio.Channels = sequencer.DefaultChannels
	}
	if cfg.Audio.Backend == "" {
		cfg.Audio.Backend = "oto"
	}
	if cfg.Audio.Gain == 0 {
		cfg.Audio.Gain = sequencer.DefaultGain
	}
	if cfg.Audio.TailMs == 0 {
		cfg.Audio.TailMs = int(sequencer.DefaultTail / time.Millisecond)
	}
	if cfg.Audio.MaxSeconds == 0 {
		cfg.Audio.MaxSeconds = int(sequencer.DefaultMaxDuration / time.Second)
	}
	if cfg.Synth.Waveform == "" {
		cfg.Synth.Waveform = synth.Sine.String()
	}
	if cfg.Synth.Volume == 0 {
		cfg.Synth.Volume = 200
	}
	if cfg.Synth.ReleaseMs == nil {
		ms := int(sequencer.DefaultRelease / time.Millisecond)
		cfg.Synth.ReleaseMs = &ms
	}
	if cfg.Tempo.BPM == 0 {
		cfg.Tempo.BPM = 120
	}
	if cfg.Tempo.TimeSignature == "" {
		cfg.Tempo.TimeSignature = music.CommonTime.String()
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Library.Path == "" {
		cfg.Library.Path = filepath.Join(dataDir(), "library.db")
	} else if strings.HasPrefix(cfg.Library.Path, "~/") {
		home, _ := os.UserHomeDir()
		cfg.Library.Path = filepath.Join(home, cfg.Library.Path[2:])
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.MaxSeconds < 0 {
		return fmt.Errorf("audio.max_seconds must be positive, got %d", c.Audio.MaxSeconds)
	}
	if c.Synth.ReleaseMs != nil && *c.Synth.ReleaseMs < 0 {
		return fmt.Errorf("synth.release_ms must not be negative, got %d", *c.Synth.ReleaseMs)
	}
	if c.Synth.Volume < 1 || c.Synth.Volume > synth.MaxVolume {
		return fmt.Errorf("synth.volume must be between 1 and %d, got %d", synth.MaxVolume, c.Synth.Volume)
	}
	if _, err := synth.ParseWaveform(c.Synth.Waveform); err != nil {
		return err
	}
	if _, err := c.Settings(); err != nil {
		return err
	}
	return nil
}

// Render returns the renderer settings
func (c *Config) Render() sequencer.RenderConfig {
	return sequencer.RenderConfig{
		SampleRate:  c.Audio.SampleRate,
		Channels:    c.Audio.Channels,
		Gain:        c.Audio.Gain,
		Tail:        time.Duration(c.Audio.TailMs) * time.Millisecond,
		MaxDuration: time.Duration(c.Audio.MaxSeconds) * time.Second,
	}
}

// Release returns the gap after non-slurred notes
func (c *Config) Release() time.Duration {
	switch {
	case c.Synth.ReleaseMs == nil:
		return sequencer.DefaultRelease
	case *c.Synth.ReleaseMs == 0:
		return sequencer.Legato
	}
	return time.Duration(*c.Synth.ReleaseMs) * time.Millisecond
}

// Waveform returns the configured default waveform
func (c *Config) Waveform() synth.Waveform {
	w, err := synth.ParseWaveform(c.Synth.Waveform)
	if err != nil {
		return synth.Sine
	}
	return w
}

// Volume returns the configured voice volume
func (c *Config) Volume() uint8 {
	return uint8(c.Synth.Volume)
}

// Settings returns the configured tempo and meter
func (c *Config) Settings() (music.BeatSettings, error) {
	ts, err := music.ParseTimeSignature(c.Tempo.TimeSignature)
	if err != nil {
		return music.BeatSettings{}, err
	}
	settings := music.BeatSettings{BPM: c.Tempo.BPM, TimeSignature: ts}
	return settings, settings.Validate()
}
