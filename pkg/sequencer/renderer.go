package sequencer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/james-see/wavetone/pkg/synth"
)

// Default render settings
const (
	DefaultSampleRate  = 44100
	DefaultChannels    = 2
	DefaultGain        = 0.3
	DefaultTail        = 250 * time.Millisecond
	DefaultMaxDuration = 10 * time.Minute

	bytesPerSample = 4
	cleanupEvery   = 1024
)

// RenderConfig describes the output signal
type RenderConfig struct {
	SampleRate int
	Channels   int
	Gain       float64
	Tail       time.Duration
	// MaxDuration rejects longer timelines, tail included; zero means DefaultMaxDuration
	MaxDuration time.Duration
}

// DefaultRenderConfig returns CD-rate stereo output
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		SampleRate:  DefaultSampleRate,
		Channels:    DefaultChannels,
		Gain:        DefaultGain,
		Tail:        DefaultTail,
		MaxDuration: DefaultMaxDuration,
	}
}

type scheduledEvent struct {
	sample int
	Event
}

// Renderer mixes a timeline into samples.
// It can be read as interleaved little-endian float32 frames (io.Reader)
// or pulled as stereo frames through Stream.
type Renderer struct {
	config   RenderConfig
	registry *synth.Registry
	events   []scheduledEvent
	next     int
	voices   map[int]synth.VoiceID
	frame    int
	frames   int
}

// NewRenderer prepares a renderer for the timeline
func NewRenderer(tl *Timeline, config RenderConfig) (*Renderer, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return nil, fmt.Errorf("unsupported channel count %d", config.Channels)
	}
	if config.Gain <= 0 {
		config.Gain = DefaultGain
	}
	if config.Tail < 0 {
		config.Tail = 0
	}
	if config.MaxDuration <= 0 {
		config.MaxDuration = DefaultMaxDuration
	}

	total := tl.End() + config.Tail.Seconds()
	if math.IsNaN(total) || total > config.MaxDuration.Seconds() {
		return nil, fmt.Errorf("%w: %.0fs exceeds %s", ErrTooLong, total, config.MaxDuration)
	}

	rate := float64(config.SampleRate)
	events := tl.Events()
	scheduled := make([]scheduledEvent, len(events))
	for i, e := range events {
		scheduled[i] = scheduledEvent{sample: int(math.Round(e.At * rate)), Event: e}
	}

	return &Renderer{
		config:   config,
		registry: synth.NewRegistry(config.SampleRate),
		events:   scheduled,
		voices:   make(map[int]synth.VoiceID),
		frames:   int(math.Ceil(total * rate)),
	}, nil
}

// SampleRate returns the output sample rate
func (r *Renderer) SampleRate() int {
	return r.config.SampleRate
}

// Channels returns the output channel count
func (r *Renderer) Channels() int {
	return r.config.Channels
}

// Len returns the total number of frames
func (r *Renderer) Len() int {
	return r.frames
}

// Position returns the number of frames rendered so far
func (r *Renderer) Position() int {
	return r.frame
}

// Duration returns the total playing time
func (r *Renderer) Duration() time.Duration {
	return time.Duration(float64(r.frames) / float64(r.config.SampleRate) * float64(time.Second))
}

func (r *Renderer) apply(e Event) {
	switch e.Kind {
	case EventStart:
		r.voices[e.Voice] = r.registry.Insert(e.Shape)
	case EventFrequency:
		r.registry.Modify(r.voices[e.Voice], func(o *synth.Oscillator) { o.SetFrequency(e.Shape.Frequency) })
	case EventVolume:
		r.registry.Modify(r.voices[e.Voice], func(o *synth.Oscillator) { o.SetVolume(e.Shape.Volume) })
	case EventRelease:
		r.registry.Release(r.voices[e.Voice])
	}
}

// Next returns the next mono sample, or false once the timeline is exhausted
func (r *Renderer) Next() (float64, bool) {
	if r.frame >= r.frames {
		return 0, false
	}
	for r.next < len(r.events) && r.events[r.next].sample <= r.frame {
		r.apply(r.events[r.next].Event)
		r.next++
	}

	v := r.registry.NextSample() * r.config.Gain
	r.frame++
	if r.frame%cleanupEvery == 0 {
		r.registry.RemoveFinished()
	}
	return clamp(v), true
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// Read fills p with whole interleaved float32 frames
func (r *Renderer) Read(p []byte) (int, error) {
	if r.frame >= r.frames {
		return 0, io.EOF
	}
	frameBytes := bytesPerSample * r.config.Channels
	if len(p) < frameBytes {
		return 0, io.ErrShortBuffer
	}

	n := 0
	for n+frameBytes <= len(p) {
		v, ok := r.Next()
		if !ok {
			break
		}
		bits := math.Float32bits(float32(v))
		for ch := 0; ch < r.config.Channels; ch++ {
			binary.LittleEndian.PutUint32(p[n:], bits)
			n += bytesPerSample
		}
	}
	return n, nil
}

// Stream fills stereo frames; it satisfies the beep.Streamer interface
func (r *Renderer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v, ok := r.Next()
		if !ok {
			return i, i > 0
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err reports streaming errors; rendering has none
func (r *Renderer) Err() error {
	return nil
}

// Render errors
var (
	ErrNothingToRender = errors.New("nothing to render")
	ErrTooLong         = errors.New("timeline is too long to render")
)

// Render mixes the whole timeline into mono samples
func Render(tl *Timeline, config RenderConfig) ([]float64, error) {
	r, err := NewRenderer(tl, config)
	if err != nil {
		return nil, err
	}
	if r.Len() == 0 {
		return nil, ErrNothingToRender
	}
	out := make([]float64, 0, r.Len())
	for {
		v, ok := r.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, nil
}
