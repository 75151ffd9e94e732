// Package converter provides conversion between score text, MIDI and WAV
package converter

import (
	"github.com/james-see/wavetone/pkg/sequencer"
)

// Options control how scores are sequenced and rendered
type Options struct {
	Sequence sequencer.Options
	Render   sequencer.RenderConfig
}

// DefaultOptions returns the default render settings
func DefaultOptions() Options {
	return Options{Render: sequencer.DefaultRenderConfig()}
}

// Converter handles format conversions
type Converter struct {
	opts Options
}

// New creates a new Converter with the specified options
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// GetOptions returns the current options
func (c *Converter) GetOptions() Options {
	return c.opts
}

// SetOptions sets the options for conversion
func (c *Converter) SetOptions(opts Options) {
	c.opts = opts
}
