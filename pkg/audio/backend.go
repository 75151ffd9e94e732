// Package audio plays rendered sources on the sound card
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Source is interleaved little-endian float32 audio
type Source interface {
	io.Reader
	SampleRate() int
	Channels() int
}

// Backend plays sources on an output device
type Backend interface {
	Name() string
	// Play blocks until the source is exhausted or ctx is cancelled
	Play(ctx context.Context, src Source) error
	Close() error
}

// ErrUnknownBackend is returned by NewBackend for unregistered names
var ErrUnknownBackend = errors.New("unknown audio backend")

// DefaultBackend is used when no backend is named
const DefaultBackend = "oto"

const bytesPerSample = 4

var factories = map[string]func() (Backend, error){
	"oto":     newOtoBackend,
	"malgo":   newMalgoBackend,
	"discard": func() (Backend, error) { return NewDiscard(), nil },
}

// Backends returns the available backend names
func Backends() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend opens the named backend
func NewBackend(name string) (Backend, error) {
	if name == "" {
		name = DefaultBackend
	}
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}
	return factory()
}
