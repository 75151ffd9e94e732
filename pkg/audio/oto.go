package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/james-see/wavetone/pkg/logger"
)

const pollInterval = 10 * time.Millisecond

// oto allows a single context per process
var (
	otoOnce     sync.Once
	otoCtx      *oto.Context
	otoErr      error
	otoRate     int
	otoChannels int
)

func otoContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(sampleRate, channels, oto.FormatFloat32LE)
		if err != nil {
			otoErr = fmt.Errorf("failed to open oto context: %w", err)
			return
		}
		<-ready
		otoCtx, otoRate, otoChannels = ctx, sampleRate, channels
		logger.Debugf("oto context ready: %d Hz, %d channels", sampleRate, channels)
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if sampleRate != otoRate || channels != otoChannels {
		return nil, fmt.Errorf("oto context is fixed at %d Hz %d channels, source is %d Hz %d channels",
			otoRate, otoChannels, sampleRate, channels)
	}
	return otoCtx, nil
}

// OtoBackend plays through github.com/hajimehoshi/oto
type OtoBackend struct{}

func newOtoBackend() (Backend, error) {
	return &OtoBackend{}, nil
}

// Name returns the backend name
func (b *OtoBackend) Name() string {
	return "oto"
}

// Play streams the source to the default device
func (b *OtoBackend) Play(ctx context.Context, src Source) error {
	c, err := otoContext(src.SampleRate(), src.Channels())
	if err != nil {
		return err
	}

	player := c.NewPlayer(src)
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}

// Close releases nothing; the oto context lives for the process
func (b *OtoBackend) Close() error {
	return nil
}
