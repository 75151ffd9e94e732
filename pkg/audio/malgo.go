package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/james-see/wavetone/pkg/logger"
)

// MalgoBackend plays through miniaudio
type MalgoBackend struct {
	ctx    *malgo.AllocatedContext
	mu     sync.Mutex
	closed bool
}

func newMalgoBackend() (Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init playback context: %w", err)
	}
	return &MalgoBackend{ctx: ctx}, nil
}

// Name returns the backend name
func (b *MalgoBackend) Name() string {
	return "malgo"
}

// Play streams the source to the default device.
// Blocks until the source is drained or ctx is cancelled.
func (b *MalgoBackend) Play(ctx context.Context, src Source) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("backend is closed")
	}
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	var readErr error

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(src.Channels())
	deviceConfig.SampleRate = uint32(src.SampleRate())
	deviceConfig.PeriodSizeInFrames = 512
	deviceConfig.Periods = 2

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, frameCount uint32) {
			need := int(frameCount) * src.Channels() * bytesPerSample
			out := outputSamples[:need]
			n, err := io.ReadFull(src, out)
			// pad the final period with silence
			for i := n; i < need; i++ {
				out[i] = 0
			}
			if err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					readErr = err
				}
				once.Do(func() { close(done) })
			}
		},
	}

	device, err := malgo.InitDevice(b.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("failed to init playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	defer device.Stop()

	select {
	case <-ctx.Done():
		logger.Debugf("malgo playback cancelled")
		return ctx.Err()
	case <-done:
		logger.Debugf("malgo playback finished")
		return readErr
	}
}

// Close releases the playback context
func (b *MalgoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.ctx != nil {
		err := b.ctx.Uninit()
		b.ctx.Free()
		b.ctx = nil
		return err
	}
	return nil
}
