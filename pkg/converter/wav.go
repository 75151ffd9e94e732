package converter

import (
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/james-see/wavetone/pkg/score"
	"github.com/james-see/wavetone/pkg/sequencer"
)

// wavPrecision is the sample size in bytes (16-bit PCM)
const wavPrecision = 2

// ScoreToWAV renders a score to a 16-bit PCM WAV file
func (c *Converter) ScoreToWAV(s *score.Score) ([]byte, error) {
	tl, err := sequencer.Sequence(s, c.opts.Sequence)
	if err != nil {
		return nil, err
	}
	return EncodeWAV(tl, c.opts.Render)
}

// EncodeWAV renders a timeline to WAV bytes
func EncodeWAV(tl *sequencer.Timeline, config sequencer.RenderConfig) ([]byte, error) {
	r, err := sequencer.NewRenderer(tl, config)
	if err != nil {
		return nil, err
	}
	if r.Len() == 0 {
		return nil, sequencer.ErrNothingToRender
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(r.SampleRate()),
		NumChannels: r.Channels(),
		Precision:   wavPrecision,
	}
	var buf seekBuffer
	if err := wav.Encode(&buf, r, format); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	return buf.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to patch its header
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

// Bytes returns the written data
func (b *seekBuffer) Bytes() []byte {
	return b.data
}
