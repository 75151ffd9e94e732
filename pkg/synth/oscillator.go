package synth

import "math"

// MaxVolume is the loudest voice volume
const MaxVolume = math.MaxUint8

// Shape is the target state of a voice
type Shape struct {
	Waveform  Waveform
	Frequency float64
	Volume    uint8
}

// Oscillator renders one voice sample by sample.
// The current volume moves one step per sample toward the target volume,
// so volume changes never produce clicks.
type Oscillator struct {
	sampleRate int
	phase      float64
	volume     uint8
	delta      float64
	active     bool
	target     Shape
}

// NewOscillator creates an active oscillator that starts silent
func NewOscillator(target Shape, sampleRate int) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		target:     target,
		delta:      phaseDelta(sampleRate, target.Frequency),
		active:     true,
	}
}

func phaseDelta(sampleRate int, frequency float64) float64 {
	if frequency == 0 || sampleRate <= 0 {
		return 0
	}
	return frequency / float64(sampleRate)
}

// Next returns the next sample
func (o *Oscillator) Next() float64 {
	value := o.target.Waveform.Sample(o.phase) * float64(o.volume) / MaxVolume

	o.phase = math.Mod(o.phase+o.delta, 1)
	o.moveToTargetVolume()

	return value
}

func (o *Oscillator) moveToTargetVolume() {
	switch {
	case o.volume < o.target.Volume:
		o.volume++
	case o.volume > o.target.Volume:
		o.volume--
	}
}

// Target returns the shape the oscillator is moving toward
func (o *Oscillator) Target() Shape {
	return o.target
}

// Volume returns the current (ramped) volume
func (o *Oscillator) Volume() uint8 {
	return o.volume
}

// SetTarget replaces the target shape
func (o *Oscillator) SetTarget(target Shape) {
	o.target = target
	o.delta = phaseDelta(o.sampleRate, target.Frequency)
}

// SetFrequency changes the target frequency
func (o *Oscillator) SetFrequency(frequency float64) {
	t := o.target
	t.Frequency = frequency
	o.SetTarget(t)
}

// SetVolume changes the target volume
func (o *Oscillator) SetVolume(volume uint8) {
	o.target.Volume = volume
}

// SetWaveform changes the waveform
func (o *Oscillator) SetWaveform(w Waveform) {
	o.target.Waveform = w
}

// Release fades the voice out and marks it for removal
func (o *Oscillator) Release() {
	o.active = false
	o.target.Volume = 0
}

// Finished reports whether a released voice has faded out completely
func (o *Oscillator) Finished() bool {
	return !o.active && o.volume == 0
}
