package synth

// VoiceID identifies a voice in a Registry
type VoiceID uint64

// Registry holds the active voices and mixes them into one signal.
// Voices are mixed in insertion order so output is deterministic.
// A Registry is not safe for concurrent use.
type Registry struct {
	sampleRate   int
	latestID     VoiceID
	order        []VoiceID
	voices       map[VoiceID]*Oscillator
	totalSamples uint64
}

// NewRegistry creates an empty registry
func NewRegistry(sampleRate int) *Registry {
	return &Registry{
		sampleRate: sampleRate,
		voices:     make(map[VoiceID]*Oscillator),
	}
}

// SampleRate returns the sample rate voices are created with
func (r *Registry) SampleRate() int {
	return r.sampleRate
}

// Insert adds a voice with the given target shape
func (r *Registry) Insert(shape Shape) VoiceID {
	r.latestID++
	id := r.latestID
	r.voices[id] = NewOscillator(shape, r.sampleRate)
	r.order = append(r.order, id)
	return id
}

// Get returns the oscillator for a voice
func (r *Registry) Get(id VoiceID) (*Oscillator, bool) {
	o, ok := r.voices[id]
	return o, ok
}

// Modify applies fn to a voice if it exists
func (r *Registry) Modify(id VoiceID, fn func(*Oscillator)) bool {
	o, ok := r.voices[id]
	if !ok {
		return false
	}
	fn(o)
	return true
}

// Release fades a voice out; it is removed by RemoveFinished once silent
func (r *Registry) Release(id VoiceID) bool {
	return r.Modify(id, (*Oscillator).Release)
}

// Remove drops a voice immediately
func (r *Registry) Remove(id VoiceID) bool {
	if _, ok := r.voices[id]; !ok {
		return false
	}
	delete(r.voices, id)
	r.compact()
	return true
}

// RemoveFinished drops released voices that have faded out and returns how many were removed
func (r *Registry) RemoveFinished() int {
	removed := 0
	for _, id := range r.order {
		if r.voices[id].Finished() {
			delete(r.voices, id)
			removed++
		}
	}
	if removed > 0 {
		r.compact()
	}
	return removed
}

func (r *Registry) compact() {
	kept := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.voices[id]; ok {
			kept = append(kept, id)
		}
	}
	r.order = kept
}

// NextSample sums the next sample of every voice
func (r *Registry) NextSample() float64 {
	var value float64
	for _, id := range r.order {
		value += r.voices[id].Next()
	}
	r.totalSamples++
	return value
}

// TotalSamples returns how many samples have been mixed
func (r *Registry) TotalSamples() uint64 {
	return r.totalSamples
}

// Len returns the number of voices
func (r *Registry) Len() int {
	return len(r.order)
}

// Empty reports whether there are no voices
func (r *Registry) Empty() bool {
	return len(r.order) == 0
}
