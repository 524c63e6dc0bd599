package audio

import "sync"

// SampleRing is a bounded buffer of interleaved stereo samples. When full,
// the oldest frame is dropped to make room.
//
// The emulator goroutine pushes and an audio backend may drain it from
// another goroutine, so it is the only locked structure in the APU.
type SampleRing struct {
	mu      sync.Mutex
	buf     []int16
	start   int
	n       int
	dropped uint64
}

// NewSampleRing creates a ring holding up to frames stereo frames.
func NewSampleRing(frames int) *SampleRing {
	if frames < 1 {
		frames = 1
	}
	return &SampleRing{buf: make([]int16, frames*2)}
}

// Push appends one stereo frame.
func (r *SampleRing) Push(left, right int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.n == len(r.buf) {
		r.start = (r.start + 2) % len(r.buf)
		r.n -= 2
		r.dropped++
	}
	i := (r.start + r.n) % len(r.buf)
	r.buf[i] = left
	r.buf[i+1] = right
	r.n += 2
}

// Read drains up to len(dst) samples (rounded down to whole frames) into dst
// and returns how many were written.
func (r *SampleRing) Read(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := min(len(dst)&^1, r.n)
	for i := range count {
		dst[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	r.start = (r.start + count) % len(r.buf)
	r.n -= count
	return count
}

// Len is the number of buffered samples (twice the number of frames).
func (r *SampleRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Dropped counts frames discarded because the consumer fell behind.
func (r *SampleRing) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Reset discards all buffered samples.
func (r *SampleRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start, r.n = 0, 0
}
