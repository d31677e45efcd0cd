// Package audio decodes local media files into mono PCM suitable for
// inference.
package audio

import "time"

// SampleRate is the fixed rate all decoded audio is resampled to.
const SampleRate = 16000

// Buffer holds decoded mono float32 PCM at SampleRate. It is immutable after
// construction; callers must not modify the returned sample slice.
type Buffer struct {
	samples []float32
}

// NewBuffer wraps samples in a Buffer. The slice is owned by the buffer
// afterwards.
func NewBuffer(samples []float32) *Buffer {
	return &Buffer{samples: samples}
}

// Samples returns the PCM data.
func (b *Buffer) Samples() []float32 {
	if b == nil {
		return nil
	}
	return b.samples
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// Duration returns the audio length at SampleRate.
func (b *Buffer) Duration() time.Duration {
	if b == nil {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / SampleRate
}

// Slice returns the sample range [from, to), clamped to the buffer bounds.
// The returned slice aliases the buffer.
func (b *Buffer) Slice(from, to int) []float32 {
	if b == nil {
		return nil
	}
	if from < 0 {
		from = 0
	}
	if to > len(b.samples) {
		to = len(b.samples)
	}
	if from >= to {
		return nil
	}
	return b.samples[from:to]
}
