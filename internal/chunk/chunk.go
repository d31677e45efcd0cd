// Package chunk splits decoded audio into fixed windows for sequential
// inference.
package chunk

import (
	"time"

	"audioink/internal/audio"
)

const (
	// Window is the nominal chunk length.
	Window = 30 * time.Second
	// Overlap is how much consecutive chunks share, so words spanning a
	// boundary appear in both.
	Overlap = 2 * time.Second
)

// Chunk describes a half-open sample range [Start, End) within a buffer.
type Chunk struct {
	Index int
	Start int // inclusive, in samples
	End   int // exclusive, in samples
}

// Duration returns the chunk length at the decoder sample rate.
func (c Chunk) Duration() time.Duration {
	return time.Duration(c.End-c.Start) * time.Second / audio.SampleRate
}

// Offset returns the chunk start as a duration from the beginning of the
// source audio.
func (c Chunk) Offset() time.Duration {
	return time.Duration(c.Start) * time.Second / audio.SampleRate
}

// Plan produces the chunk list for a buffer of the given sample count.
//
// Audio that fits in a single window yields one chunk with no overlap.
// Otherwise full windows are laid out every Window-Overlap, and the final
// chunk absorbs the remaining tail so it is never shorter than a window:
// 90 seconds of audio yields chunks at 0s, 28s, and 56s, the last one 34
// seconds long.
func Plan(samples int) []Chunk {
	return PlanWith(samples, Window, Overlap)
}

// PlanWith is Plan with explicit window and overlap durations.
func PlanWith(samples int, window, overlap time.Duration) []Chunk {
	if samples <= 0 {
		return nil
	}
	windowSamples := samplesFor(window)
	overlapSamples := samplesFor(overlap)
	if windowSamples <= 0 || overlapSamples >= windowSamples {
		return []Chunk{{Index: 0, Start: 0, End: samples}}
	}
	if samples <= windowSamples {
		return []Chunk{{Index: 0, Start: 0, End: samples}}
	}

	stride := windowSamples - overlapSamples
	var chunks []Chunk
	for start := 0; start+windowSamples <= samples; start += stride {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   start + windowSamples,
		})
	}
	// The tail past the last full window rides along with the final chunk.
	chunks[len(chunks)-1].End = samples
	return chunks
}

func samplesFor(d time.Duration) int {
	return int(d * audio.SampleRate / time.Second)
}
