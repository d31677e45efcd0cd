package job

import (
	"time"

	"audioink/internal/engine"
	"audioink/internal/history"
)

// State names one phase of the job state machine.
type State string

const (
	StateIdle           State = "idle"
	StateResolvingInput State = "resolving_input"
	StateAcquiringModel State = "acquiring_model"
	StateDecoding       State = "decoding"
	StateInferring      State = "inferring"
	StateStitching      State = "stitching"
	StatePersisted      State = "persisted"
	StateFailed         State = "failed"
	StateCancelled      State = "cancelled"
)

// Terminal reports whether the state ends a job.
func (s State) Terminal() bool {
	return s == StatePersisted || s == StateFailed || s == StateCancelled
}

// Event is one progress update. Fractions are non-decreasing within a job.
// ChunkText carries the text of a just-finished chunk so callers can render
// the transcript progressively.
type Event struct {
	State      State
	Fraction   float64
	Message    string
	ChunkIndex int
	ChunkCount int
	ChunkText  string
}

// Result is the outcome of a completed job. Segment times are absolute
// offsets into the original audio.
type Result struct {
	EntryID        string
	SourceName     string
	SourceType     history.SourceType
	Text           string
	Segments       []engine.Segment
	Language       string
	AudioDuration  time.Duration
	ProcessingTime time.Duration
}
