package job

import (
	"context"
	"sync"
)

// Handle is the caller's view of a running job. Events are best-effort: slow
// consumers miss intermediate updates rather than stalling the job. Wait
// returns the terminal outcome.
type Handle struct {
	id     string
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	lastFraction float64
	result       *Result
	err          error
}

func newHandle(id string, cancel context.CancelFunc) *Handle {
	return &Handle{
		id:     id,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		cancel: cancel,
		state:  StateIdle,
	}
}

// ID returns the job id.
func (h *Handle) ID() string {
	return h.id
}

// Events returns the progress stream. The channel closes when the job ends.
func (h *Handle) Events() <-chan Event {
	return h.events
}

// Cancel requests cooperative cancellation. The job stops at the next chunk
// boundary or tool invocation; an in-flight chunk finishes first.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the job ends and returns its result or error.
// Cancellation surfaces as context.Canceled.
func (h *Handle) Wait() (*Result, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// State returns the most recently entered state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) emit(event Event) {
	h.mu.Lock()
	h.state = event.State
	if event.Fraction < h.lastFraction {
		event.Fraction = h.lastFraction
	}
	h.lastFraction = event.Fraction
	h.mu.Unlock()

	select {
	case h.events <- event:
	default:
	}
}

func (h *Handle) finish(state State, result *Result, err error) {
	h.mu.Lock()
	h.state = state
	h.result = result
	h.err = err
	h.mu.Unlock()
	close(h.events)
	close(h.done)
}
