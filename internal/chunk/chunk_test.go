package chunk_test

import (
	"testing"
	"time"

	"audioink/internal/audio"
	"audioink/internal/chunk"
)

func seconds(s int) int {
	return s * audio.SampleRate
}

func TestPlanEmpty(t *testing.T) {
	if got := chunk.Plan(0); got != nil {
		t.Fatalf("expected nil plan, got %v", got)
	}
	if got := chunk.Plan(-10); got != nil {
		t.Fatalf("expected nil plan for negative count, got %v", got)
	}
}

func TestPlanSingleWindow(t *testing.T) {
	chunks := chunk.Plan(seconds(12))
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Start != 0 || c.End != seconds(12) {
		t.Fatalf("unexpected bounds [%d, %d)", c.Start, c.End)
	}
	if c.Duration() != 12*time.Second {
		t.Fatalf("unexpected duration %v", c.Duration())
	}
}

func TestPlanExactWindowBoundary(t *testing.T) {
	chunks := chunk.Plan(seconds(30))
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk for exactly one window, got %d", len(chunks))
	}
}

func TestPlanNinetySeconds(t *testing.T) {
	chunks := chunk.Plan(seconds(90))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantOffsets := []time.Duration{0, 28 * time.Second, 56 * time.Second}
	for i, want := range wantOffsets {
		if got := chunks[i].Offset(); got != want {
			t.Errorf("chunk %d offset = %v, want %v", i, got, want)
		}
	}
	if last := chunks[2]; last.Duration() != 34*time.Second {
		t.Errorf("final chunk duration = %v, want 34s", last.Duration())
	}
	if chunks[2].End != seconds(90) {
		t.Errorf("final chunk must end at the last sample, got %d", chunks[2].End)
	}
}

func TestPlanInvariants(t *testing.T) {
	for _, total := range []int{seconds(31), seconds(45), seconds(60), seconds(90), seconds(123), seconds(600) + 777} {
		chunks := chunk.Plan(total)
		if len(chunks) == 0 {
			t.Fatalf("no chunks for %d samples", total)
		}
		if chunks[0].Start != 0 {
			t.Errorf("first chunk must start at 0, got %d", chunks[0].Start)
		}
		if chunks[len(chunks)-1].End != total {
			t.Errorf("last chunk must end at %d, got %d", total, chunks[len(chunks)-1].End)
		}
		overlap := seconds(2)
		for i := range chunks {
			if chunks[i].Index != i {
				t.Errorf("chunk %d has index %d", i, chunks[i].Index)
			}
			if chunks[i].End <= chunks[i].Start {
				t.Errorf("chunk %d is empty: [%d, %d)", i, chunks[i].Start, chunks[i].End)
			}
			if i == 0 {
				continue
			}
			if chunks[i].Start >= chunks[i-1].End {
				t.Errorf("chunk %d leaves a gap after chunk %d", i, i-1)
			}
			if got := chunks[i-1].End - chunks[i].Start; got < overlap && len(chunks) > 1 {
				t.Errorf("chunks %d/%d overlap %d samples, want at least %d", i-1, i, got, overlap)
			}
		}
	}
}

func TestPlanWithDegenerateOverlap(t *testing.T) {
	// Overlap >= window collapses to a single chunk instead of looping.
	chunks := chunk.PlanWith(seconds(90), 2*time.Second, 2*time.Second)
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0].End != seconds(90) {
		t.Fatalf("expected full coverage, got end %d", chunks[0].End)
	}
}
