package job

import "testing"

func TestStitchDropsOverlapDuplication(t *testing.T) {
	got := stitch([]string{
		"the quick brown fox jumps over",
		"jumps over the lazy dog and keeps",
		"and keeps running home",
	})
	want := "the quick brown fox jumps over the lazy dog and keeps running home"
	if got != want {
		t.Fatalf("stitch = %q, want %q", got, want)
	}
}

func TestStitchIgnoresCaseAndPunctuation(t *testing.T) {
	got := stitch([]string{
		"It was a dark night.",
		"Dark night, the wind howled",
	})
	want := "It was a dark night. the wind howled"
	if got != want {
		t.Fatalf("stitch = %q, want %q", got, want)
	}
}

func TestStitchNoOverlapConcatenates(t *testing.T) {
	got := stitch([]string{"first part", "second part"})
	if got != "first part second part" {
		t.Fatalf("stitch = %q", got)
	}
}

func TestStitchSkipsEmptyChunks(t *testing.T) {
	got := stitch([]string{"", "only text", "  ", ""})
	if got != "only text" {
		t.Fatalf("stitch = %q", got)
	}
}

func TestStitchSingleChunk(t *testing.T) {
	if got := stitch([]string{"  hello world  "}); got != "hello world" {
		t.Fatalf("stitch = %q", got)
	}
}

func TestStitchFullyDuplicatedChunk(t *testing.T) {
	got := stitch([]string{"same words here", "same words here"})
	if got != "same words here" {
		t.Fatalf("stitch = %q", got)
	}
}
