package media

import (
	"testing"
	"time"
)

func TestParseVTTBasic(t *testing.T) {
	doc := "WEBVTT\n" +
		"\n" +
		"00:00:01.000 --> 00:00:04.000\n" +
		"Hello there.\n" +
		"\n" +
		"00:00:04.500 --> 00:00:07.250\n" +
		"General Kenobi.\n"

	cues := parseVTT(doc)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != time.Second || cues[0].End != 4*time.Second {
		t.Fatalf("first cue timing = %v..%v", cues[0].Start, cues[0].End)
	}
	if cues[0].Text != "Hello there." {
		t.Fatalf("first cue text = %q", cues[0].Text)
	}
	if cues[1].End != 7250*time.Millisecond {
		t.Fatalf("second cue end = %v", cues[1].End)
	}
}

func TestParseVTTStripsTagsAndDedupes(t *testing.T) {
	doc := "WEBVTT\n" +
		"Kind: captions\n" +
		"\n" +
		"00:00:00.000 --> 00:00:02.000\n" +
		"<c>so<00:00:00.500><c> this</c></c> is it\n" +
		"\n" +
		"00:00:02.000 --> 00:00:04.000\n" +
		"so this is it\n" +
		"\n" +
		"00:00:04.000 --> 00:00:06.000\n" +
		"and more\n"

	cues := parseVTT(doc)
	if len(cues) != 2 {
		t.Fatalf("expected deduped cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "so this is it" {
		t.Fatalf("tags not stripped: %q", cues[0].Text)
	}
	if cues[1].Text != "and more" {
		t.Fatalf("second cue = %q", cues[1].Text)
	}
}

func TestParseVTTShortTimestampsAndCueSettings(t *testing.T) {
	doc := "WEBVTT\n" +
		"\n" +
		"cue-1\n" +
		"01:30.500 --> 01:33.000 align:start position:0%\n" +
		"short form\n"

	cues := parseVTT(doc)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	want := time.Minute + 30*time.Second + 500*time.Millisecond
	if cues[0].Start != want {
		t.Fatalf("start = %v, want %v", cues[0].Start, want)
	}
}

func TestParseVTTEmptyDocument(t *testing.T) {
	if cues := parseVTT("WEBVTT\n\nNOTE nothing here\n"); len(cues) != 0 {
		t.Fatalf("expected no cues, got %d", len(cues))
	}
}
