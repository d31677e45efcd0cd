// Package history persists completed transcriptions in SQLite.
package history

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SourceType records where a transcription's audio came from.
type SourceType string

const (
	SourceFile     SourceType = "file"
	SourceURL      SourceType = "url"
	SourceCaptions SourceType = "captions"
)

// Entry is one completed transcription.
type Entry struct {
	ID             string
	SourceName     string
	SourceType     SourceType
	Text           string
	WordCount      int
	CharCount      int
	AudioDuration  time.Duration
	ProcessingTime time.Duration
	Model          string
	Language       string
	CreatedAt      time.Time
}

// CountText fills the word and character counts from Text.
func (e *Entry) CountText() {
	e.WordCount = len(strings.Fields(e.Text))
	e.CharCount = utf8.RuneCountInString(e.Text)
}
