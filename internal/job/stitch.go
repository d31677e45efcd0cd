package job

import (
	"strings"
	"unicode"
)

// maxOverlapWords bounds the suffix/prefix search when joining chunk texts.
// A two second overlap rarely carries more than a dozen words.
const maxOverlapWords = 12

// stitch joins chunk texts in order, dropping the leading words of a chunk
// that repeat the tail of the text so far. The match is heuristic text
// comparison, not audio-exact; a missed match leaves harmless duplication at
// a boundary rather than losing words.
func stitch(texts []string) string {
	var out string
	for _, text := range texts {
		out = joinOverlapping(out, text)
	}
	return strings.TrimSpace(out)
}

func joinOverlapping(acc, next string) string {
	next = strings.TrimSpace(next)
	if next == "" {
		return acc
	}
	if acc == "" {
		return next
	}

	accWords := strings.Fields(acc)
	nextWords := strings.Fields(next)
	limit := maxOverlapWords
	if len(accWords) < limit {
		limit = len(accWords)
	}
	if len(nextWords) < limit {
		limit = len(nextWords)
	}
	for n := limit; n > 0; n-- {
		if wordsMatch(accWords[len(accWords)-n:], nextWords[:n]) {
			nextWords = nextWords[n:]
			break
		}
	}
	if len(nextWords) == 0 {
		return acc
	}
	return acc + " " + strings.Join(nextWords, " ")
}

func wordsMatch(a, b []string) bool {
	for i := range a {
		if normalizeWord(a[i]) != normalizeWord(b[i]) {
			return false
		}
	}
	return true
}

// normalizeWord lowercases and strips surrounding punctuation so "Hello,"
// matches "hello".
func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}))
}
