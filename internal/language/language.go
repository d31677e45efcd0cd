package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto requests language detection from the audio itself.
const Auto = "auto"

type entry struct {
	code    string   // ISO 639-1 (2-letter)
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

// Languages whisper handles well enough to offer in the picker. Detection can
// still return codes outside this table; DisplayName falls back to x/text for
// those.
var languages = []entry{
	{"en", "English", []string{"english"}},
	{"zh", "Chinese", []string{"chinese"}},
	{"de", "German", []string{"german"}},
	{"es", "Spanish", []string{"spanish"}},
	{"ru", "Russian", []string{"russian"}},
	{"ko", "Korean", []string{"korean"}},
	{"fr", "French", []string{"french"}},
	{"ja", "Japanese", []string{"japanese"}},
	{"pt", "Portuguese", []string{"portuguese"}},
	{"tr", "Turkish", []string{"turkish"}},
	{"pl", "Polish", []string{"polish"}},
	{"ca", "Catalan", []string{"catalan"}},
	{"nl", "Dutch", []string{"dutch"}},
	{"ar", "Arabic", []string{"arabic"}},
	{"sv", "Swedish", []string{"swedish"}},
	{"it", "Italian", []string{"italian"}},
	{"id", "Indonesian", []string{"indonesian"}},
	{"hi", "Hindi", []string{"hindi"}},
	{"fi", "Finnish", []string{"finnish"}},
	{"vi", "Vietnamese", []string{"vietnamese"}},
	{"uk", "Ukrainian", []string{"ukrainian"}},
	{"el", "Greek", []string{"greek"}},
	{"cs", "Czech", []string{"czech"}},
	{"da", "Danish", []string{"danish"}},
	{"no", "Norwegian", []string{"norwegian"}},
}

var (
	byCode map[string]*entry
	byWord map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode[e.code] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize converts any recognized language code or word to ISO 639-1.
// Empty input and "auto" normalize to Auto. Unrecognized 2-letter codes pass
// through; everything else returns empty string.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Auto {
		return Auto
	}
	if e := lookup(code); e != nil {
		return e.code
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// IsAuto reports whether the code requests automatic detection.
func IsAuto(code string) bool {
	return Normalize(code) == Auto
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Auto-detect" for Auto and "Unknown" for empty input.
func DisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "Unknown"
	}
	if code == Auto {
		return "Auto-detect"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

// Supported returns the ISO 639-1 codes offered by the CLI, in table order.
func Supported() []string {
	codes := make([]string, 0, len(languages))
	for i := range languages {
		codes = append(codes, languages[i].code)
	}
	return codes
}
