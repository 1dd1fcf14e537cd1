// Package detector tags documents with their natural language.
package detector

import (
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// Unknown is returned when the text is too short or no language is confident enough.
const Unknown = "unknown"

// minRunes is the shortest text worth sending to the language models.
const minRunes = 20

// DefaultLanguages are the languages a wiki corpus is expected to contain.
var DefaultLanguages = []lingua.Language{
	lingua.English, lingua.German, lingua.French, lingua.Spanish, lingua.Portuguese,
	lingua.Italian, lingua.Dutch, lingua.Polish, lingua.Japanese, lingua.Chinese,
}

// Detector wraps a lingua detector. It is safe for concurrent use.
type Detector struct {
	lingua lingua.LanguageDetector
}

// New builds a low-accuracy detector over languages, or DefaultLanguages when none are given.
func New(languages ...lingua.Language) *Detector {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithLowAccuracyMode().
		WithMinimumRelativeDistance(0.1).
		Build()
	return &Detector{lingua: d}
}

// Detect returns the ISO 639-1 code of text in lower case, or Unknown.
// Placeholder markup is stripped first so bracket labels do not skew the result.
func (d *Detector) Detect(text string) string {
	text = stripPlaceholders(text)
	if utf8.RuneCountInString(text) < minRunes {
		return Unknown
	}
	lang, ok := d.lingua.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

var placeholderLabels = strings.NewReplacer(
	"[STATUS:", " ", "[MACRO:", " ", "[PAGE-REF:", " ", "[INCLUDE-REF:", " ",
	"[JIRA-REF:", " ", "[PDF:", " ", "[Attachment:", " ", "[ADF-CONTENT:", " ",
	"<!-- TOC omitted -->", " ", "|", " ", "---", " ", "#", " ", "*", " ",
)

func stripPlaceholders(s string) string {
	return strings.Join(strings.Fields(placeholderLabels.Replace(s)), " ")
}
