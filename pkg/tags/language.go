package tags

import (
	"github.com/pemistahl/lingua-go"
)

// LanguageFilter decides whether a headline should be counted
type LanguageFilter interface {
	Accept(text string) bool
}

// EnglishFilter drops headlines detected as a language other than English
type EnglishFilter struct {
	detector lingua.LanguageDetector
}

// NewEnglishFilter builds a detector over the languages common in news feeds
func NewEnglishFilter() *EnglishFilter {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Russian,
		).
		Build()

	return &EnglishFilter{detector: detector}
}

// Accept keeps text detected as English and text the detector cannot place
func (f *EnglishFilter) Accept(text string) bool {
	lang, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return true
	}
	return lang == lingua.English
}
