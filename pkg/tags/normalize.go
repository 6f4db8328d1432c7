package tags

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// StripHTML returns the text content of a headline that may carry markup
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// Normalize strips markup, applies NFKC and lowercases a headline
func Normalize(s string) string {
	s = StripHTML(s)
	s = norm.NFKC.String(s)
	s = quoteReplacer.Replace(s)
	return cases.Lower(language.English).String(s)
}

// Tokenize splits normalized text into words. Apostrophes survive only
// inside a word, so "trump's" stays whole and "'quoted'" loses its quotes.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
