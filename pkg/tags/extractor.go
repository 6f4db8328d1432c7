// Package tags extracts ranked keyword tags from recent headlines.
package tags

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/NullMeDev/trendwire/pkg/topics"
)

// Defaults
const (
	DefaultMinFrequency   = 5
	DefaultMaxRelated     = 5
	DefaultMaxWords       = 3
	DefaultMinSingleRunes = 4
	DefaultMinPartRunes   = 2
	minCoOccurrence       = 2
)

// DefaultSkipTerms are dropped even when frequent
var DefaultSkipTerms = []string{"make", "report", "close", "this", "call", "president"}

// Options controls which candidate terms survive
type Options struct {
	MinFrequency   int
	MaxRelated     int
	MaxWords       int
	MinSingleRunes int
	MinPartRunes   int
	// SkipTerms replaces DefaultSkipTerms when non-nil
	SkipTerms []string
	// Language, when set, filters headlines before counting
	Language LanguageFilter
}

func (o Options) withDefaults() Options {
	if o.MinFrequency <= 0 {
		o.MinFrequency = DefaultMinFrequency
	}
	if o.MaxRelated <= 0 {
		o.MaxRelated = DefaultMaxRelated
	}
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.MinSingleRunes <= 0 {
		o.MinSingleRunes = DefaultMinSingleRunes
	}
	if o.MinPartRunes <= 0 {
		o.MinPartRunes = DefaultMinPartRunes
	}
	if o.SkipTerms == nil {
		o.SkipTerms = DefaultSkipTerms
	}
	return o
}

// Extractor turns article headlines into ranked tags
type Extractor struct {
	opts Options
	skip map[string]struct{}
}

// NewExtractor creates an extractor. Zero option fields take the defaults.
func NewExtractor(opts Options) *Extractor {
	opts = opts.withDefaults()

	skip := make(map[string]struct{}, len(opts.SkipTerms))
	for _, t := range opts.SkipTerms {
		skip[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return &Extractor{opts: opts, skip: skip}
}

type termStats struct {
	frequency int
	sites     map[string]struct{}
}

// Extract counts candidate terms over the article titles and returns the
// surviving tags sorted by source count, frequency and term.
func (e *Extractor) Extract(articles []topics.Article) []topics.Tag {
	stats := make(map[string]*termStats)
	titles := make([]map[string]struct{}, 0, len(articles))

	for _, a := range articles {
		if e.opts.Language != nil && !e.opts.Language.Accept(StripHTML(a.Title)) {
			continue
		}

		inTitle := make(map[string]struct{})
		for _, term := range e.Candidates(a.Title) {
			s, ok := stats[term]
			if !ok {
				s = &termStats{sites: make(map[string]struct{})}
				stats[term] = s
			}
			s.frequency++
			if a.SiteName != "" {
				s.sites[a.SiteName] = struct{}{}
			}
			inTitle[term] = struct{}{}
		}
		titles = append(titles, inTitle)
	}

	surviving := make(map[string]*termStats)
	for term, s := range stats {
		if s.frequency >= e.opts.MinFrequency {
			surviving[term] = s
		}
	}

	related := e.coOccurrences(titles, surviving)

	out := make([]topics.Tag, 0, len(surviving))
	for term, s := range surviving {
		refs := related[term]
		if refs == nil {
			refs = []topics.TagRef{}
		}
		out = append(out, topics.Tag{
			Term:        term,
			SourceCount: len(s.sites),
			Frequency:   s.frequency,
			Related:     refs,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceCount != out[j].SourceCount {
			return out[i].SourceCount > out[j].SourceCount
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})

	return out
}

// Candidates returns the distinct candidate terms of one headline
func (e *Extractor) Candidates(title string) []string {
	words := Tokenize(Normalize(title))

	seen := make(map[string]struct{})
	var out []string
	for n := 1; n <= e.opts.MaxWords; n++ {
		for i := 0; i+n <= len(words); i++ {
			gram := words[i : i+n]
			if !e.acceptable(gram) {
				continue
			}
			term := strings.Join(gram, " ")
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

func (e *Extractor) acceptable(gram []string) bool {
	if IsStopword(gram[0]) || IsStopword(gram[len(gram)-1]) {
		return false
	}

	if len(gram) == 1 {
		if utf8.RuneCountInString(gram[0]) < e.opts.MinSingleRunes {
			return false
		}
	} else {
		for _, w := range gram {
			if utf8.RuneCountInString(w) < e.opts.MinPartRunes {
				return false
			}
		}
	}

	_, skipped := e.skip[strings.Join(gram, " ")]
	return !skipped
}

type pairCount struct {
	term  string
	count int
}

func (e *Extractor) coOccurrences(titles []map[string]struct{}, surviving map[string]*termStats) map[string][]topics.TagRef {
	counts := make(map[string]map[string]int)

	for _, inTitle := range titles {
		present := make([]string, 0, len(inTitle))
		for term := range inTitle {
			if _, ok := surviving[term]; ok {
				present = append(present, term)
			}
		}
		for _, a := range present {
			for _, b := range present {
				if a == b {
					continue
				}
				if counts[a] == nil {
					counts[a] = make(map[string]int)
				}
				counts[a][b]++
			}
		}
	}

	related := make(map[string][]topics.TagRef, len(counts))
	for term, others := range counts {
		pairs := make([]pairCount, 0, len(others))
		for other, c := range others {
			if c >= minCoOccurrence {
				pairs = append(pairs, pairCount{term: other, count: c})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].count != pairs[j].count {
				return pairs[i].count > pairs[j].count
			}
			return pairs[i].term < pairs[j].term
		})
		if len(pairs) > e.opts.MaxRelated {
			pairs = pairs[:e.opts.MaxRelated]
		}

		refs := make([]topics.TagRef, len(pairs))
		for i, p := range pairs {
			refs[i] = topics.TagRef{Term: p.term}
		}
		related[term] = refs
	}

	return related
}
