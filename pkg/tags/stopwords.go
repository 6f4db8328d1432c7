package tags

import "strings"

// stopWords are ignored at the edges of candidate terms
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "also": {}, "am": {}, "among": {}, "an": {}, "and": {}, "any": {},
	"are": {}, "aren't": {}, "around": {}, "as": {}, "at": {},

	"be": {}, "because": {}, "been": {}, "before": {}, "being": {}, "below": {},
	"between": {}, "both": {}, "but": {}, "by": {},

	"can": {}, "can't": {}, "could": {}, "couldn't": {},

	"did": {}, "didn't": {}, "do": {}, "does": {}, "doesn't": {}, "doing": {},
	"don't": {}, "down": {}, "during": {},

	"each": {}, "even": {}, "ever": {}, "every": {},

	"few": {}, "for": {}, "from": {}, "further": {},

	"get": {}, "gets": {}, "got": {},

	"had": {}, "has": {}, "hasn't": {}, "have": {}, "haven't": {}, "having": {},
	"he": {}, "he's": {}, "her": {}, "here": {}, "hers": {}, "him": {}, "his": {},
	"how": {}, "however": {},

	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "isn't": {}, "it": {},
	"it's": {}, "its": {},

	"just": {},

	"last": {}, "less": {}, "like": {}, "likely": {},

	"many": {}, "may": {}, "me": {}, "might": {}, "more": {}, "most": {},
	"much": {}, "must": {}, "my": {},

	"new": {}, "news": {}, "no": {}, "nor": {}, "not": {}, "now": {},

	"of": {}, "off": {}, "on": {}, "once": {}, "one": {}, "only": {}, "or": {},
	"other": {}, "our": {}, "out": {}, "over": {}, "own": {},

	"says": {}, "said": {}, "say": {}, "she": {}, "she's": {}, "should": {},
	"so": {}, "some": {}, "still": {}, "such": {},

	"than": {}, "that": {}, "that's": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "they're": {}, "this": {},
	"those": {}, "through": {}, "to": {}, "too": {},

	"under": {}, "until": {}, "up": {}, "us": {},

	"very": {}, "via": {}, "vs": {},

	"was": {}, "wasn't": {}, "we": {}, "were": {}, "what": {}, "what's": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "who": {}, "who's": {},
	"whose": {}, "why": {}, "will": {}, "with": {}, "without": {}, "won't": {},
	"would": {},

	"yet": {}, "you": {}, "your": {},
}

// IsStopword reports whether word is ignored at the edges of a term
func IsStopword(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
