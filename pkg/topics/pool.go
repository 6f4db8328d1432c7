package topics

import (
	"math/rand"
	"strings"
)

// ArticlePool is three views over the same fetch: per-site capped politics
// and opinion lists plus their union in random order.
type ArticlePool struct {
	Politics []Article `json:"politics"`
	Opinion  []Article `json:"opinion"`
	Combined []Article `json:"combined"`
}

// NewArticlePool builds a pool from the two category lists. When rng is nil
// the input order is kept, which makes the pool deterministic.
func NewArticlePool(politics, opinion []Article, rng *rand.Rand) *ArticlePool {
	pool := &ArticlePool{
		Politics: append([]Article{}, politics...),
		Opinion:  append([]Article{}, opinion...),
	}
	pool.Combined = make([]Article, 0, len(politics)+len(opinion))
	pool.Combined = append(pool.Combined, politics...)
	pool.Combined = append(pool.Combined, opinion...)

	if rng != nil {
		shuffle(rng, pool.Politics)
		shuffle(rng, pool.Opinion)
		shuffle(rng, pool.Combined)
	}

	return pool
}

// Size returns the number of articles in the combined view
func (p *ArticlePool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Combined)
}

func shuffle(rng *rand.Rand, list []Article) {
	rng.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
}

// matchesTerm applies the substring rule used everywhere in the pipeline:
// the lowercased title or description contains the term.
func matchesTerm(a Article, term string) bool {
	return containsLower(a.Title, term) || containsLower(a.Description, term)
}

func containsLower(text, term string) bool {
	return strings.Contains(strings.ToLower(text), term)
}

// lexicallyRelated reports whether either term contains the other
func lexicallyRelated(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func filterByTerm(list []Article, term string) []Article {
	out := make([]Article, 0)
	for _, a := range list {
		if matchesTerm(a, term) {
			out = append(out, a)
		}
	}
	return out
}
