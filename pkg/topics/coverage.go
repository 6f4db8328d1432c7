package topics

import (
	"github.com/NullMeDev/trendwire/pkg/sources"
)

// GroupByCoverage splits the configured sources into those with at least one
// combined-pool article matching tag1 (and tag2 when given) and those without.
func (b *Builder) GroupByCoverage(pool *ArticlePool, tag1 Tag, tag2 *Tag) CoverageResult {
	all := b.sources.All()

	covered := make(map[string]bool)
	if pool != nil {
		for _, a := range pool.Combined {
			if covered[a.SiteName] || !matchesTerm(a, tag1.Term) {
				continue
			}
			if tag2 != nil && !matchesTerm(a, tag2.Term) {
				continue
			}
			covered[a.SiteName] = true
		}
	}

	result := CoverageResult{
		Tag1:        tag1,
		Tag2:        tag2,
		SourceCount: len(all),
		Yes:         make([]sources.Source, 0),
		No:          make([]sources.Source, 0),
	}
	for _, s := range all {
		if covered[s.Name] {
			result.Yes = append(result.Yes, s)
		} else {
			result.No = append(result.No, s)
		}
	}

	return result
}
