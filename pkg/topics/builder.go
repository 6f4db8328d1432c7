package topics

import (
	"github.com/NullMeDev/trendwire/pkg/sources"
)

// Defaults
const (
	DefaultMinSourceCount = 20
	DefaultMaxAttempts    = 100
	DefaultPreviewLimit   = 4
)

// SourceLister supplies the configured sources used for coverage
type SourceLister interface {
	All() []sources.Source
}

// Logger receives debug output about skipped candidates
type Logger interface {
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

// Options tunes topic selection and preview sizes
type Options struct {
	// MinSourceCount is the popularity floor a main tag must reach
	MinSourceCount int
	// MaxAttempts bounds how many candidates are skipped while looking for one topic
	MaxAttempts int
	// PreviewLimit caps each preview bucket
	PreviewLimit int
	Logger       Logger
}

func (o Options) withDefaults() Options {
	if o.MinSourceCount <= 0 {
		o.MinSourceCount = DefaultMinSourceCount
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.PreviewLimit <= 0 {
		o.PreviewLimit = DefaultPreviewLimit
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	return o
}

// Builder builds topics against an injected source registry
type Builder struct {
	sources SourceLister
	opts    Options
}

// NewBuilder creates a topic builder. Zero option fields take the defaults.
func NewBuilder(src SourceLister, opts Options) *Builder {
	return &Builder{
		sources: src,
		opts:    opts.withDefaults(),
	}
}

// Options returns the effective options
func (b *Builder) Options() Options {
	return b.opts
}

// BuildTopic assembles the full topic record for one main tag
func (b *Builder) BuildTopic(main Tag, tags []Tag, pool *ArticlePool) (Topic, error) {
	if pool == nil {
		pool = &ArticlePool{}
	}

	related := resolveRelated(main, tags)

	topRelated, ok := firstDistinct(main.Term, related)
	if !ok {
		return Topic{}, noDistinctRelatedTerm(main.Term)
	}

	politics := filterByTerm(pool.Politics, main.Term)
	opinions := filterByTerm(pool.Opinion, main.Term)

	hero := b.heroPreview(politics, main.Term, topRelated.Term)
	opinionPreview := b.opinionPreview(opinions)
	more := b.morePreview(politics, hero, opinionPreview)

	return Topic{
		Main:           main,
		PercentageFreq: percentageFreq(len(politics)+len(opinions), pool.Size()),
		Preview: Preview{
			Politics: hero,
			Opinions: opinionPreview,
			More:     more,
		},
		Related: related,
		Articles: CategoryArticles{
			Politics: politics,
			Opinions: opinions,
		},
		SourceCoverage: b.GroupByCoverage(pool, main, nil),
	}, nil
}

// resolveRelated returns the main tag's own related terms followed by every
// other ranked tag that is a sub- or superstring of the main term.
func resolveRelated(main Tag, tags []Tag) []Tag {
	byTerm := make(map[string]Tag, len(tags))
	for _, t := range tags {
		if _, ok := byTerm[t.Term]; !ok {
			byTerm[t.Term] = t
		}
	}

	seen := map[string]bool{main.Term: true}
	related := make([]Tag, 0, len(main.Related))

	for _, ref := range main.Related {
		if seen[ref.Term] {
			continue
		}
		seen[ref.Term] = true

		if full, ok := byTerm[ref.Term]; ok {
			related = append(related, full)
		} else {
			related = append(related, Tag{Term: ref.Term})
		}
	}

	for _, t := range tags {
		if seen[t.Term] || !lexicallyRelated(t.Term, main.Term) {
			continue
		}
		seen[t.Term] = true
		related = append(related, t)
	}

	return related
}

func firstDistinct(term string, related []Tag) (Tag, bool) {
	for _, t := range related {
		if !lexicallyRelated(t.Term, term) {
			return t, true
		}
	}
	return Tag{}, false
}

func percentageFreq(matches, poolSize int) float64 {
	if poolSize == 0 {
		return 0
	}
	return float64(matches) / float64(poolSize)
}

// heroPreview picks politics articles whose title names the main term and
// that also mention the secondary term, with an image and a description.
func (b *Builder) heroPreview(politics []Article, term, secondary string) []Article {
	out := make([]Article, 0, b.opts.PreviewLimit)
	for _, a := range politics {
		if len(out) >= b.opts.PreviewLimit {
			break
		}
		if !containsLower(a.Title, term) || !matchesTerm(a, secondary) {
			continue
		}
		if a.Image == nil || len(a.Description) == 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// opinionPreview keeps the first opinion article per site
func (b *Builder) opinionPreview(opinions []Article) []Article {
	out := make([]Article, 0, b.opts.PreviewLimit)
	usedSites := make(map[string]bool)
	for _, a := range opinions {
		if len(out) >= b.opts.PreviewLimit {
			break
		}
		if usedSites[a.SiteName] {
			continue
		}
		usedSites[a.SiteName] = true
		out = append(out, a)
	}
	return out
}

// morePreview fills the overflow bucket with politics articles not already shown
func (b *Builder) morePreview(politics []Article, used ...[]Article) []Article {
	usedIDs := make(map[string]bool)
	for _, bucket := range used {
		for _, a := range bucket {
			usedIDs[a.ID] = true
		}
	}

	out := make([]Article, 0, b.opts.PreviewLimit)
	for _, a := range politics {
		if len(out) >= b.opts.PreviewLimit {
			break
		}
		if usedIDs[a.ID] {
			continue
		}
		usedIDs[a.ID] = true
		out = append(out, a)
	}
	return out
}
