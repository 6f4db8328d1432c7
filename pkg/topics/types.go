// Package topics turns a ranked tag list and a pool of recent articles into a
// small set of non-overlapping topics with preview content and source coverage.
package topics

import (
	"time"

	"github.com/NullMeDev/trendwire/pkg/sources"
)

// TagRef points at another tag by term only
type TagRef struct {
	Term string `json:"term"`
}

// Tag is a ranked keyword extracted from recent headlines.
// Term is lowercase and non-empty; SourceCount approximates how many distinct
// sources mention it and is only used as a popularity signal.
type Tag struct {
	Term        string   `json:"term"`
	SourceCount int      `json:"sourceCount"`
	Frequency   int      `json:"frequency,omitempty"`
	Related     []TagRef `json:"related"`
}

// Article is a single fetched story. It is never mutated during a run.
type Article struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	SiteName    string    `json:"siteName" db:"site_name"`
	Category    string    `json:"category" db:"category"`
	URL         string    `json:"url,omitempty" db:"url"`
	Image       *string   `json:"image" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Preview holds the three curated article buckets of a topic
type Preview struct {
	Politics []Article `json:"politics"`
	Opinions []Article `json:"opinions"`
	More     []Article `json:"more"`
}

// CategoryArticles holds every pool article matching a topic, by category
type CategoryArticles struct {
	Politics []Article `json:"politics"`
	Opinions []Article `json:"opinions"`
}

// CoverageResult partitions the configured sources by whether they covered a
// tag (or pair of tags). SourceCount is the number of configured sources, not
// the number of sources that matched.
type CoverageResult struct {
	Tag1        Tag              `json:"tag1"`
	Tag2        *Tag             `json:"tag2,omitempty"`
	SourceCount int              `json:"sourceCount"`
	Yes         []sources.Source `json:"yes"`
	No          []sources.Source `json:"no"`
}

// Topic is a cluster built around one main tag
type Topic struct {
	Main           Tag              `json:"main"`
	PercentageFreq float64          `json:"percentageFreq"`
	Preview        Preview          `json:"preview"`
	Related        []Tag            `json:"related"`
	Articles       CategoryArticles `json:"articles"`
	SourceCoverage CoverageResult   `json:"sourceCoverage"`
}
