package topics

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NullMeDev/trendwire/pkg/sources"
)

func testRegistry() *sources.Registry {
	return sources.NewRegistry([]sources.Source{
		{Name: "Ledger", RSS: []sources.Feed{{Category: sources.CategoryPolitics}, {Category: sources.CategoryOpinion}}},
		{Name: "Capitol Wire", RSS: []sources.Feed{{Category: sources.CategoryPolitics}}},
		{Name: "Daily Column", RSS: []sources.Feed{{Category: sources.CategoryOpinion}}},
		{Name: "Quiet Times", RSS: []sources.Feed{{Category: sources.CategoryPolitics}}},
	})
}

func img(s string) *string { return &s }

func politicsArticle(id, site, title, desc string, image *string) Article {
	return Article{ID: id, SiteName: site, Title: title, Description: desc, Category: sources.CategoryPolitics, Image: image}
}

func opinionArticle(id, site, title, desc string) Article {
	return Article{ID: id, SiteName: site, Title: title, Description: desc, Category: sources.CategoryOpinion}
}

func refs(terms ...string) []TagRef {
	out := make([]TagRef, len(terms))
	for i, t := range terms {
		out[i] = TagRef{Term: t}
	}
	return out
}

func TestBuildTopic_HeroScenario(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "tariffs", SourceCount: 30, Related: refs("trade war")}
	hero := politicsArticle("a1", "Ledger", "New Tariffs Spark Trade War", "Markets react to the announcement", img("https://img.example.com/1.jpg"))

	pool := NewArticlePool([]Article{hero}, nil, nil)
	topic, err := b.BuildTopic(main, []Tag{main}, pool)
	require.NoError(t, err)

	require.Len(t, topic.Preview.Politics, 1)
	assert.Equal(t, "a1", topic.Preview.Politics[0].ID)
	assert.Empty(t, topic.Preview.More, "hero article must not be repeated in more")
	assert.InDelta(t, 1.0, topic.PercentageFreq, 1e-9)
}

func TestBuildTopic_HeroRequirements(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "tariffs", SourceCount: 30, Related: refs("trade war")}

	politics := []Article{
		politicsArticle("no-image", "Ledger", "Tariffs and the trade war", "desc", nil),
		politicsArticle("no-desc", "Ledger", "Tariffs and the trade war", "", img("x")),
		politicsArticle("title-miss", "Ledger", "Trade war escalates", "new tariffs announced", img("x")),
		politicsArticle("no-secondary", "Ledger", "Tariffs rise again", "steel prices", img("x")),
		politicsArticle("desc-secondary", "Capitol Wire", "Tariffs rise again", "fears of a trade war", img("x")),
	}
	topic, err := b.BuildTopic(main, []Tag{main}, NewArticlePool(politics, nil, nil))
	require.NoError(t, err)

	require.Len(t, topic.Preview.Politics, 1)
	assert.Equal(t, "desc-secondary", topic.Preview.Politics[0].ID)
	assert.Len(t, topic.Articles.Politics, 5)
}

func TestBuildTopic_EmptyPool(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	tags := []Tag{
		{Term: "election", SourceCount: 40, Related: refs("senate")},
		{Term: "budget", SourceCount: 30, Related: refs("deficit")},
	}

	for _, pool := range []*ArticlePool{nil, NewArticlePool(nil, nil, nil)} {
		got, err := b.BuildTopTopics(tags, pool, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)

		for _, topic := range got {
			assert.Zero(t, topic.PercentageFreq)
			assert.Empty(t, topic.Preview.Politics)
			assert.Empty(t, topic.Preview.Opinions)
			assert.Empty(t, topic.Preview.More)
			assert.Empty(t, topic.SourceCoverage.Yes)
			assert.Len(t, topic.SourceCoverage.No, 4)
		}
	}
}

func TestBuildTopic_NoDistinctRelatedTerm(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "iran", SourceCount: 40, Related: refs("iranian")}
	tags := []Tag{main, {Term: "iran deal", SourceCount: 25}}

	_, err := b.BuildTopic(main, tags, NewArticlePool(nil, nil, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDistinctRelatedTerm))

	var topicErr *TopicError
	require.True(t, errors.As(err, &topicErr))
	assert.Equal(t, ErrCodeNoDistinctRelatedTerm, topicErr.Code)
	assert.Equal(t, "iran", topicErr.Term)
}

func TestResolveRelated(t *testing.T) {
	main := Tag{Term: "trade", SourceCount: 50, Related: refs("tariffs", "china", "tariffs", "trade")}
	tags := []Tag{
		main,
		{Term: "trade war", SourceCount: 45},
		{Term: "china", SourceCount: 40},
		{Term: "budget", SourceCount: 35},
		{Term: "tariffs", SourceCount: 30},
		{Term: "rade", SourceCount: 10},
	}

	related := resolveRelated(main, tags)

	terms := make([]string, len(related))
	for i, r := range related {
		terms[i] = r.Term
	}
	assert.Equal(t, []string{"tariffs", "china", "trade war", "rade"}, terms)
	assert.Equal(t, 30, related[0].SourceCount, "known refs resolve to their ranked tag")
}

func TestBuildTopic_FirstDistinctRelated(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "court", SourceCount: 40, Related: refs("supreme court", "ruling")}
	politics := []Article{
		politicsArticle("p1", "Ledger", "Court issues ruling", "details", img("x")),
		politicsArticle("p2", "Ledger", "Court and the supreme court", "details", img("x")),
	}

	topic, err := b.BuildTopic(main, []Tag{main}, NewArticlePool(politics, nil, nil))
	require.NoError(t, err)
	require.Len(t, topic.Preview.Politics, 1)
	assert.Equal(t, "p1", topic.Preview.Politics[0].ID)
	assert.Equal(t, []string{"p2"}, ids(topic.Preview.More))
}

func TestBuildTopic_OpinionPreviewOnePerSite(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "senate", SourceCount: 40, Related: refs("vote")}

	opinions := []Article{
		opinionArticle("o1", "Ledger", "The senate failed us", ""),
		opinionArticle("o2", "Ledger", "Senate must act", ""),
		opinionArticle("o3", "Daily Column", "Why the senate matters", ""),
		opinionArticle("o4", "Site C", "Senate gridlock", ""),
		opinionArticle("o5", "Site D", "A senate for the people", ""),
		opinionArticle("o6", "Site E", "Senate reform now", ""),
		opinionArticle("o7", "Site F", "Unrelated piece", ""),
	}

	topic, err := b.BuildTopic(main, []Tag{main}, NewArticlePool(nil, opinions, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"o1", "o3", "o4", "o5"}, ids(topic.Preview.Opinions))
	assert.Len(t, topic.Articles.Opinions, 6)

	sites := make(map[string]bool)
	for _, a := range topic.Preview.Opinions {
		assert.False(t, sites[a.SiteName], "duplicate site %s", a.SiteName)
		sites[a.SiteName] = true
	}
}

func TestBuildTopic_BucketsDisjointAndCapped(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "budget", SourceCount: 40, Related: refs("deficit")}

	var politics []Article
	for i := 0; i < 12; i++ {
		politics = append(politics, politicsArticle(
			fmt.Sprintf("p%d", i), "Ledger",
			"Budget talks stall over deficit", "lawmakers argue", img("x")))
	}
	opinions := []Article{opinionArticle("o1", "Daily Column", "The budget is a moral document", "")}

	topic, err := b.BuildTopic(main, []Tag{main}, NewArticlePool(politics, opinions, rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	assert.Len(t, topic.Preview.Politics, 4)
	assert.Len(t, topic.Preview.Opinions, 1)
	assert.Len(t, topic.Preview.More, 4)

	seen := make(map[string]bool)
	for _, bucket := range [][]Article{topic.Preview.Politics, topic.Preview.Opinions, topic.Preview.More} {
		for _, a := range bucket {
			assert.False(t, seen[a.ID], "article %s appears in two buckets", a.ID)
			seen[a.ID] = true
		}
	}

	assert.InDelta(t, 13.0/13.0, topic.PercentageFreq, 1e-9)
}

func TestBuildTopic_PercentageFreq(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	main := Tag{Term: "budget", SourceCount: 40, Related: refs("deficit")}

	politics := []Article{
		politicsArticle("p1", "Ledger", "Budget vote", "", nil),
		politicsArticle("p2", "Ledger", "Weather report", "sunny", nil),
		politicsArticle("p3", "Capitol Wire", "Markets", "the BUDGET outlook", nil),
	}
	opinions := []Article{
		opinionArticle("o1", "Daily Column", "On the budget", ""),
		opinionArticle("o2", "Daily Column", "On sports", ""),
	}

	topic, err := b.BuildTopic(main, []Tag{main}, NewArticlePool(politics, opinions, nil))
	require.NoError(t, err)

	assert.InDelta(t, 3.0/5.0, topic.PercentageFreq, 1e-9)
	assert.GreaterOrEqual(t, topic.PercentageFreq, 0.0)
	assert.LessOrEqual(t, topic.PercentageFreq, 1.0)
}

func TestNewArticlePool(t *testing.T) {
	politics := []Article{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
	opinion := []Article{{ID: "o1"}, {ID: "o2"}}

	pool := NewArticlePool(politics, opinion, rand.New(rand.NewSource(42)))

	assert.ElementsMatch(t, ids(politics), ids(pool.Politics))
	assert.ElementsMatch(t, ids(opinion), ids(pool.Opinion))
	assert.ElementsMatch(t, []string{"p1", "p2", "p3", "o1", "o2"}, ids(pool.Combined))
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(politics), "inputs are not shuffled in place")

	ordered := NewArticlePool(politics, opinion, nil)
	assert.Equal(t, []string{"p1", "p2", "p3", "o1", "o2"}, ids(ordered.Combined))
	assert.Equal(t, 0, (*ArticlePool)(nil).Size())
}

func ids(list []Article) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}
