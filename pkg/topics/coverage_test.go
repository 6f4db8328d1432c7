package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NullMeDev/trendwire/pkg/sources"
)

func sourceNames(list []sources.Source) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}

func coveragePool() *ArticlePool {
	return NewArticlePool(
		[]Article{
			politicsArticle("p1", "Ledger", "Tariffs on steel", "china responds", nil),
			politicsArticle("p2", "Capitol Wire", "Tariffs hit farmers", "midwest", nil),
			politicsArticle("p3", "Quiet Times", "Senate recess", "", nil),
		},
		[]Article{
			opinionArticle("o1", "Daily Column", "China is winning", ""),
		},
		nil,
	)
}

func TestGroupByCoverage_SingleTag(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})

	result := b.GroupByCoverage(coveragePool(), Tag{Term: "tariffs"}, nil)

	assert.Equal(t, []string{"Ledger", "Capitol Wire"}, sourceNames(result.Yes))
	assert.Equal(t, []string{"Daily Column", "Quiet Times"}, sourceNames(result.No))
	assert.Equal(t, 4, result.SourceCount)
	assert.Nil(t, result.Tag2)
}

func TestGroupByCoverage_TagPair(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	tag2 := Tag{Term: "china"}

	result := b.GroupByCoverage(coveragePool(), Tag{Term: "tariffs"}, &tag2)

	assert.Equal(t, []string{"Ledger"}, sourceNames(result.Yes))
	assert.Equal(t, []string{"Capitol Wire", "Daily Column", "Quiet Times"}, sourceNames(result.No))
	require.NotNil(t, result.Tag2)
	assert.Equal(t, "china", result.Tag2.Term)
}

func TestGroupByCoverage_Partition(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	all := sourceNames(testRegistry().All())

	for _, term := range []string{"tariffs", "china", "senate", "nothing matches this"} {
		result := b.GroupByCoverage(coveragePool(), Tag{Term: term}, nil)

		union := append(sourceNames(result.Yes), sourceNames(result.No)...)
		assert.ElementsMatch(t, all, union, term)

		yes := make(map[string]bool)
		for _, name := range sourceNames(result.Yes) {
			yes[name] = true
		}
		for _, name := range sourceNames(result.No) {
			assert.False(t, yes[name], "%s is in both groups for %q", name, term)
		}
	}
}

func TestGroupByCoverage_EmptyPool(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})

	result := b.GroupByCoverage(nil, Tag{Term: "tariffs"}, nil)

	assert.NotNil(t, result.Yes)
	assert.Empty(t, result.Yes)
	assert.Len(t, result.No, 4)
}

func TestGroupByCoverage_UnknownSiteIgnored(t *testing.T) {
	b := NewBuilder(testRegistry(), Options{})
	pool := NewArticlePool([]Article{politicsArticle("x", "Not Configured", "tariffs", "", nil)}, nil, nil)

	result := b.GroupByCoverage(pool, Tag{Term: "tariffs"}, nil)

	assert.Empty(t, result.Yes)
	assert.Len(t, result.No, 4)
}
