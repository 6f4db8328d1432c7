package store

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

// Pool limits
const (
	PoolPerSourceLimit = 10
	PoliticsMaxAge     = 15 * 24 * time.Hour
)

// SourceLister supplies the sources a pool is built from
type SourceLister interface {
	All() []sources.Source
}

type poolResult struct {
	source   string
	category string
	articles []topics.Article
	err      error
}

// LoadPool fetches the per-source capped politics and opinion lists
// concurrently and combines them into an article pool. Politics articles
// older than PoliticsMaxAge are left out; opinion articles have no age bound.
func (s *Store) LoadPool(ctx context.Context, registry SourceLister, now time.Time, rng *rand.Rand) (*topics.ArticlePool, error) {
	list := registry.All()

	results := make(chan poolResult, len(list)*2)
	var wg sync.WaitGroup

	fetch := func(src, category string, since time.Time) {
		defer wg.Done()
		articles, err := s.RecentArticles(ctx, src, category, since, PoolPerSourceLimit)
		results <- poolResult{source: src, category: category, articles: articles, err: err}
	}

	for _, src := range list {
		if src.HasCategory(sources.CategoryPolitics) {
			wg.Add(1)
			go fetch(src.Name, sources.CategoryPolitics, now.Add(-PoliticsMaxAge))
		}
		if src.HasCategory(sources.CategoryOpinion) {
			wg.Add(1)
			go fetch(src.Name, sources.CategoryOpinion, time.Time{})
		}
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	bySource := make(map[string]map[string][]topics.Article, len(list))
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("load %s articles for %s: %w", res.category, res.source, res.err)
			}
			continue
		}
		if bySource[res.source] == nil {
			bySource[res.source] = make(map[string][]topics.Article)
		}
		bySource[res.source][res.category] = res.articles
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// registry order keeps the pool deterministic when rng is nil
	var politics, opinion []topics.Article
	for _, src := range list {
		politics = append(politics, bySource[src.Name][sources.CategoryPolitics]...)
		opinion = append(opinion, bySource[src.Name][sources.CategoryOpinion]...)
	}

	return topics.NewArticlePool(politics, opinion, rng), nil
}
