package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

// todayResponse is the live view of the current pool
type todayResponse struct {
	Sites            []sources.Source `json:"sites"`
	PoliticsArticles []topics.Article `json:"politicsArticles"`
	OpinionArticles  []topics.Article `json:"opinionArticles"`
	TopTags          []topics.Tag     `json:"topTags"`
}

type recentTagsResponse struct {
	Batches []store.Batch `json:"batches"`
	TopTags []topics.Tag  `json:"topTags"`
}

type sourceResponse struct {
	Source   sources.Source   `json:"source"`
	Articles []topics.Article `json:"articles"`
}

func (a *App) handleTopics(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.runner.Latest()
	if !ok {
		respondWithError(w, http.StatusServiceUnavailable, ErrMsgNoSnapshot)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := a.runner.Run(r.Context())
	switch {
	case errors.Is(err, ErrBatchRunning):
		respondWithError(w, http.StatusConflict, ErrMsgBatchActive)
	case errors.Is(err, topics.ErrInsufficientTopics):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil || snap == nil:
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
	default:
		a.recordNextRun()
		respondWithJSON(w, http.StatusOK, snap)
	}
}

func (a *App) handleRecentTags(w http.ResponseWriter, r *http.Request) {
	batches, err := a.store.RecentBatches(r.Context(), RecentBatchLimit)
	if err != nil {
		a.errors.HandleError("Failed to load batches", NewStoreError(ErrStoreQuery, "recent batches", err), "api", ErrorSeverityMedium)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}

	resp := recentTagsResponse{Batches: batches, TopTags: []topics.Tag{}}
	if len(batches) > 0 {
		resp.TopTags = topics.RankTags(batches[0].Tags)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (a *App) handleToday(w http.ResponseWriter, r *http.Request) {
	if cached, ok := a.cache.Get(CacheKeyToday); ok {
		respondWithJSON(w, http.StatusOK, cached)
		return
	}

	pool, err := a.currentPool(r.Context())
	if err != nil {
		a.errors.HandleError("Failed to load pool", err, "api", ErrorSeverityMedium)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}

	resp := &todayResponse{
		Sites:            a.registry.All(),
		PoliticsArticles: pool.Politics,
		OpinionArticles:  pool.Opinion,
		TopTags:          a.extractor.Extract(pool.Combined),
	}
	a.cache.Set(CacheKeyToday, resp)
	respondWithJSON(w, http.StatusOK, resp)
}

func (a *App) handleArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseTimeParam(q.Get("start"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start: "+err.Error())
		return
	}
	end, err := parseTimeParam(q.Get("end"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "end: "+err.Error())
		return
	}
	if !end.After(start) {
		respondWithError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	articles, err := a.store.ArticlesBetween(r.Context(), start, end, MaxArticlesPerQuery)
	if err != nil {
		a.errors.HandleError("Failed to load articles", NewStoreError(ErrStoreQuery, "articles between", err), "api", ErrorSeverityMedium)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"start":    start,
		"end":      end,
		"articles": articles,
	})
}

func (a *App) handleSources(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sources": a.registry.All(),
	})
}

func (a *App) handleSource(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["source"]
	src, ok := a.registry.Find(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
		return
	}

	articles, err := a.store.SiteArticles(r.Context(), src.Name, SourceArticleLimit)
	if err != nil {
		a.errors.HandleError("Failed to load source articles", NewStoreError(ErrStoreQuery, "site articles", err), "api", ErrorSeverityMedium)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}
	respondWithJSON(w, http.StatusOK, sourceResponse{Source: src, Articles: articles})
}

func (a *App) handleCoverage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term1 := strings.ToLower(strings.TrimSpace(q.Get("tag1")))
	if term1 == "" {
		respondWithError(w, http.StatusBadRequest, "tag1 is required")
		return
	}

	pool, err := a.currentPool(r.Context())
	if err != nil {
		a.errors.HandleError("Failed to load pool", err, "api", ErrorSeverityMedium)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}

	known := a.latestTags(r.Context())
	tag1 := lookupTag(known, term1)
	var tag2 *topics.Tag
	if term2 := strings.ToLower(strings.TrimSpace(q.Get("tag2"))); term2 != "" {
		t := lookupTag(known, term2)
		tag2 = &t
	}

	respondWithJSON(w, http.StatusOK, a.builder.GroupByCoverage(pool, tag1, tag2))
}

// currentPool returns the cached pool or loads a fresh one
func (a *App) currentPool(ctx context.Context) (*topics.ArticlePool, error) {
	if cached, ok := a.cache.Get(CacheKeyPool); ok {
		if pool, ok := cached.(*topics.ArticlePool); ok {
			return pool, nil
		}
	}

	pool, err := a.store.LoadPool(ctx, a.registry, time.Now(), nil)
	if err != nil {
		return nil, NewStoreError(ErrStoreQuery, "load article pool", err)
	}
	a.cache.Set(CacheKeyPool, pool)
	return pool, nil
}

func (a *App) latestTags(ctx context.Context) []topics.Tag {
	batch, err := a.store.LatestBatch(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			Logger().Warning("Failed to load latest batch: %v", err)
		}
		return nil
	}
	return batch.Tags
}

func lookupTag(known []topics.Tag, term string) topics.Tag {
	for _, t := range known {
		if t.Term == term {
			return t
		}
	}
	return topics.Tag{Term: term, Related: []topics.TagRef{}}
}
