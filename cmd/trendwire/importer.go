package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/tags"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

// ImportResult counts what an import did
type ImportResult struct {
	Imported int
	Skipped  int
}

// Importer loads scraped articles into the store
type Importer struct {
	store    *store.Store
	registry *sources.Registry
	now      func() time.Time
}

// NewImporter creates an importer checking articles against the registry
func NewImporter(st *store.Store, registry *sources.Registry) *Importer {
	return &Importer{store: st, registry: registry, now: time.Now}
}

// ImportJSON reads a JSON array of articles. Articles from unknown sites or
// with an unknown category are skipped.
func (im *Importer) ImportJSON(ctx context.Context, r io.Reader) (ImportResult, error) {
	var articles []topics.Article
	if err := json.NewDecoder(r).Decode(&articles); err != nil {
		return ImportResult{}, fmt.Errorf("decode articles: %w", err)
	}
	return im.save(ctx, articles)
}

// ImportFeed reads an RSS or Atom document published by one source
func (im *Importer) ImportFeed(ctx context.Context, r io.Reader, site, category string) (ImportResult, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]topics.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, feedArticle(item, site, category, im.now()))
	}
	return im.save(ctx, articles)
}

func (im *Importer) save(ctx context.Context, articles []topics.Article) (ImportResult, error) {
	var res ImportResult
	valid := make([]topics.Article, 0, len(articles))

	for _, a := range articles {
		a.SiteName = strings.TrimSpace(a.SiteName)
		a.Title = strings.TrimSpace(a.Title)
		if reason := im.rejectReason(a); reason != "" {
			Logger().Debug("Skipping article %q: %s", a.Title, reason)
			res.Skipped++
			continue
		}
		if a.ID == "" {
			a.ID = articleID(a)
		}
		valid = append(valid, a)
	}

	if len(valid) == 0 {
		return res, nil
	}
	if err := im.store.SaveArticles(ctx, valid); err != nil {
		return res, NewStoreError(ErrStoreWrite, "save imported articles", err)
	}
	res.Imported = len(valid)
	return res, nil
}

func (im *Importer) rejectReason(a topics.Article) string {
	if a.Title == "" {
		return "missing title"
	}
	src, ok := im.registry.Find(a.SiteName)
	if !ok {
		return fmt.Sprintf("unknown site %q", a.SiteName)
	}
	if !src.HasCategory(a.Category) {
		return fmt.Sprintf("site %q has no %q feed", a.SiteName, a.Category)
	}
	return ""
}

// articleID derives a stable id from the URL so re-imports upsert
func articleID(a topics.Article) string {
	if a.URL != "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(a.URL)).String()
	}
	return uuid.NewString()
}

func feedArticle(item *gofeed.Item, site, category string, now time.Time) topics.Article {
	a := topics.Article{
		ID:          item.GUID,
		Title:       tags.StripHTML(item.Title),
		Description: strings.TrimSpace(tags.StripHTML(item.Description)),
		SiteName:    site,
		Category:    category,
		URL:         item.Link,
		CreatedAt:   now,
	}
	switch {
	case item.PublishedParsed != nil:
		a.CreatedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		a.CreatedAt = *item.UpdatedParsed
	}
	if item.Image != nil && item.Image.URL != "" {
		img := item.Image.URL
		a.Image = &img
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
				img := enc.URL
				a.Image = &img
				break
			}
		}
	}
	return a
}
