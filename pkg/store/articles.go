package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NullMeDev/trendwire/pkg/topics"
)

const articleColumns = `id, title, description, site_name, category, url, image, created_at`

const upsertArticle = `
	INSERT INTO articles (` + articleColumns + `)
	VALUES (:id, :title, :description, :site_name, :category, :url, :image, :created_at)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		site_name = excluded.site_name,
		category = excluded.category,
		url = excluded.url,
		image = excluded.image,
		created_at = excluded.created_at`

// SaveArticle inserts or updates one article by id
func (s *Store) SaveArticle(ctx context.Context, a topics.Article) error {
	return s.SaveArticles(ctx, []topics.Article{a})
}

// SaveArticles upserts articles in a single transaction
func (s *Store) SaveArticles(ctx context.Context, articles []topics.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	now := time.Now()
	for _, a := range articles {
		if strings.TrimSpace(a.ID) == "" {
			tx.Rollback()
			return fmt.Errorf("article %q: id is required", a.Title)
		}
		if _, err := tx.NamedExecContext(ctx, upsertArticle, prepareArticle(a, now)); err != nil {
			tx.Rollback()
			return fmt.Errorf("store article %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func prepareArticle(a topics.Article, now time.Time) topics.Article {
	if a.Image != nil && strings.TrimSpace(*a.Image) == "" {
		a.Image = nil
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.CreatedAt = dbTime(a.CreatedAt)
	return a
}

// RecentArticles returns up to limit articles of one site and category,
// newest first. A zero since disables the age bound.
func (s *Store) RecentArticles(ctx context.Context, site, category string, since time.Time, limit int) ([]topics.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE site_name = ? AND category = ?`
	args := []interface{}{site, category}

	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, dbTime(since))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	return s.selectArticles(ctx, query, args...)
}

// SiteArticles returns up to limit articles of one site in any category, newest first
func (s *Store) SiteArticles(ctx context.Context, site string, limit int) ([]topics.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE site_name = ?
		ORDER BY created_at DESC LIMIT ?`

	return s.selectArticles(ctx, query, site, limit)
}

// ArticlesBetween returns up to limit articles created in [start, end), newest first
func (s *Store) ArticlesBetween(ctx context.Context, start, end time.Time, limit int) ([]topics.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at DESC LIMIT ?`

	return s.selectArticles(ctx, query, dbTime(start), dbTime(end), limit)
}

// ArticlesSince returns every article created at or after since, newest first
func (s *Store) ArticlesSince(ctx context.Context, since time.Time) ([]topics.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE created_at >= ?
		ORDER BY created_at DESC`

	return s.selectArticles(ctx, query, dbTime(since))
}

// CountArticles returns the number of stored articles
func (s *Store) CountArticles(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (s *Store) selectArticles(ctx context.Context, query string, args ...interface{}) ([]topics.Article, error) {
	articles := make([]topics.Article, 0)
	if err := s.db.SelectContext(ctx, &articles, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	for i := range articles {
		articles[i].CreatedAt = articles[i].CreatedAt.UTC()
	}
	return articles, nil
}
