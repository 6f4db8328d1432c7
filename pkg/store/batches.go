package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NullMeDev/trendwire/pkg/topics"
)

// Batch is one tag extraction run
type Batch struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"createdAt"`
	ArticleCount int          `json:"articleCount"`
	Tags         []topics.Tag `json:"tags"`
}

type batchRow struct {
	ID           string    `db:"id"`
	CreatedAt    time.Time `db:"created_at"`
	ArticleCount int       `db:"article_count"`
	Tags         string    `db:"tags"`
}

// NewBatch creates a batch with a fresh id
func NewBatch(tags []topics.Tag, articleCount int, createdAt time.Time) Batch {
	return Batch{
		ID:           uuid.NewString(),
		CreatedAt:    createdAt.UTC(),
		ArticleCount: articleCount,
		Tags:         tags,
	}
}

// SaveBatch stores a batch. A batch without an id gets one.
func (s *Store) SaveBatch(ctx context.Context, b Batch) (Batch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.CreatedAt = dbTime(b.CreatedAt)
	if b.Tags == nil {
		b.Tags = []topics.Tag{}
	}

	encoded, err := json.Marshal(b.Tags)
	if err != nil {
		return Batch{}, fmt.Errorf("encode tags: %w", err)
	}

	query := s.db.Rebind(`INSERT INTO tag_batches (id, created_at, article_count, tags) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, b.ID, b.CreatedAt, b.ArticleCount, string(encoded)); err != nil {
		return Batch{}, fmt.Errorf("store batch: %w", err)
	}

	return b, nil
}

// RecentBatches returns up to limit batches, newest first
func (s *Store) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	var rows []batchRow
	query := s.db.Rebind(`SELECT id, created_at, article_count, tags FROM tag_batches ORDER BY created_at DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("fetch batches: %w", err)
	}

	batches := make([]Batch, 0, len(rows))
	for _, row := range rows {
		b, err := row.decode()
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// LatestBatch returns the newest batch or ErrNotFound
func (s *Store) LatestBatch(ctx context.Context) (Batch, error) {
	var row batchRow
	query := `SELECT id, created_at, article_count, tags FROM tag_batches ORDER BY created_at DESC LIMIT 1`
	if err := s.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, ErrNotFound
		}
		return Batch{}, fmt.Errorf("fetch latest batch: %w", err)
	}
	return row.decode()
}

func (r batchRow) decode() (Batch, error) {
	var tags []topics.Tag
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return Batch{}, fmt.Errorf("decode tags of batch %s: %w", r.ID, err)
	}
	if tags == nil {
		tags = []topics.Tag{}
	}
	return Batch{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt.UTC(),
		ArticleCount: r.ArticleCount,
		Tags:         tags,
	}, nil
}
