package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

const testSources = `
- name: Ledger
  url: https://ledger.example.com
  rss:
    - url: https://ledger.example.com/politics.rss
      category: politics
    - url: https://ledger.example.com/opinion.rss
      category: opinion
- name: Wire
  url: https://wire.example.com
  rss:
    - url: https://wire.example.com/feed
      category: politics
- name: Column
  url: https://column.example.com
  rss:
    - url: https://column.example.com/politics.xml
      category: politics
`

// clearServiceEnv keeps the host environment out of DefaultConfig
func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvSourcesPath, EnvLogLevel, EnvAPIPort, EnvDBDriver, EnvDBDSN, EnvAdminToken,
		EnvBatchCron, EnvRunOnStart, EnvDiscordTok, EnvDiscordChan, EnvOpenAIKey,
	} {
		t.Setenv(key, "")
	}
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	clearServiceEnv(t)

	dir := t.TempDir()
	sourcesPath := filepath.Join(dir, "sources.yml")
	require.NoError(t, os.WriteFile(sourcesPath, []byte(testSources), 0644))

	cfg := DefaultConfig()
	cfg.SourcesPath = sourcesPath
	cfg.StatePath = filepath.Join(dir, "state.json")
	cfg.Database = DatabaseConfig{Driver: store.DriverSQLite, DSN: ":memory:"}
	cfg.Topics.MinSourceCount = 3
	cfg.Tags.MinFrequency = 2
	return cfg
}

func newTestApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}

	app, err := NewApp(cfg)
	require.NoError(t, err)
	app.runner.newRand = func(time.Time) *rand.Rand { return nil }
	t.Cleanup(app.Close)
	return app
}

func testImage(s string) *string { return &s }

// seedHeadlines stores two stories covered by all three sources: the senate
// budget and tariffs on farmers
func seedHeadlines(t *testing.T, app *App) {
	t.Helper()
	now := time.Now().UTC()
	article := func(id, site, category, title string, age time.Duration) topics.Article {
		return topics.Article{
			ID:          id,
			Title:       title,
			Description: "Story details.",
			SiteName:    site,
			Category:    category,
			URL:         "https://" + id + ".example.com",
			Image:       testImage("https://img.example.com/" + id + ".jpg"),
			CreatedAt:   now.Add(-age),
		}
	}

	require.NoError(t, app.store.SaveArticles(context.Background(), []topics.Article{
		article("ledger-budget", "Ledger", "politics", "Senate passes budget", time.Hour),
		article("wire-budget", "Wire", "politics", "Budget stalls senate", 2*time.Hour),
		article("column-budget", "Column", "politics", "Senate debates budget", 3*time.Hour),
		article("ledger-tariffs", "Ledger", "politics", "Tariffs squeeze farmers", 4*time.Hour),
		article("wire-tariffs", "Wire", "politics", "Farmers blame tariffs", 5*time.Hour),
		article("column-tariffs", "Column", "politics", "Tariffs anger farmers", 6*time.Hour),
		article("ledger-op", "Ledger", "opinion", "Why the budget fight matters", 7*time.Hour),
	}))
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) Broadcast(eventType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
}

type recordingNotifier struct {
	posted []*Snapshot
	err    error
}

func (n *recordingNotifier) PostDigest(ctx context.Context, snap *Snapshot) error {
	n.posted = append(n.posted, snap)
	return n.err
}

type stubSummarizer struct {
	summaries map[string]string
}

func (s stubSummarizer) Summarize(ctx context.Context, topic topics.Topic) (string, error) {
	if summary, ok := s.summaries[topic.Main.Term]; ok {
		return summary, nil
	}
	return "", context.DeadlineExceeded
}
