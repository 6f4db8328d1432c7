package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NullMeDev/trendwire/pkg/topics"
)

func TestBatchRunner_Run(t *testing.T) {
	app := newTestApp(t, nil)
	seedHeadlines(t, app)

	broadcaster := &recordingBroadcaster{}
	notifier := &recordingNotifier{}
	app.runner.broadcaster = broadcaster
	app.runner.notifier = notifier

	snap, err := app.runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, []string{"budget", "farmers"}, snap.MainTerms())
	assert.Equal(t, 7, snap.ArticleCount)
	assert.Equal(t, 7, snap.PoolSize)
	assert.Equal(t, 4, snap.TagCount)

	budget := snap.Topics[0]
	assert.Equal(t, "senate", budget.Related[0].Term)
	assert.Len(t, budget.Preview.Politics, 3)
	assert.Len(t, budget.Preview.Opinions, 1)
	assert.Equal(t, 3, len(budget.SourceCoverage.Yes))
	assert.Equal(t, 3, budget.SourceCoverage.SourceCount)
	assert.InDelta(t, 4.0/7.0, budget.PercentageFreq, 1e-9)

	farmers := snap.Topics[1]
	assert.Equal(t, "tariffs", farmers.Related[0].Term)
	assert.Len(t, farmers.Articles.Politics, 3)
	assert.Empty(t, farmers.Articles.Opinions)

	latest, ok := app.runner.Latest()
	require.True(t, ok)
	assert.Same(t, snap, latest)

	batches, err := app.store.RecentBatches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, snap.ID, batches[0].ID)

	state := app.state.Get()
	assert.Equal(t, 1, state.RunCount)
	assert.Equal(t, snap.ID, state.LastRunID)
	assert.Equal(t, []string{"budget", "farmers"}, state.LastTopics)

	assert.Equal(t, []string{EventSnapshot}, broadcaster.events)
	require.Len(t, notifier.posted, 1)
	assert.Same(t, snap, notifier.posted[0])
}

func TestBatchRunner_Summaries(t *testing.T) {
	app := newTestApp(t, nil)
	seedHeadlines(t, app)
	app.runner.summarizer = stubSummarizer{summaries: map[string]string{
		"budget": "The Senate is fighting over the budget.",
	}}

	snap, err := app.runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "The Senate is fighting over the budget.", snap.Topics[0].Summary)
	assert.Empty(t, snap.Topics[1].Summary, "failed summaries are skipped")
	assert.Equal(t, 1, app.errors.Total())
}

func TestBatchRunner_NotifierFailureKeepsSnapshot(t *testing.T) {
	app := newTestApp(t, nil)
	seedHeadlines(t, app)
	app.runner.notifier = &recordingNotifier{err: errors.New("discord down")}

	snap, err := app.runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	_, ok := app.runner.Latest()
	assert.True(t, ok)
	recent := app.errors.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, ErrNotifyDiscord, recent[0].Code)
}

func TestBatchRunner_InsufficientTopics(t *testing.T) {
	app := newTestApp(t, nil)

	snap, err := app.runner.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, topics.ErrInsufficientTopics))

	var ae *AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrTopicsInsufficient, ae.Code)

	_, ok := app.runner.Latest()
	assert.False(t, ok)

	state := app.state.Get()
	assert.Equal(t, 1, state.FailureCount)
	assert.NotEmpty(t, state.LastError)
}

func TestBatchRunner_FailedRunKeepsPreviousSnapshot(t *testing.T) {
	app := newTestApp(t, nil)
	seedHeadlines(t, app)

	first, err := app.runner.Run(context.Background())
	require.NoError(t, err)

	app.runner.topicsToGet = 5
	_, err = app.runner.Run(context.Background())
	require.Error(t, err)

	latest, ok := app.runner.Latest()
	require.True(t, ok)
	assert.Equal(t, first.ID, latest.ID)
	assert.Equal(t, 1, app.state.Get().RunCount)
}

func TestBatchRunner_NoOverlap(t *testing.T) {
	app := newTestApp(t, nil)

	app.runner.running.Lock()
	_, err := app.runner.Run(context.Background())
	app.runner.running.Unlock()

	assert.ErrorIs(t, err, ErrBatchRunning)
	assert.Equal(t, 0, app.state.Get().FailureCount)
}
