package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/tags"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

// SnapshotTopic is a built topic plus its optional summary
type SnapshotTopic struct {
	topics.Topic
	Summary string `json:"summary,omitempty"`
}

// Snapshot is the output of the last successful batch
type Snapshot struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	Topics       []SnapshotTopic `json:"topics"`
	TagCount     int             `json:"tagCount"`
	ArticleCount int             `json:"articleCount"`
	PoolSize     int             `json:"poolSize"`
}

// MainTerms lists the main tag of every topic in order
func (s *Snapshot) MainTerms() []string {
	terms := make([]string, 0, len(s.Topics))
	for _, t := range s.Topics {
		terms = append(terms, t.Main.Term)
	}
	return terms
}

// Broadcaster pushes events to connected clients
type Broadcaster interface {
	Broadcast(eventType string, data interface{})
}

// BatchRunner runs the tag extraction and topic selection pipeline
type BatchRunner struct {
	store       *store.Store
	registry    *sources.Registry
	extractor   *tags.Extractor
	builder     *topics.Builder
	cache       *Cache
	state       *StateManager
	errors      *ErrorSystem
	broadcaster Broadcaster
	notifier    Notifier
	summarizer  Summarizer

	tagWindow   time.Duration
	topicsToGet int
	timeout     time.Duration

	now     func() time.Time
	newRand func(time.Time) *rand.Rand
	running sync.Mutex
}

// BatchOptions holds the runner's collaborators
type BatchOptions struct {
	Store       *store.Store
	Registry    *sources.Registry
	Extractor   *tags.Extractor
	Builder     *topics.Builder
	Cache       *Cache
	State       *StateManager
	Errors      *ErrorSystem
	Broadcaster Broadcaster
	Notifier    Notifier
	Summarizer  Summarizer
	Config      BatchConfig
}

// NewBatchRunner creates a runner. Broadcaster, Notifier and Summarizer are optional.
func NewBatchRunner(opts BatchOptions) *BatchRunner {
	return &BatchRunner{
		store:       opts.Store,
		registry:    opts.Registry,
		extractor:   opts.Extractor,
		builder:     opts.Builder,
		cache:       opts.Cache,
		state:       opts.State,
		errors:      opts.Errors,
		broadcaster: opts.Broadcaster,
		notifier:    opts.Notifier,
		summarizer:  opts.Summarizer,
		tagWindow:   opts.Config.TagWindow,
		topicsToGet: opts.Config.TopicsToGet,
		timeout:     opts.Config.Timeout,
		now:         time.Now,
		newRand: func(t time.Time) *rand.Rand {
			return rand.New(rand.NewSource(t.UnixNano()))
		},
	}
}

// Latest returns the cached snapshot, if a run has completed
func (r *BatchRunner) Latest() (*Snapshot, bool) {
	v, ok := r.cache.Get(CacheKeySnapshot)
	if !ok {
		return nil, false
	}
	snap, ok := v.(*Snapshot)
	return snap, ok
}

// Run executes one batch. It returns ErrBatchRunning when another run holds
// the lock. A failed run leaves the previous snapshot in place.
func (r *BatchRunner) Run(ctx context.Context) (*Snapshot, error) {
	if !r.running.TryLock() {
		return nil, ErrBatchRunning
	}
	defer r.running.Unlock()
	defer RecoverFromPanic("batch")

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := r.now()
	snap, err := r.run(ctx, started)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = NewSchedulerError(ErrSchedulerTimeout, "batch timed out", err)
		}
		r.errors.HandleError("Batch run failed", err, "batch", severityFor(err))
		if serr := r.state.RecordFailure(err, started); serr != nil {
			Logger().Warning("Failed to save state: %v", serr)
		}
		return nil, err
	}

	Logger().Info("Batch %s complete in %s: topics %v from %d articles",
		snap.ID, FormatDuration(r.now().Sub(started)), snap.MainTerms(), snap.ArticleCount)
	return snap, nil
}

func (r *BatchRunner) run(ctx context.Context, now time.Time) (*Snapshot, error) {
	articles, err := r.store.ArticlesSince(ctx, now.Add(-r.tagWindow))
	if err != nil {
		return nil, NewStoreError(ErrStoreQuery, "load articles in tag window", err)
	}

	tagList := r.extractor.Extract(articles)
	batch, err := r.store.SaveBatch(ctx, store.NewBatch(tagList, len(articles), now))
	if err != nil {
		return nil, NewStoreError(ErrStoreWrite, "save tag batch", err)
	}
	Logger().Debug("Batch %s: %d tags from %d articles", batch.ID, len(tagList), len(articles))

	pool, err := r.store.LoadPool(ctx, r.registry, now, r.newRand(now))
	if err != nil {
		return nil, NewStoreError(ErrStoreQuery, "load article pool", err)
	}
	r.cache.Set(CacheKeyPool, pool)

	built, err := r.builder.BuildTopTopics(topics.RankTags(tagList), pool, r.topicsToGet)
	if err != nil {
		return nil, NewTopicsError("select top topics", err)
	}

	snap := &Snapshot{
		ID:           batch.ID,
		CreatedAt:    now,
		Topics:       make([]SnapshotTopic, len(built)),
		TagCount:     len(tagList),
		ArticleCount: len(articles),
		PoolSize:     pool.Size(),
	}
	for i, t := range built {
		snap.Topics[i] = SnapshotTopic{Topic: t}
	}
	r.summarize(ctx, snap)

	r.cache.SetWithTTL(CacheKeySnapshot, snap, 0)
	if err := r.state.RecordRun(snap.ID, now, snap.MainTerms(), snap.ArticleCount); err != nil {
		Logger().Warning("Failed to save state: %v", err)
	}

	if r.broadcaster != nil {
		r.broadcaster.Broadcast(EventSnapshot, snap)
	}
	if r.notifier != nil {
		if err := r.notifier.PostDigest(ctx, snap); err != nil {
			r.errors.HandleError("Failed to post digest",
				NewNotifyError(ErrNotifyDiscord, "post digest", err), "notify", ErrorSeverityMedium)
		}
	}
	return snap, nil
}

func (r *BatchRunner) summarize(ctx context.Context, snap *Snapshot) {
	if r.summarizer == nil {
		return
	}
	for i := range snap.Topics {
		sctx, cancel := context.WithTimeout(ctx, SummaryTimeout)
		summary, err := r.summarizer.Summarize(sctx, snap.Topics[i].Topic)
		cancel()
		if err != nil {
			r.errors.HandleError("Failed to summarize topic "+snap.Topics[i].Main.Term,
				NewNotifyError(ErrNotifyOpenAI, "summarize topic", err), "summarize", ErrorSeverityLow)
			continue
		}
		snap.Topics[i].Summary = summary
	}
}
