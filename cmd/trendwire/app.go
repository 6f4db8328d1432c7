package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/tags"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

// App wires the service components together
type App struct {
	cfg       *Config
	store     *store.Store
	registry  *sources.Registry
	extractor *tags.Extractor
	builder   *topics.Builder
	cache     *Cache
	state     *StateManager
	errors    *ErrorSystem
	hub       *Hub
	runner    *BatchRunner
	limiter   *rate.Limiter
	started   time.Time

	scheduler *Scheduler
	watcher   *SourcesWatcher
}

// NewApp opens storage, loads sources and state, and builds the batch runner
func NewApp(cfg *Config) (*App, error) {
	list, err := sources.Load(cfg.SourcesPath)
	if err != nil {
		return nil, NewConfigError(ErrSourcesLoad, "load sources", err)
	}

	if err := ensureDBDir(cfg.Database); err != nil {
		return nil, NewStoreError(ErrStoreConnection, "create database directory", err)
	}
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, NewStoreError(ErrStoreConnection, "open store", err)
	}

	state, err := LoadState(cfg.StatePath)
	if err != nil {
		st.Close()
		return nil, NewConfigError(ErrConfigLoad, "load state", err)
	}

	app := &App{
		cfg:      cfg,
		store:    st,
		registry: sources.NewRegistry(list),
		cache:    NewCache(DefaultCacheDuration, MaxCacheSize),
		state:    state,
		errors:   NewErrorSystem(100),
		limiter:  rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
		started:  time.Now(),
	}

	tagOpts := tags.Options{
		MinFrequency: cfg.Tags.MinFrequency,
		MaxRelated:   cfg.Tags.MaxRelated,
		SkipTerms:    cfg.Tags.SkipTerms,
	}
	if cfg.Tags.EnglishOnly {
		tagOpts.Language = tags.NewEnglishFilter()
	}
	app.extractor = tags.NewExtractor(tagOpts)

	app.builder = topics.NewBuilder(app.registry, topics.Options{
		MinSourceCount: cfg.Topics.MinSourceCount,
		MaxAttempts:    cfg.Topics.MaxAttempts,
		PreviewLimit:   cfg.Topics.PreviewLimit,
		Logger:         Logger(),
	})

	app.hub = NewHub(func() interface{} {
		if snap, ok := app.runner.Latest(); ok {
			return snap
		}
		return nil
	})

	var notifier Notifier
	if cfg.Discord.Enabled() {
		n, err := NewDiscordNotifier(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			app.Close()
			return nil, NewNotifyError(ErrNotifyDiscord, "create discord notifier", err)
		}
		notifier = n
	}

	var summarizer Summarizer
	if cfg.OpenAI.Enabled() {
		summarizer = NewOpenAISummarizer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	app.runner = NewBatchRunner(BatchOptions{
		Store:       st,
		Registry:    app.registry,
		Extractor:   app.extractor,
		Builder:     app.builder,
		Cache:       app.cache,
		State:       state,
		Errors:      app.errors,
		Broadcaster: app.hub,
		Notifier:    notifier,
		Summarizer:  summarizer,
		Config:      cfg.Batch,
	})

	Logger().Info("Loaded %d sources, storage %s", len(list), cfg.Database.Driver)
	return app, nil
}

// StartBackground starts the sources watcher and the batch schedule
func (a *App) StartBackground(ctx context.Context) error {
	watcher, err := NewSourcesWatcher(a.cfg.SourcesPath, a.registry, SourcesCheckInterval)
	if err != nil {
		Logger().Warning("Sources hot reload disabled: %v", err)
	} else {
		watcher.SetReloadHandler(func([]sources.Source) {
			a.cache.Delete(CacheKeyPool)
			a.cache.Delete(CacheKeyToday)
		})
		watcher.StartWatching()
		a.watcher = watcher
	}

	scheduler, err := NewScheduler(a.cfg.Batch.Cron, func() { a.runScheduledBatch(ctx) })
	if err != nil {
		return err
	}
	scheduler.Start()
	a.scheduler = scheduler
	a.recordNextRun()

	if a.cfg.Batch.RunOnStartup {
		go a.runScheduledBatch(ctx)
	}
	return nil
}

func (a *App) runScheduledBatch(ctx context.Context) {
	defer RecoverFromPanic("scheduler")
	defer a.recordNextRun()

	if _, err := a.runner.Run(ctx); err == ErrBatchRunning {
		Logger().Info("Skipping scheduled batch: %s", ErrMsgBatchActive)
	}
}

func (a *App) recordNextRun() {
	if a.scheduler == nil {
		return
	}
	if err := a.state.SetNextRun(a.scheduler.NextRun()); err != nil {
		Logger().Warning("Failed to save state: %v", err)
	}
}

// Close stops background work and releases resources
func (a *App) Close() {
	if a.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		a.scheduler.Stop(ctx)
		cancel()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	a.cache.Close()
	if err := a.state.MarkShutdown(); err != nil {
		Logger().Warning("Failed to save state: %v", err)
	}
	if err := a.store.Close(); err != nil {
		Logger().Warning("Failed to close store: %v", err)
	}
}

// ensureDBDir creates the parent directory of a SQLite file DSN
func ensureDBDir(db DatabaseConfig) error {
	if db.Driver != store.DriverSQLite {
		return nil
	}
	dsn := db.DSN
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	return os.MkdirAll(filepath.Dir(dsn), 0755)
}
