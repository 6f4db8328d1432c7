package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "rank trending news topics across sources",
		Version: AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   DefaultConfigPath,
				Usage:   "path to config.yml",
				EnvVars: []string{EnvConfigPath},
			},
			&cli.StringFlag{
				Name:  "sources",
				Usage: "path to sources.yml, overrides the config",
			},
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "dotenv file loaded before the config",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the API, the batch schedule and the sources watcher",
				Action: serveAction,
			},
			{
				Name:   "batch",
				Usage:  "run one batch and print the selected topics",
				Action: batchAction,
			},
			{
				Name:   "topics",
				Usage:  "print the last run and the newest tag batch",
				Action: topicsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10, Usage: "number of tags to print"},
				},
			},
			{
				Name:      "import",
				Usage:     "load articles from a JSON array or, with --site, an RSS/Atom file",
				ArgsUsage: "<file>",
				Action:    importAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "site", Usage: "source name for feed imports"},
					&cli.StringFlag{Name: "category", Value: sources.CategoryPolitics, Usage: "feed category for feed imports"},
				},
			},
		},
	}
}

// setup loads the environment and config and starts the logger
func setup(c *cli.Context) (*Config, error) {
	if err := LoadEnv(c.String("env")); err != nil {
		return nil, NewConfigError(ErrConfigLoad, "load env file", err)
	}

	cfg, err := loadConfigFile(c.String("config"))
	if err != nil {
		return nil, err
	}
	if p := c.String("sources"); p != "" {
		cfg.SourcesPath = p
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	if err := InitLogger(cfg.Logging.Dir, ParseLogLevel(cfg.Logging.Level)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile falls back to defaults when the file does not exist
func loadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := validate(cfg); err != nil {
			return nil, NewConfigError(ErrConfigValidation, "validate default config", err)
		}
		return cfg, nil
	}
	return LoadConfig(path)
}

func serveAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer Logger().Close()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.StartBackground(ctx); err != nil {
		return err
	}
	if err := app.state.SetStatus(StatusRunning); err != nil {
		Logger().Warning("Failed to save state: %v", err)
	}
	Logger().Info("%s %s started", AppName, AppVersion)
	return app.Serve(ctx)
}

func batchAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer Logger().Close()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.runner.Run(c.Context)
	if err != nil {
		return err
	}
	if snap == nil {
		return errors.New("batch did not complete")
	}
	printSnapshot(snap)
	return nil
}

func topicsAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer Logger().Close()

	state, err := ReadState(cfg.StatePath)
	switch {
	case os.IsNotExist(err):
		fmt.Println("No runs recorded yet")
	case err != nil:
		return fmt.Errorf("failed to read state: %w", err)
	default:
		printState(state)
	}

	if err := ensureDBDir(cfg.Database); err != nil {
		return err
	}
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return NewStoreError(ErrStoreConnection, "open store", err)
	}
	defer st.Close()

	batch, err := st.LatestBatch(c.Context)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("No tag batches stored")
		return nil
	}
	if err != nil {
		return NewStoreError(ErrStoreQuery, "latest batch", err)
	}
	printTags(batch, c.Int("limit"))
	return nil
}

func importAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: trendwire import [--site NAME --category CAT] <file>", 2)
	}

	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer Logger().Close()

	list, err := sources.Load(cfg.SourcesPath)
	if err != nil {
		return NewConfigError(ErrSourcesLoad, "load sources", err)
	}
	if err := ensureDBDir(cfg.Database); err != nil {
		return err
	}
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return NewStoreError(ErrStoreConnection, "open store", err)
	}
	defer st.Close()

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(c.Context, cfg.Batch.Timeout)
	defer cancel()

	im := NewImporter(st, sources.NewRegistry(list))
	var res ImportResult
	if site := c.String("site"); site != "" {
		res, err = im.ImportFeed(ctx, f, site, c.String("category"))
	} else {
		res, err = im.ImportJSON(ctx, f)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s articles, skipped %s\n",
		humanize.Comma(int64(res.Imported)), humanize.Comma(int64(res.Skipped)))
	return nil
}

func printSnapshot(snap *Snapshot) {
	fmt.Printf("Batch %s: %s articles, %s tags, pool of %d\n\n",
		snap.ID, humanize.Comma(int64(snap.ArticleCount)), humanize.Comma(int64(snap.TagCount)), snap.PoolSize)

	for i, t := range snap.Topics {
		fmt.Printf("%d. %s (%d sources, %.1f%% of pool)\n",
			i+1, t.Main.Term, t.Main.SourceCount, t.PercentageFreq*100)
		fmt.Printf("   related:  %s\n", relatedTerms(t.Related))
		fmt.Printf("   coverage: %d/%d\n", len(t.SourceCoverage.Yes), t.SourceCoverage.SourceCount)
		if t.Summary != "" {
			fmt.Printf("   summary:  %s\n", t.Summary)
		}
		for _, a := range t.Preview.Politics {
			fmt.Printf("   - %s (%s, %s)\n", a.Title, a.SiteName, humanize.Time(a.CreatedAt))
		}
		fmt.Println()
	}
}

func printState(s State) {
	if s.LastRunTime.IsZero() {
		fmt.Println("No successful runs yet")
	} else {
		fmt.Printf("Last run:  %s (%s)\n", s.LastRunTime.Format(time.RFC3339), humanize.Time(s.LastRunTime))
		fmt.Printf("Topics:    %s\n", strings.Join(s.LastTopics, ", "))
	}
	if !s.NextRunTime.IsZero() {
		fmt.Printf("Next run:  %s\n", humanize.Time(s.NextRunTime))
	}
	fmt.Printf("Runs:      %d ok, %d failed\n", s.RunCount, s.FailureCount)
	if s.LastError != "" {
		fmt.Printf("Last error %s: %s\n", humanize.Time(s.LastErrorTime), s.LastError)
	}
	fmt.Println()
}

func printTags(batch store.Batch, limit int) {
	ranked := topics.RankTags(batch.Tags)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	fmt.Printf("Tag batch %s from %s articles, %s\n",
		batch.ID, humanize.Comma(int64(batch.ArticleCount)), humanize.Time(batch.CreatedAt))
	fmt.Printf("%-30s %-8s %-8s\n", "TERM", "SOURCES", "FREQ")
	fmt.Println(strings.Repeat("-", 48))
	for _, t := range ranked {
		fmt.Printf("%-30s %-8d %-8d\n", t.Term, t.SourceCount, t.Frequency)
	}
}
