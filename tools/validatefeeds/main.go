// Command validatefeeds fetches every feed in sources.yml and reports the
// ones that fail to parse as RSS or Atom.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/NullMeDev/trendwire/pkg/sources"
)

type result struct {
	source   string
	feed     sources.Feed
	valid    bool
	message  string
	duration time.Duration
}

func main() {
	path := flag.String("sources", "config/sources.yml", "path to sources.yml")
	timeout := flag.Duration("timeout", 15*time.Second, "per-feed timeout")
	flag.Parse()

	fmt.Println("Feed Validator")
	fmt.Println("==============")

	list, err := sources.Load(*path)
	if err != nil {
		fmt.Printf("Error loading sources: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, src := range list {
		total += len(src.RSS)
	}
	fmt.Printf("Found %d feeds across %d sources\n\n", total, len(list))

	client := &http.Client{Timeout: *timeout}
	results := make(chan result, total)
	var wg sync.WaitGroup

	for _, src := range list {
		for _, feed := range src.RSS {
			wg.Add(1)
			go func(name string, feed sources.Feed) {
				defer wg.Done()
				results <- check(client, name, feed, *timeout)
			}(src.Name, feed)
		}
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var valid, invalid int
	var failed []string
	for r := range results {
		status := "OK  "
		if r.valid {
			valid++
		} else {
			status = "FAIL"
			invalid++
			failed = append(failed, fmt.Sprintf("%s (%s)", r.source, r.feed.URL))
		}
		fmt.Printf("%s %-28s %-9s [%6dms] %s\n",
			status, r.source, r.feed.Category, r.duration.Milliseconds(), r.message)
	}

	fmt.Println("\nValidation Summary:")
	fmt.Printf("Valid feeds:   %d\n", valid)
	fmt.Printf("Invalid feeds: %d\n", invalid)

	if invalid > 0 {
		fmt.Println("\nInvalid feeds:")
		for _, f := range failed {
			fmt.Printf("- %s\n", f)
		}
		os.Exit(1)
	}
}

// check parses one feed. A gofeed parser is not safe for concurrent use.
func check(client *http.Client, name string, feed sources.Feed, timeout time.Duration) result {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "trendwire feed validator/1.0"

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	r := result{source: name, feed: feed, duration: time.Since(start)}
	if err != nil {
		r.message = err.Error()
		return r
	}
	if len(parsed.Items) == 0 {
		r.message = "feed has no items"
		return r
	}

	r.valid = true
	r.message = fmt.Sprintf("%d items, %s", len(parsed.Items), parsed.FeedType)
	return r
}
