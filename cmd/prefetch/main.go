// Command prefetch searches the wiki for a list of topics and stores the
// matching articles in the local cache, so they open without a network
// round trip later.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wikiterm/cache"
	"wikiterm/config"
	"wikiterm/wiki"
)

func main() {
	var (
		delay       = flag.Duration("delay", 2*time.Second, "Delay between requests")
		maxPerTopic = flag.Int("max", 5, "Articles to fetch per topic")
		dryRun      = flag.Bool("dry-run", false, "Print titles without fetching")
		topicFile   = flag.String("file", "", "Read topics from file, one per line")
		dbPath      = flag.String("db", "", "Cache database path (default from config)")
		verbose     = flag.Bool("v", false, "Log requests to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: prefetch [flags] [topic ...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	topics := flag.Args()
	if *topicFile != "" {
		fromFile, err := readTopics(*topicFile)
		if err != nil {
			log.Fatalf("Failed to read topics: %v", err)
		}
		topics = append(topics, fromFile...)
	}
	if len(topics) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: %v (using defaults)", err)
		cfg = config.Default()
	}
	if *dbPath != "" {
		cfg.Cache.Path = *dbPath
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	path, err := cfg.CachePath()
	if err != nil {
		log.Fatalf("Failed to locate cache: %v", err)
	}
	store, err := cache.Open(path)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer store.Close()

	client := wiki.New(wiki.Options{
		Language:  cfg.Fetcher.Language,
		BaseURL:   cfg.Fetcher.BaseURL,
		UserAgent: cfg.Fetcher.UserAgent,
		Timeout:   cfg.Fetcher.Timeout(),
		Cache:     store,
		MaxAge:    cfg.Cache.MaxAge(),
		Logger:    logger,
	})

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := &prefetcher{
		client: client,
		store:  store,
		maxAge: cfg.Cache.MaxAge(),
		delay:  *delay,
		dryRun: *dryRun,
		out:    os.Stdout,
	}
	for i, topic := range topics {
		if ctx.Err() != nil {
			break
		}
		fmt.Printf("\n[%d/%d] Searching: %s\n", i+1, len(topics), topic)
		if err := p.topic(ctx, topic, *maxPerTopic); err != nil {
			log.Printf("  Error: %v", err)
		}
	}

	total, _ := store.Count()
	if ctx.Err() != nil {
		fmt.Printf("\nStopping. Fetched %d articles, %d already cached (%d in cache)\n", p.fetched, p.cached, total)
		return
	}
	fmt.Printf("\nDone! Fetched %d articles, %d already cached (%d in cache)\n", p.fetched, p.cached, total)
}

type prefetcher struct {
	client *wiki.Client
	store  *cache.Store
	maxAge time.Duration
	delay  time.Duration
	dryRun bool
	out    io.Writer

	fetched int
	cached  int
}

// topic fetches the first limit search results for query.
func (p *prefetcher) topic(ctx context.Context, query string, limit int) error {
	results, err := p.client.Search(ctx, query, limit)
	if err != nil {
		return err
	}
	for _, r := range results {
		if p.dryRun {
			fmt.Fprintf(p.out, "  %s\n", r.Title)
			continue
		}
		if _, ok, err := p.store.Get(p.client.CacheKey(r.Title), p.maxAge); err == nil && ok {
			p.cached++
			continue
		}
		if err := sleep(ctx, p.delay); err != nil {
			return err
		}
		if _, err := p.client.Fetch(ctx, r.Title); err != nil {
			fmt.Fprintf(p.out, "  %s: %v\n", r.Title, err)
			continue
		}
		fmt.Fprintf(p.out, "  %s\n", r.Title)
		p.fetched++
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// readTopics reads one topic per line, skipping blanks and # comments.
func readTopics(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var topics []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	return topics, sc.Err()
}
