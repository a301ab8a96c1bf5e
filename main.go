// Wikiterm is a terminal encyclopedia reader.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wikiterm/cache"
	"wikiterm/config"
	"wikiterm/document"
	"wikiterm/layout"
	"wikiterm/markdown"
	"wikiterm/omnibox"
	"wikiterm/render"
	"wikiterm/session"
	"wikiterm/theme"
	"wikiterm/wiki"
)

type options struct {
	query      string
	print      bool
	search     bool
	width      int
	initConfig bool
	themes     bool
	forget     bool
	help       bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		printUsage()
		os.Exit(2)
	}

	if opts.help {
		printUsage()
		return
	}

	// Generate default config and exit
	if opts.initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}
	if opts.themes {
		fmt.Println(themeTable().String())
		return
	}
	if opts.forget {
		if err := session.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if opts.print {
		if err := runPrint(opts); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (options, error) {
	var opts options
	var words []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-p", "--print":
			opts.print = true
		case "-s", "--search":
			opts.search = true
		case "-w", "--width":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s needs a value", arg)
			}
			i++
			w, err := strconv.Atoi(args[i])
			if err != nil || w < 1 {
				return opts, fmt.Errorf("invalid width %q", args[i])
			}
			opts.width = w
		case "--init-config":
			opts.initConfig = true
		case "--themes":
			opts.themes = true
		case "--forget":
			opts.forget = true
		case "-h", "--help":
			opts.help = true
		default:
			if strings.HasPrefix(arg, "-") && len(arg) > 1 {
				return opts, fmt.Errorf("unknown option %s", arg)
			}
			words = append(words, arg)
		}
	}
	opts.query = strings.Join(words, " ")
	if opts.search && opts.query == "" {
		return opts, fmt.Errorf("-s needs a search query")
	}
	return opts, nil
}

func printUsage() {
	fmt.Println(`Wikiterm - Terminal Encyclopedia Reader

Usage: wikiterm [options] [title[#section] | wiki URL | ?query | file:path.md]

Options:
  -p, --print       Print the page to stdout (one-shot mode)
  -s, --search      Treat the arguments as a search query and open the best match
  -w, --width N     Line width for --print (default: terminal width)
  --init-config     Output default config (redirect to ~/.config/wikiterm/config.toml)
  --themes          List built-in themes
  --forget          Delete the saved session
  -h, --help        Show this help

Examples:
  wikiterm                                  Restore the last session
  wikiterm Go (programming language)        Open a page
  wikiterm -s gopher mascot                 Search and open the best match
  wikiterm https://de.wikipedia.org/wiki/Köln  Open a page from another edition
  wikiterm -p -w 72 Alan Turing             Print a page to stdout
  wikiterm file:README.md                   Read a local Markdown file

Configuration:
  Config file: ~/.config/wikiterm/config.toml
  Generate with: wikiterm --init-config > ~/.config/wikiterm/config.toml`)
}

// setupLogger opens the log file. Logging must never write to the
// terminal, so failures fall back to discarding.
func setupLogger(cfg *config.Config) (*slog.Logger, func()) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	path, err := cfg.LogPath()
	if err != nil {
		return discard, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return discard, func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	return logger, func() { f.Close() }
}

// newFetcher wires the encyclopedia client, its cache and the local file
// loader.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*router, *wiki.Client, func()) {
	closeCache := func() {}
	wopts := wiki.Options{
		Language:  cfg.Fetcher.Language,
		BaseURL:   cfg.Fetcher.BaseURL,
		UserAgent: cfg.Fetcher.UserAgent,
		Timeout:   cfg.Fetcher.Timeout(),
		MaxAge:    cfg.Cache.MaxAge(),
		Logger:    logger,
	}

	if cfg.Cache.Enabled {
		store, err := openCache(cfg, logger)
		if err != nil {
			logger.Warn("article cache disabled", "error", err)
		} else {
			wopts.Cache = store
			closeCache = func() { store.Close() }
		}
	}

	client := wiki.New(wopts)
	r := &router{
		local:  markdown.NewLoader(logger),
		remote: client,
	}
	return r, client, closeCache
}

func openCache(cfg *config.Config, logger *slog.Logger) (*cache.Store, error) {
	path, err := cfg.CachePath()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(path)
	if err != nil {
		return nil, err
	}
	if maxAge := cfg.Cache.MaxAge(); maxAge > 0 {
		if n, err := store.Prune(maxAge); err != nil {
			logger.Warn("pruning cache failed", "error", err)
		} else if n > 0 {
			logger.Info("pruned cache", "articles", n)
		}
	}
	return store, nil
}

// parseTarget interprets the command line words. -s turns a title into a
// search.
func parseTarget(cfg *config.Config, opts options) (omnibox.Result, error) {
	target, err := omnibox.Parse(opts.query)
	if err != nil {
		return target, err
	}
	if opts.search && target.Kind == omnibox.Title {
		target = omnibox.Result{Kind: omnibox.Search, Page: strings.TrimSpace(opts.query)}
	}
	// A URL from another edition switches the fetcher to it.
	if target.Language != "" && cfg.Fetcher.BaseURL == "" {
		cfg.Fetcher.Language = target.Language
	}
	return target, nil
}

// resolveQuery turns a target into a page identifier, searching when asked
// to.
func resolveQuery(ctx context.Context, client *wiki.Client, target omnibox.Result) (string, error) {
	if target.Kind != omnibox.Search {
		return target.Page, nil
	}
	title, err := client.Resolve(ctx, target.Page)
	if err != nil {
		return "", fmt.Errorf("searching for %q: %w", target.Page, err)
	}
	return title, nil
}

func runPrint(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, closeLog := setupLogger(cfg)
	defer closeLog()

	target, err := parseTarget(cfg, opts)
	if err != nil {
		return err
	}
	if target.Empty() {
		return fmt.Errorf("no page given")
	}

	fetcher, client, closeCache := newFetcher(cfg, logger)
	defer closeCache()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetcher.Timeout()+5*time.Second)
	defer cancel()

	identifier, err := resolveQuery(ctx, client, target)
	if err != nil {
		return err
	}
	doc, err := fetcher.Fetch(ctx, identifier)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", identifier, err)
	}

	// Flag width first, then terminal width, then config default
	width := opts.width
	if width == 0 {
		width = cfg.Display.DefaultWidth
		if w, _, werr := render.TerminalSize(); werr == nil && w > 0 {
			width = w
		}
	}
	return printDocument(os.Stdout, doc, width)
}

func printDocument(w io.Writer, doc *document.Document, width int) error {
	lay, err := layout.Layout(doc, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, lay.Text())
	return err
}

// themeTable lists the built-in themes and the variant each toggles to.
func themeTable() *render.Table {
	tbl := render.NewTable("Theme", "Mode", "Toggles to")
	for _, name := range theme.Names() {
		th, _ := theme.ByName(name)
		mode := "light"
		if th.Dark {
			mode = "dark"
		}
		variant := "-"
		if v := theme.Variant(th); v != th {
			variant = v.Name
		}
		tbl.AddRow(name, mode, variant)
	}
	return tbl
}
