// Package wiki fetches Wikipedia articles through the MediaWiki action API
// and converts their rendered HTML into documents.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wikiterm/cache"
	"wikiterm/document"
)

// ArticleCache stores raw article HTML between runs. *cache.Store
// satisfies it.
type ArticleCache interface {
	Get(key string, maxAge time.Duration) (cache.Article, bool, error)
	Put(a cache.Article) error
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Language   string // "en" when empty
	BaseURL    string // API endpoint, overrides Language
	UserAgent  string
	Timeout    time.Duration
	Cache      ArticleCache
	MaxAge     time.Duration
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client fetches articles. It implements document.Fetcher.
type Client struct {
	endpoint  string
	language  string
	userAgent string
	client    *http.Client
	cache     ArticleCache
	maxAge    time.Duration
	logger    *slog.Logger
}

// New creates a client.
func New(opts Options) *Client {
	c := &Client{
		language:  opts.Language,
		endpoint:  opts.BaseURL,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		cache:     opts.Cache,
		maxAge:    opts.MaxAge,
		logger:    opts.Logger,
	}
	if c.language == "" {
		c.language = "en"
	}
	if c.endpoint == "" {
		c.endpoint = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", c.language)
	}
	if c.userAgent == "" {
		c.userAgent = "wikiterm/1.0 (terminal encyclopedia reader)"
	}
	if c.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Language returns the wiki language code.
func (c *Client) Language() string {
	return c.language
}

// parseResponse is the action=parse reply with formatversion=2.
type parseResponse struct {
	Parse *struct {
		Title  string `json:"title"`
		PageID int64  `json:"pageid"`
		RevID  int64  `json:"revid"`
		Text   string `json:"text"`
	} `json:"parse"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) Error() string {
	return e.Code + ": " + e.Info
}

// CacheKey is the key an article title is cached under.
func (c *Client) CacheKey(title string) string {
	return c.language + ":" + strings.TrimSpace(title)
}

// Fetch returns the article with the given title. Fresh cached copies are
// served without a request; fetched articles are written back to the cache.
func (c *Client) Fetch(ctx context.Context, identifier string) (*document.Document, error) {
	title := strings.TrimSpace(identifier)
	if title == "" {
		return nil, &document.FetchError{Kind: document.NotFound, Identifier: identifier}
	}
	key := c.CacheKey(title)

	if doc, ok := c.fromCache(key, title); ok {
		return doc, nil
	}

	start := time.Now()
	params := url.Values{
		"action":             {"parse"},
		"page":               {title},
		"prop":               {"text|revid"},
		"format":             {"json"},
		"formatversion":      {"2"},
		"redirects":          {"1"},
		"disableeditsection": {"1"},
		"disabletoc":         {"1"},
	}
	var resp parseResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fetchError(title, err)
	}
	if resp.Error != nil {
		kind := document.NetworkError
		switch resp.Error.Code {
		case "missingtitle", "invalidtitle", "nosuchpageid":
			kind = document.NotFound
		}
		return nil, &document.FetchError{Kind: kind, Identifier: title, Err: resp.Error}
	}
	if resp.Parse == nil {
		return nil, &document.FetchError{Kind: document.ParseError, Identifier: title, Err: errors.New("empty parse result")}
	}

	doc, err := Parse(resp.Parse.Title, resp.Parse.Title, resp.Parse.Text)
	if err != nil {
		return nil, &document.FetchError{Kind: document.ParseError, Identifier: title, Err: err}
	}
	c.logger.Info("fetched article",
		"title", resp.Parse.Title,
		"revision", resp.Parse.RevID,
		"bytes", len(resp.Parse.Text),
		"duration", time.Since(start))

	if c.cache != nil {
		err := c.cache.Put(cache.Article{
			Key:    key,
			Title:  resp.Parse.Title,
			PageID: resp.Parse.PageID,
			RevID:  resp.Parse.RevID,
			HTML:   resp.Parse.Text,
		})
		if err != nil {
			c.logger.Warn("caching article failed", "title", title, "error", err)
		}
	}
	return doc, nil
}

func (c *Client) fromCache(key, title string) (*document.Document, bool) {
	if c.cache == nil {
		return nil, false
	}
	a, ok, err := c.cache.Get(key, c.maxAge)
	if err != nil {
		c.logger.Warn("reading cache failed", "title", title, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	doc, err := Parse(a.Title, a.Title, a.HTML)
	if err != nil {
		c.logger.Warn("cached article unreadable", "title", title, "error", err)
		return nil, false
	}
	c.logger.Debug("cache hit", "title", a.Title, "age", time.Since(a.FetchedAt))
	return doc, true
}

// get performs one API call and decodes the JSON reply into v.
func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("server returned status %d", e.code) }

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "parsing response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// fetchError classifies a transport failure.
func fetchError(title string, err error) error {
	kind := document.NetworkError
	var se *statusError
	var de *decodeError
	switch {
	case errors.As(err, &se) && se.code == http.StatusNotFound:
		kind = document.NotFound
	case errors.As(err, &de):
		kind = document.ParseError
	}
	return &document.FetchError{Kind: kind, Identifier: title, Err: err}
}
