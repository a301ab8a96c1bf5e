package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wikiterm/document"
)

// Result is one title search hit.
type Result struct {
	Title   string
	Snippet string
	PageID  int64
}

// searchResponse represents the list=search reply.
type searchResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits int `json:"totalhits"`
		} `json:"searchinfo"`
		Search []struct {
			Title   string `json:"title"`
			PageID  int64  `json:"pageid"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

// Search runs a full text search and returns at most limit hits.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
	}
	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("searching %q: %w", query, resp.Error)
	}

	results := make([]Result, 0, len(resp.Query.Search))
	for _, item := range resp.Query.Search {
		results = append(results, Result{
			Title:   item.Title,
			PageID:  item.PageID,
			Snippet: stripTags(item.Snippet),
		})
	}
	c.logger.Debug("search", "query", query, "hits", len(results), "total", resp.Query.SearchInfo.TotalHits)
	return results, nil
}

// Resolve returns the title of the best search hit for query.
func (c *Client) Resolve(ctx context.Context, query string) (string, error) {
	results, err := c.Search(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", &document.FetchError{Kind: document.NotFound, Identifier: query}
	}
	return results[0].Title, nil
}

// stripTags removes the match highlighting markup from a snippet.
func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
