// Package omnibox interprets what the user asked to open: an article
// title, a wiki URL, a local Markdown file or a search.
package omnibox

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind says how a target is opened.
type Kind int

const (
	Title  Kind = iota // open the article with this title
	Search             // open the best search hit
	Local              // open a Markdown file
)

func (k Kind) String() string {
	switch k {
	case Search:
		return "search"
	case Local:
		return "local"
	}
	return "title"
}

// Result represents the parsed input.
type Result struct {
	Kind     Kind
	Page     string // title, search query or file: identifier
	Anchor   string
	Language string // wiki edition named by a URL, empty otherwise
}

// Empty reports whether nothing was asked for.
func (r Result) Empty() bool {
	return r.Page == ""
}

// SearchPrefix forces a search, e.g. "?gopher mascot".
const SearchPrefix = "?"

// Parse interprets input. Only wiki URLs are accepted; other URLs are an
// error.
func Parse(input string) (Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, nil
	}

	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return parseURL(input)
	}

	if strings.HasPrefix(input, "file:") || isMarkdownPath(input) {
		page, anchor, _ := strings.Cut(strings.TrimPrefix(input, "file:"), "#")
		return Result{Kind: Local, Page: "file:" + page, Anchor: anchor}, nil
	}

	if query, ok := strings.CutPrefix(input, SearchPrefix); ok {
		if query = strings.TrimSpace(query); query != "" {
			return Result{Kind: Search, Page: query}, nil
		}
	}

	page, anchor, _ := strings.Cut(input, "#")
	return Result{Kind: Title, Page: strings.TrimSpace(page), Anchor: strings.ReplaceAll(anchor, " ", "_")}, nil
}

// parseURL accepts https://<lang>.wikipedia.org/wiki/<Title>#<anchor> and the
// mobile and index.php?title= forms.
func parseURL(input string) (Result, error) {
	u, err := url.Parse(input)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %q: %w", input, err)
	}
	host := strings.ToLower(u.Hostname())
	lang, rest, ok := strings.Cut(host, ".")
	if !ok || !strings.HasSuffix(rest, "wikipedia.org") {
		return Result{}, fmt.Errorf("not a wiki URL: %s", input)
	}
	if lang == "www" || lang == "m" {
		lang = ""
	}

	var title string
	switch {
	case strings.HasPrefix(u.Path, "/wiki/"):
		title = strings.TrimPrefix(u.Path, "/wiki/")
	case u.Path == "/w/index.php":
		title = u.Query().Get("title")
	}
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	if title == "" {
		return Result{}, fmt.Errorf("no article in %s", input)
	}
	return Result{Kind: Title, Page: title, Anchor: u.Fragment, Language: lang}, nil
}

func isMarkdownPath(s string) bool {
	lower := strings.ToLower(s)
	return !strings.Contains(s, " ") && (strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown"))
}
