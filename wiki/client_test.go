package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"wikiterm/cache"
	"wikiterm/document"
)

type fakeAPI struct {
	server *httptest.Server
	parses atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("unexpected user agent %q", ua)
		}
		q := r.URL.Query()
		switch q.Get("action") {
		case "parse":
			api.parses.Add(1)
			switch q.Get("page") {
			case "Go", "Golang":
				fmt.Fprint(w, `{"parse":{"title":"Go","pageid":1,"revid":99,"text":"<div class=\"mw-parser-output\"><p>Hello <a href=\"/wiki/World\">world</a></p></div>"}}`)
			case "Missing":
				fmt.Fprint(w, `{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`)
			case "Broken":
				fmt.Fprint(w, `not json`)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		case "query":
			if q.Get("list") != "search" {
				t.Errorf("unexpected query %v", q)
			}
			if q.Get("srsearch") == "nothing" {
				fmt.Fprint(w, `{"query":{"searchinfo":{"totalhits":0},"search":[]}}`)
				return
			}
			fmt.Fprint(w, `{"query":{"searchinfo":{"totalhits":2},"search":[
				{"title":"Go","pageid":1,"snippet":"<span class=\"searchmatch\">Go</span> is a   language"},
				{"title":"Go (game)","pageid":2,"snippet":"board game"}]}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (api *fakeAPI) client(c ArticleCache) *Client {
	return New(Options{BaseURL: api.server.URL, UserAgent: "test-agent", Cache: c})
}

func TestFetch(t *testing.T) {
	api := newFakeAPI(t)
	doc, err := api.client(nil).Fetch(context.Background(), "Golang")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Identifier != "Go" || doc.Title != "Go" {
		t.Errorf("redirect target not used: %q %q", doc.Identifier, doc.Title)
	}
	p := doc.Sections[0].Blocks[0].(*document.Paragraph)
	if document.PlainText(p.Spans) != "Hello world" || p.Spans[1].Link.Page != "World" {
		t.Errorf("unexpected content %+v", p.Spans)
	}
}

func TestFetchErrors(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(nil)

	tests := []struct {
		identifier string
		kind       document.FetchErrorKind
	}{
		{"Missing", document.NotFound},
		{"Broken", document.ParseError},
		{"Down", document.NetworkError},
		{"   ", document.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			_, err := c.Fetch(context.Background(), tt.identifier)
			var fe *document.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected a FetchError, got %v", err)
			}
			if fe.Kind != tt.kind {
				t.Errorf("kind = %v, expected %v", fe.Kind, tt.kind)
			}
		})
	}
}

func TestFetchCanceled(t *testing.T) {
	api := newFakeAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := api.client(nil).Fetch(ctx, "Go")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFetchUsesCache(t *testing.T) {
	api := newFakeAPI(t)
	store, err := cache.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	c := api.client(store)

	for i := 0; i < 3; i++ {
		doc, err := c.Fetch(context.Background(), "Go")
		if err != nil {
			t.Fatal(err)
		}
		if doc.Title != "Go" {
			t.Errorf("fetch %d: title %q", i, doc.Title)
		}
	}
	if n := api.parses.Load(); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}

	a, ok, err := store.Get("en:Go", 0)
	if err != nil || !ok {
		t.Fatalf("article not cached: ok=%v err=%v", ok, err)
	}
	if a.RevID != 99 || a.PageID != 1 {
		t.Errorf("unexpected cached article %+v", a)
	}
}

func TestSearch(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(nil)

	results, err := c.Search(context.Background(), "go", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Snippet != "Go is a language" {
		t.Errorf("snippet = %q", results[0].Snippet)
	}

	title, err := c.Resolve(context.Background(), "go")
	if err != nil || title != "Go" {
		t.Errorf("Resolve = %q, %v", title, err)
	}

	_, err = c.Resolve(context.Background(), "nothing")
	var fe *document.FetchError
	if !errors.As(err, &fe) || fe.Kind != document.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}
