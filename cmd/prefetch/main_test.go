package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"wikiterm/cache"
	"wikiterm/wiki"
)

func TestPrefetcherTopic(t *testing.T) {
	var parses atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "query":
			fmt.Fprint(w, `{"query":{"search":[{"title":"Alpha","pageid":1},{"title":"Beta","pageid":2},{"title":"Gone","pageid":3}]}}`)
		case "parse":
			parses.Add(1)
			page := q.Get("page")
			if page == "Gone" {
				fmt.Fprint(w, `{"error":{"code":"missingtitle","info":"missing"}}`)
				return
			}
			fmt.Fprintf(w, `{"parse":{"title":%q,"pageid":1,"revid":1,"text":"<p>%s</p>"}}`, page, page)
		}
	}))
	defer srv.Close()

	store, err := cache.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	client := wiki.New(wiki.Options{BaseURL: srv.URL, Cache: store})
	if err := store.Put(cache.Article{Key: client.CacheKey("Beta"), Title: "Beta", HTML: "<p>Beta</p>"}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	p := &prefetcher{client: client, store: store, out: &out}
	if err := p.topic(context.Background(), "letters", 3); err != nil {
		t.Fatal(err)
	}

	if p.fetched != 1 || p.cached != 1 {
		t.Errorf("fetched %d, cached %d; expected 1 and 1", p.fetched, p.cached)
	}
	if n := parses.Load(); n != 2 {
		t.Errorf("expected 2 parse requests, got %d", n)
	}
	if !strings.Contains(out.String(), "Gone:") {
		t.Errorf("missing article not reported:\n%s", out.String())
	}
	if n, _ := store.Count(); n != 2 {
		t.Errorf("expected 2 cached articles, got %d", n)
	}
}

func TestPrefetcherDryRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "parse" {
			t.Error("dry run should not fetch articles")
		}
		fmt.Fprint(w, `{"query":{"search":[{"title":"Alpha","pageid":1}]}}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	p := &prefetcher{client: wiki.New(wiki.Options{BaseURL: srv.URL}), dryRun: true, out: &out}
	if err := p.topic(context.Background(), "letters", 1); err != nil {
		t.Fatal(err)
	}
	if out.String() != "  Alpha\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestSleepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); err == nil {
		t.Error("expected the canceled context to stop the sleep")
	}
}

func TestReadTopics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.txt")
	content := "# physics\nquantum mechanics\n\n  relativity  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := readTopics(path)
	if err != nil {
		t.Fatal(err)
	}
	if expected := []string{"quantum mechanics", "relativity"}; !reflect.DeepEqual(got, expected) {
		t.Errorf("got %q, expected %q", got, expected)
	}
}
