package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "articles.db"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	a := Article{Key: "en:Go", Title: "Go", PageID: 42, RevID: 7, HTML: "<p>hi</p>"}
	if err := s.Put(a); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Get("en:Go", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
	}
	if got.Title != "Go" || got.PageID != 42 || got.RevID != 7 || got.HTML != "<p>hi</p>" {
		t.Errorf("unexpected article %+v", got)
	}
	if !got.FetchedAt.Equal(now) {
		t.Errorf("FetchedAt = %v, expected %v", got.FetchedAt, now)
	}

	if _, ok, _ := s.Get("en:Rust", 0); ok {
		t.Error("unknown key should miss")
	}
}

func TestExpiry(t *testing.T) {
	s := openTestStore(t)
	base := time.Unix(1_700_000_000, 0)
	now := base
	s.now = func() time.Time { return now }

	if err := s.Put(Article{Key: "a", Title: "A", HTML: "x"}); err != nil {
		t.Fatal(err)
	}
	now = base.Add(2 * time.Hour)

	tests := []struct {
		name   string
		maxAge time.Duration
		hit    bool
	}{
		{"fresh enough", 3 * time.Hour, true},
		{"too old", time.Hour, false},
		{"no limit", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := s.Get("a", tt.maxAge)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.hit {
				t.Errorf("hit = %v, expected %v", ok, tt.hit)
			}
		})
	}
}

func TestReplaceDeletePrune(t *testing.T) {
	s := openTestStore(t)
	base := time.Unix(1_700_000_000, 0)
	now := base
	s.now = func() time.Time { return now }

	s.Put(Article{Key: "a", Title: "A", HTML: "old"})
	s.Put(Article{Key: "a", Title: "A", HTML: "new"})
	got, _, _ := s.Get("a", 0)
	if got.HTML != "new" {
		t.Errorf("Put should replace, got %q", got.HTML)
	}

	now = base.Add(48 * time.Hour)
	s.Put(Article{Key: "b", Title: "B", HTML: "b"})
	s.Put(Article{Key: "c", Title: "C", HTML: "c"})

	if err := s.Delete("c"); err != nil {
		t.Fatal(err)
	}
	n, err := s.Prune(24 * time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pruned %d, expected 1", n)
	}
	if count, _ := s.Count(); count != 1 {
		t.Errorf("count = %d, expected 1", count)
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Put(Article{Key: "k", Title: "K", HTML: "h"}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("k", 0); !ok {
		t.Error("expected a hit from the in-memory cache")
	}
}
