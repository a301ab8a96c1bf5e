package omnibox

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"empty", "  ", Result{}},
		{"title", "Alan Turing", Result{Kind: Title, Page: "Alan Turing"}},
		{"title with anchor", "Go#Early history", Result{Kind: Title, Page: "Go", Anchor: "Early_history"}},
		{"wiki url", "https://en.wikipedia.org/wiki/Go_(programming_language)#History",
			Result{Kind: Title, Page: "Go (programming language)", Anchor: "History", Language: "en"}},
		{"escaped url", "https://de.wikipedia.org/wiki/K%C3%B6ln",
			Result{Kind: Title, Page: "Köln", Language: "de"}},
		{"mobile url", "https://fr.m.wikipedia.org/wiki/Paris", Result{Kind: Title, Page: "Paris", Language: "fr"}},
		{"index url", "https://en.wikipedia.org/w/index.php?title=Rust_(programming_language)",
			Result{Kind: Title, Page: "Rust (programming language)", Language: "en"}},
		{"file identifier", "file:notes/a.md#setup", Result{Kind: Local, Page: "file:notes/a.md", Anchor: "setup"}},
		{"markdown path", "README.md", Result{Kind: Local, Page: "file:README.md"}},
		{"search prefix", "? gopher mascot", Result{Kind: Search, Page: "gopher mascot"}},
		{"bare prefix is a title", "?", Result{Kind: Title, Page: "?"}},
		{"search words are a title", "Search engine", Result{Kind: Title, Page: "Search engine"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, expected %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{
		"https://example.com/wiki/Go",
		"https://en.wikipedia.org/",
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected an error", in)
		}
	}
}
