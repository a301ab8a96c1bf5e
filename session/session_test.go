package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"wikiterm/history"
)

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	s := &Session{
		Current: history.Entry{Identifier: "Go", Snapshot: history.Snapshot{Top: 12, Block: 4, Width: 80, Selected: 2}},
		Back:    []history.Entry{{Identifier: "Programming language", Snapshot: history.Snapshot{Selected: -1}}},
		Forward: []history.Entry{{Identifier: "Rust", Snapshot: history.Snapshot{Top: 3, Width: 100, Selected: -1}}},
		Theme:   "nord",
	}
	if err := SaveFile(path, s); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", got, s)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEmpty(t *testing.T) {
	var nilSession *Session
	tests := []struct {
		name     string
		s        *Session
		expected bool
	}{
		{"nil", nilSession, true},
		{"no current page", &Session{Back: []history.Entry{{Identifier: "A"}}}, true},
		{"current page", &Session{Current: history.Entry{Identifier: "A"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Empty(); got != tt.expected {
				t.Errorf("Empty() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
