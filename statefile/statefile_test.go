package statefile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	if err := Write(path, record{"a", 1}); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, record{"b", 2}); err != nil {
		t.Fatal(err)
	}

	var got record
	if err := Read(path, &got); err != nil {
		t.Fatal(err)
	}
	if got != (record{"b", 2}) {
		t.Errorf("got %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	var r record
	if err := Read(filepath.Join(dir, "missing.json"), &r); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Read(bad, &r); err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("expected a parse error naming the file, got %v", err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	p, err := Path("session.json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p, filepath.Join("wikiterm", "session.json")) {
		t.Errorf("got %q", p)
	}
}
