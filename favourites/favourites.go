// Package favourites keeps the list of pages the reader marked with m.
package favourites

import (
	"errors"
	"io/fs"
	"slices"
	"time"

	"wikiterm/statefile"
)

const fileName = "favourites.json"

type Favourite struct {
	Identifier string    `json:"identifier"`
	Title      string    `json:"title"`
	AddedAt    time.Time `json:"added_at"`
}

// Store is the favourites list, oldest first, bound to the file it was
// loaded from.
type Store struct {
	path       string
	Favourites []Favourite `json:"favourites"`
}

func Path() (string, error) {
	return statefile.Path(fileName)
}

func Load() (*Store, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the store at path. A missing file gives an empty store
// that Save creates.
func LoadFile(path string) (*Store, error) {
	s := &Store{path: path}
	err := statefile.Read(path, s)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

func (s *Store) Save() error {
	return statefile.Write(s.path, s)
}

// Add appends a page unless its identifier is already saved.
func (s *Store) Add(identifier, title string) bool {
	if s.Contains(identifier) {
		return false
	}
	s.Favourites = append(s.Favourites, Favourite{Identifier: identifier, Title: title, AddedAt: time.Now()})
	return true
}

func (s *Store) Contains(identifier string) bool {
	return slices.ContainsFunc(s.Favourites, func(f Favourite) bool { return f.Identifier == identifier })
}

// Remove drops the entry at index and reports whether it existed.
func (s *Store) Remove(index int) bool {
	if index < 0 || index >= len(s.Favourites) {
		return false
	}
	s.Favourites = slices.Delete(s.Favourites, index, index+1)
	return true
}

func (s *Store) Len() int {
	return len(s.Favourites)
}
