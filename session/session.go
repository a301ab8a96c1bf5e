// Package session remembers where the reader was: the open page, its
// scroll position, the history stacks and the theme.
package session

import (
	"os"

	"wikiterm/history"
	"wikiterm/statefile"
)

const fileName = "session.json"

// Session is the reader state saved at exit.
type Session struct {
	Current history.Entry   `json:"current"`
	Back    []history.Entry `json:"back"`    // oldest first
	Forward []history.Entry `json:"forward"` // bottom of the stack first
	Theme   string          `json:"theme,omitempty"`
}

// Empty reports whether there is no page to restore.
func (s *Session) Empty() bool {
	return s == nil || s.Current.Identifier == ""
}

func Path() (string, error) {
	return statefile.Path(fileName)
}

// Load reads the saved session. With nothing saved the error matches
// fs.ErrNotExist.
func Load() (*Session, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Session, error) {
	var s Session
	if err := statefile.Read(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func Save(s *Session) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, s)
}

func SaveFile(path string, s *Session) error {
	return statefile.Write(path, s)
}

// Clear forgets the saved session.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
