// Package find implements in-page search over laid out lines.
//
// Matching is a case-insensitive substring search over the text of each
// row. Markers and indentation are not searched, and a match never crosses
// a row or a piece of decoration. Positions are display columns, so a
// match can be highlighted directly on the screen.
package find

import (
	"errors"
	"unicode"

	"wikiterm/layout"
	"wikiterm/render"
)

// ErrNoMatches is returned when stepping through an empty result set.
var ErrNoMatches = errors.New("find: no matches")

// Match is one occurrence of the query. Start and End delimit the matched
// columns of the row as a half-open range.
type Match struct {
	Line  int
	Start int
	End   int
}

// cell is one searchable rune with its screen position.
type cell struct {
	r     rune
	col   int
	width int
}

// Search returns every non-overlapping occurrence of query in lines,
// ordered by line then column. An empty query matches nothing.
func Search(lines []layout.Line, query string) []Match {
	needle := fold([]rune(query))
	if len(needle) == 0 {
		return nil
	}

	var matches []Match
	for _, line := range lines {
		for _, run := range runs(line) {
			matches = append(matches, scan(line.Index, run, needle)...)
		}
	}
	return matches
}

// runs splits a row into stretches of consecutive text fragments.
func runs(line layout.Line) [][]cell {
	var out [][]cell
	var cur []cell
	col := 0
	for _, f := range line.Fragments {
		if f.Decoration() {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			col += render.StringWidth(f.Text)
			continue
		}
		for _, r := range f.Text {
			w := render.RuneWidth(r)
			cur = append(cur, cell{r: unicode.ToLower(r), col: col, width: w})
			col += w
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func scan(line int, run []cell, needle []rune) []Match {
	var matches []Match
	for i := 0; i+len(needle) <= len(run); {
		if !equalAt(run, i, needle) {
			i++
			continue
		}
		last := run[i+len(needle)-1]
		matches = append(matches, Match{Line: line, Start: run[i].col, End: last.col + last.width})
		i += len(needle)
	}
	return matches
}

func equalAt(run []cell, i int, needle []rune) bool {
	for j, r := range needle {
		if run[i+j].r != r {
			return false
		}
	}
	return true
}

func fold(rs []rune) []rune {
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

// State is the search state of one page: the query, its matches and the
// match the cursor is on.
type State struct {
	Query   string
	Matches []Match
	// Current indexes Matches, or is -1 before the first step.
	Current int
}

// NewState returns an inert search state.
func NewState() State {
	return State{Current: -1}
}

// SetQuery replaces the query and recomputes the matches over lines. The
// cursor is cleared.
func (s *State) SetQuery(lines []layout.Line, query string) {
	s.Query = query
	s.Matches = Search(lines, query)
	s.Current = -1
}

// Refresh recomputes the matches for the current query, for instance after
// the lines were laid out again.
func (s *State) Refresh(lines []layout.Line) {
	s.SetQuery(lines, s.Query)
}

// Reset clears the query and matches.
func (s *State) Reset() {
	*s = NewState()
}

// Active reports whether a non-empty query is set.
func (s *State) Active() bool {
	return s.Query != ""
}

// Next moves the cursor to the following match, wrapping from the last
// match to the first. With no matches it fails with ErrNoMatches and leaves
// the state unchanged.
func (s *State) Next() (Match, error) {
	if len(s.Matches) == 0 {
		return Match{}, ErrNoMatches
	}
	if s.Current < 0 || s.Current >= len(s.Matches)-1 {
		s.Current = 0
	} else {
		s.Current++
	}
	return s.Matches[s.Current], nil
}

// Previous moves the cursor to the preceding match, wrapping from the first
// match to the last.
func (s *State) Previous() (Match, error) {
	if len(s.Matches) == 0 {
		return Match{}, ErrNoMatches
	}
	if s.Current <= 0 || s.Current >= len(s.Matches) {
		s.Current = len(s.Matches) - 1
	} else {
		s.Current--
	}
	return s.Matches[s.Current], nil
}

// CurrentMatch returns the match under the cursor.
func (s *State) CurrentMatch() (Match, bool) {
	if s.Current < 0 || s.Current >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[s.Current], true
}

// OnLine returns the matches on the given line.
func (s *State) OnLine(line int) []Match {
	var out []Match
	for _, m := range s.Matches {
		if m.Line == line {
			out = append(out, m)
		}
		if m.Line > line {
			break
		}
	}
	return out
}
