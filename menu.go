package main

import (
	"strings"

	"wikiterm/document"
	"wikiterm/favourites"
	"wikiterm/layout"
)

// menuItem is one row of an overlay menu. Contents rows carry the heading
// block, favourites rows the page identifier.
type menuItem struct {
	label      string
	block      document.BlockID
	identifier string
}

// menu is a scrollable overlay list: the table of contents or the
// favourites.
type menu struct {
	title    string
	items    []menuItem
	selected int
	offset   int
}

// contentsMenu opens on the section containing line top.
func contentsMenu(toc []layout.TOCEntry, top int) *menu {
	m := &menu{title: "Contents"}
	for i, e := range toc {
		m.items = append(m.items, menuItem{
			label: strings.Repeat("  ", max(e.Level-1, 0)) + e.Number + " " + e.Title,
			block: e.Block,
		})
		if e.Line <= top {
			m.selected = i
		}
	}
	return m
}

func favouritesMenu(favs []favourites.Favourite) *menu {
	m := &menu{title: "Favourites"}
	for _, f := range favs {
		m.items = append(m.items, menuItem{label: f.Title, identifier: f.Identifier})
	}
	return m
}

func (m *menu) move(delta int) {
	m.selected = max(min(m.selected+delta, len(m.items)-1), 0)
}

func (m *menu) current() menuItem {
	return m.items[m.selected]
}

// remove drops the selected row.
func (m *menu) remove() {
	if len(m.items) == 0 {
		return
	}
	m.items = append(m.items[:m.selected], m.items[m.selected+1:]...)
	m.selected = min(m.selected, max(len(m.items)-1, 0))
}

// scroll keeps the selection within rows visible rows and returns the first
// visible row.
func (m *menu) scroll(rows int) int {
	if rows < 1 {
		return m.selected
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
	m.offset = min(m.offset, max(len(m.items)-rows, 0))
	return m.offset
}
