package main

import (
	"wikiterm/config"
	"wikiterm/viewport"
)

// commands maps configured actions to controller commands. Actions handled
// by the application itself (contents, toggleTheme, quit) are absent.
var commands = map[string]viewport.CommandKind{
	config.ActionScrollUp:       viewport.ScrollUp,
	config.ActionScrollDown:     viewport.ScrollDown,
	config.ActionHalfPageUp:     viewport.HalfPageUp,
	config.ActionHalfPageDown:   viewport.HalfPageDown,
	config.ActionPageUp:         viewport.PageUp,
	config.ActionPageDown:       viewport.PageDown,
	config.ActionTop:            viewport.Top,
	config.ActionBottom:         viewport.Bottom,
	config.ActionNextLink:       viewport.NextLink,
	config.ActionPreviousLink:   viewport.PreviousLink,
	config.ActionFirstLink:      viewport.FirstLink,
	config.ActionLastLink:       viewport.LastLink,
	config.ActionActivateLink:   viewport.ActivateLink,
	config.ActionStartSearch:    viewport.StartSearch,
	config.ActionSearchNext:     viewport.SearchNext,
	config.ActionSearchPrevious: viewport.SearchPrevious,
	config.ActionBack:           viewport.GoBack,
	config.ActionForward:        viewport.GoForward,
}

// searchKey maps a key typed while editing a search query to a command.
func searchKey(key string) (viewport.Command, bool) {
	switch key {
	case "<esc>", "<c-c>":
		return viewport.Command{Kind: viewport.CancelSearch}, true
	case "<enter>":
		return viewport.Command{Kind: viewport.SearchSubmit}, true
	case "<bs>":
		return viewport.Command{Kind: viewport.SearchBackspace}, true
	case "<space>":
		return viewport.Command{Kind: viewport.SearchInput, Rune: ' '}, true
	}
	if r := []rune(key); len(r) == 1 {
		return viewport.Command{Kind: viewport.SearchInput, Rune: r[0]}, true
	}
	return viewport.Command{}, false
}
