// Package render is the terminal backend: styled cells on a canvas, raw
// mode and display widths.
package render

import "github.com/mattn/go-runewidth"

// Cell is one terminal column. Rune 0 marks the right half of a wide rune.
type Cell struct {
	Rune  rune
	Style Style
}

// Style holds SGR attributes and optional 24-bit colors.
type Style struct {
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Reverse   bool

	FgRGB    [3]uint8
	UseFgRGB bool
	BgRGB    [3]uint8
	UseBgRGB bool
}

// Merge returns s with every attribute and color set in o layered on top.
func (s Style) Merge(o Style) Style {
	s.Bold = s.Bold || o.Bold
	s.Dim = s.Dim || o.Dim
	s.Italic = s.Italic || o.Italic
	s.Underline = s.Underline || o.Underline
	s.Reverse = s.Reverse || o.Reverse
	if o.UseFgRGB {
		s.FgRGB, s.UseFgRGB = o.FgRGB, true
	}
	if o.UseBgRGB {
		s.BgRGB, s.UseBgRGB = o.BgRGB, true
	}
	return s
}

// widths counts ambiguous-width runes as one column.
var widths = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

func RuneWidth(r rune) int { return widths.RuneWidth(r) }

func StringWidth(s string) int { return widths.StringWidth(s) }

// PadRight fills s with spaces to w columns.
func PadRight(s string, w int) string { return widths.FillRight(s, w) }

// TruncateToWidth cuts s to at most w columns.
func TruncateToWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return widths.Truncate(s, w, "")
}

// Truncate is TruncateToWidth with an ellipsis marking the cut, when
// there is room for one.
func Truncate(s string, w int) string {
	if w <= 1 {
		return TruncateToWidth(s, w)
	}
	return widths.Truncate(s, w, "…")
}
