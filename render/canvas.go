package render

import (
	"io"
	"strconv"
	"strings"
)

// Canvas is an off-screen grid of cells, painted in full and then written
// to the terminal in one go. A wide rune occupies its cell and the next,
// which holds rune 0.
type Canvas struct {
	width, height int
	cells         []Cell
}

var blank = Cell{Rune: ' '}

func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	c := &Canvas{width: width, height: height, cells: make([]Cell, width*height)}
	c.Clear(Style{})
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// index returns the offset of (x, y), or -1 off the canvas.
func (c *Canvas) index(x, y int) int {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return -1
	}
	return y*c.width + x
}

func (c *Canvas) row(y int) []Cell {
	return c.cells[y*c.width : (y+1)*c.width]
}

// Clear blanks every cell with style.
func (c *Canvas) Clear(style Style) {
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' ', Style: style}
	}
}

func (c *Canvas) Set(x, y int, r rune, style Style) {
	if i := c.index(x, y); i >= 0 {
		c.cells[i] = Cell{Rune: r, Style: style}
	}
}

func (c *Canvas) Get(x, y int) Cell {
	if i := c.index(x, y); i >= 0 {
		return c.cells[i]
	}
	return blank
}

// WriteString draws s from (x, y) and returns the number of columns used.
// Zero-width runes are dropped and a rune that would cross the right edge
// ends the write.
func (c *Canvas) WriteString(x, y int, s string, style Style) int {
	col := x
	for _, r := range s {
		w := RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.width {
			break
		}
		c.Set(col, y, r, style)
		if w == 2 {
			c.Set(col+1, y, 0, style)
		}
		col += w
	}
	return col - x
}

// Restyle rewrites the style of length cells from (x, y) with fn.
func (c *Canvas) Restyle(x, y, length int, fn func(Style) Style) {
	for col := max(x, 0); col < x+length; col++ {
		i := c.index(col, y)
		if i < 0 {
			return
		}
		c.cells[i].Style = fn(c.cells[i].Style)
	}
}

func (c *Canvas) DrawHLine(x, y, length int, r rune, style Style) {
	for col := x; col < x+length; col++ {
		c.Set(col, y, r, style)
	}
}

// Render returns the whole canvas as one escape-coded string, starting at
// the home position and emitting a style change only where it differs.
func (c *Canvas) Render() string {
	var sb strings.Builder
	sb.Grow(len(c.cells) * 2)
	sb.WriteString(CursorHome)

	var current Style
	writeStyle(&sb, current)
	for y, n := 0, c.height; y < n; y++ {
		if y > 0 {
			sb.WriteString("\r\n")
		}
		for _, cell := range c.row(y) {
			if cell.Rune == 0 {
				continue
			}
			if cell.Style != current {
				writeStyle(&sb, cell.Style)
				current = cell.Style
			}
			sb.WriteRune(cell.Rune)
		}
	}
	sb.WriteString(resetStyle)
	return sb.String()
}

func (c *Canvas) RenderTo(w io.Writer) error {
	_, err := io.WriteString(w, c.Render())
	return err
}

// writeStyle emits an SGR sequence that resets and then applies s.
func writeStyle(sb *strings.Builder, s Style) {
	sb.WriteString("\033[0")
	for _, attr := range []struct {
		on   bool
		code string
	}{
		{s.Bold, "1"},
		{s.Dim, "2"},
		{s.Italic, "3"},
		{s.Underline, "4"},
		{s.Reverse, "7"},
	} {
		if attr.on {
			sb.WriteByte(';')
			sb.WriteString(attr.code)
		}
	}
	if s.UseFgRGB {
		writeRGB(sb, "38", s.FgRGB)
	}
	if s.UseBgRGB {
		writeRGB(sb, "48", s.BgRGB)
	}
	sb.WriteByte('m')
}

func writeRGB(sb *strings.Builder, layer string, rgb [3]uint8) {
	sb.WriteString(";" + layer + ";2")
	for _, v := range rgb {
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(v)))
	}
}

// PlainText returns the canvas without escapes, trailing blanks trimmed
// from every row and trailing empty rows dropped.
func (c *Canvas) PlainText() string {
	lines := make([]string, 0, c.height)
	for y, n := 0, c.height; y < n; y++ {
		var line strings.Builder
		for _, cell := range c.row(y) {
			if cell.Rune != 0 {
				line.WriteRune(cell.Rune)
			}
		}
		lines = append(lines, strings.TrimRight(line.String(), " \t"))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n") + "\n"
}
