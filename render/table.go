package render

import "strings"

// Table is a boxed grid of text cells sized to its content.
type Table struct {
	Headers     []string
	Rows        [][]string
	HeaderStyle Style
	BorderStyle Style
}

// NewTable creates a table with a bold header row.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, HeaderStyle: Style{Bold: true}}
}

// AddRow appends a row. Missing cells are blank and extra cells dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		w[i] = StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			w[i] = max(w[i], StringWidth(cell))
		}
	}
	return w
}

// Size returns the cells the table occupies.
func (t *Table) Size() (width, height int) {
	width = 1
	for _, w := range t.widths() {
		width += w + 3
	}
	return width, len(t.Rows) + 4
}

// Draw paints the table at x, y and returns the rows used.
func (t *Table) Draw(c *Canvas, x, y int) int {
	if len(t.Headers) == 0 {
		return 0
	}
	widths := t.widths()
	row := y
	t.border(c, x, row, widths, "┌┬┐")
	row++
	t.cells(c, x, row, t.Headers, widths, t.HeaderStyle)
	row++
	t.border(c, x, row, widths, "├┼┤")
	row++
	for _, r := range t.Rows {
		t.cells(c, x, row, r, widths, Style{})
		row++
	}
	t.border(c, x, row, widths, "└┴┘")
	return row + 1 - y
}

func (t *Table) border(c *Canvas, x, y int, widths []int, joints string) {
	j := []rune(joints)
	c.Set(x, y, j[0], t.BorderStyle)
	x++
	for i, w := range widths {
		c.DrawHLine(x, y, w+2, '─', t.BorderStyle)
		x += w + 2
		if i < len(widths)-1 {
			c.Set(x, y, j[1], t.BorderStyle)
		} else {
			c.Set(x, y, j[2], t.BorderStyle)
		}
		x++
	}
}

func (t *Table) cells(c *Canvas, x, y int, cells []string, widths []int, style Style) {
	c.Set(x, y, '│', t.BorderStyle)
	x++
	for i, w := range widths {
		c.WriteString(x+1, y, PadRight(cells[i], w), style)
		x += w + 2
		c.Set(x, y, '│', t.BorderStyle)
		x++
	}
}

// String returns the table as plain text lines.
func (t *Table) String() string {
	w, h := t.Size()
	c := NewCanvas(w, h)
	t.Draw(c, 0, 0)
	return strings.TrimSuffix(c.PlainText(), "\n")
}
