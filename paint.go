package main

import (
	"fmt"
	"strings"
	"time"

	"wikiterm/layout"
	"wikiterm/render"
	"wikiterm/theme"
	"wikiterm/viewport"
)

// frame is everything one redraw needs.
type frame struct {
	view      viewport.View
	theme     *theme.Theme
	statusBar bool
	percent   bool
	spinner   string // current spinner frame
	elapsed   time.Duration
	keys      string // unfinished key sequence
	errNotice bool
	menu      *menu
}

func paint(c *render.Canvas, f frame) {
	th := f.theme
	v := f.view
	c.Clear(th.BaseStyle())

	for y, line := range v.Lines {
		x := 0
		for _, frag := range line.Fragments {
			style := th.Fragment(frag.Style, frag.Role)
			if frag.Link != layout.NoLink {
				style = th.LinkStyle(frag.Style, frag.Link == v.Selected)
			}
			x += c.WriteString(x, y, frag.Text, style)
		}
	}

	for _, m := range v.Matches {
		current := v.HasCurrent && m == v.Current
		hl := th.MatchStyle(current)
		c.Restyle(m.Start, m.Line-v.Top, m.End-m.Start, func(s render.Style) render.Style {
			return s.Merge(hl)
		})
	}

	if f.menu != nil {
		paintMenu(c, th, f.menu)
	}

	if f.statusBar || v.Mode == viewport.Searching || v.Notice != "" || v.Pending {
		paintStatus(c, f)
	}
}

func paintStatus(c *render.Canvas, f frame) {
	th := f.theme
	v := f.view
	y := c.Height() - 1
	style := th.StatusStyle()
	c.DrawHLine(0, y, c.Width(), ' ', style)

	var left string
	leftStyle := style
	switch {
	case v.Mode == viewport.Searching:
		left = "/" + v.Query + "_"
	case v.Notice != "":
		left = v.Notice
		leftStyle = th.NoticeStyle(f.errNotice)
	case v.Pending:
		left = fmt.Sprintf("%s loading %s", f.spinner, v.PendingTarget)
		if f.elapsed >= time.Second {
			left += fmt.Sprintf(" (%ds)", int(f.elapsed.Seconds()))
		}
	case v.Title != "":
		left = v.Title
	default:
		left = "wikiterm"
	}

	var right []string
	if f.keys != "" {
		right = append(right, f.keys)
	}
	if v.Query != "" {
		switch v.MatchCount {
		case 0:
			right = append(right, "no matches")
		case 1:
			right = append(right, "1 match")
		default:
			right = append(right, fmt.Sprintf("%d matches", v.MatchCount))
		}
	}
	if f.percent && v.Total > v.Height {
		right = append(right, fmt.Sprintf("%d%%", v.Percent()))
	}
	rightText := strings.Join(right, "  ")
	rightWidth := render.StringWidth(rightText)

	avail := c.Width() - rightWidth - 3
	c.WriteString(1, y, render.Truncate(left, max(avail, 0)), leftStyle)
	if rightWidth > 0 && rightWidth < c.Width()-1 {
		c.WriteString(c.Width()-rightWidth-1, y, rightText, style)
	}
}

// paintMenu draws an overlay menu as a centred box.
func paintMenu(c *render.Canvas, th *theme.Theme, m *menu) {
	width := min(60, c.Width()-4)
	height := min(max(len(m.items), 1)+2, c.Height()-3)
	if width < 10 || height < 3 {
		return
	}
	x0 := (c.Width() - width) / 2
	y0 := (c.Height() - 1 - height) / 2
	box := th.StatusStyle()

	for y := y0; y < y0+height; y++ {
		c.DrawHLine(x0, y, width, ' ', box)
	}
	title := box
	title.Bold = true
	c.WriteString(x0+2, y0, " "+m.title+" ", title)

	if len(m.items) == 0 {
		empty := box
		empty.Dim = true
		c.WriteString(x0+2, y0+1, "(empty)", empty)
		return
	}

	rows := height - 2
	first := m.scroll(rows)
	for i := 0; i < rows && first+i < len(m.items); i++ {
		style := box
		if first+i == m.selected {
			style = style.Merge(th.Selection.StyleBg())
			style.Bold = true
			c.DrawHLine(x0+1, y0+1+i, width-2, ' ', style)
		}
		c.WriteString(x0+2, y0+1+i, render.Truncate(m.items[first+i].label, width-4), style)
	}
}
