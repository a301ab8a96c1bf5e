package layout

import (
	"strings"
	"unicode"

	"wikiterm/document"
	"wikiterm/render"
)

// piece is the part of a token that comes from one span.
type piece struct {
	text  string
	style document.Style
	link  int
	span  int
}

// token is an unbreakable unit for wrapping. Pieces of adjacent spans that
// are not separated by whitespace belong to the same token, and the visible
// text of a link is always a single token.
type token struct {
	pieces []piece
	width  int
}

func (t *token) add(p piece) {
	t.pieces = append(t.pieces, p)
	t.width += render.StringWidth(p.text)
}

// tokenize splits spans into tokens, registering each link span with the
// layouter.
func (l *layouter) tokenize(block document.BlockID, spans []document.InlineSpan, strong bool) []token {
	var tokens []token
	var cur token
	flush := func() {
		if len(cur.pieces) > 0 {
			tokens = append(tokens, cur)
		}
		cur = token{}
	}

	for si, span := range spans {
		style := span.Style
		if strong {
			style.Strong = true
		}

		if span.Link != nil {
			text := strings.Join(strings.Fields(span.Text), " ")
			if text == "" {
				continue
			}
			if startsWithSpace(span.Text) {
				flush()
			}
			link := l.addLink(*span.Link, block, si)
			cur.add(piece{text: text, style: style, link: link, span: si})
			if endsWithSpace(span.Text) {
				flush()
			}
			continue
		}

		var word strings.Builder
		for _, r := range span.Text {
			if unicode.IsSpace(r) {
				if word.Len() > 0 {
					cur.add(piece{text: word.String(), style: style, link: NoLink, span: si})
					word.Reset()
				}
				flush()
				continue
			}
			word.WriteRune(r)
		}
		if word.Len() > 0 {
			cur.add(piece{text: word.String(), style: style, link: NoLink, span: si})
		}
	}
	flush()

	return tokens
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func endsWithSpace(s string) bool {
	return strings.TrimRightFunc(s, unicode.IsSpace) != s
}

// wrap greedily fills rows of the given width with the tokens of spans.
// Tokens wider than the width are split at character boundaries.
func (l *layouter) wrap(block document.BlockID, spans []document.InlineSpan, width int, role Role, strong bool) []row {
	tokens := l.tokenize(block, spans, strong)
	if len(tokens) == 0 {
		return nil
	}

	var rows []row
	cur := row{block: block}
	used := 0
	newRow := func() {
		rows = append(rows, cur)
		cur = row{block: block}
		used = 0
	}
	place := func(p piece, text string) {
		cur.add(Fragment{Text: text, Style: p.style, Role: role, Link: p.link})
		cur.noteSpan(p.span)
	}

	for _, tok := range tokens {
		switch {
		case tok.width > width:
			if used > 0 {
				newRow()
			}
			for _, p := range tok.pieces {
				var chunk strings.Builder
				for _, r := range p.text {
					w := render.RuneWidth(r)
					if used > 0 && used+w > width {
						if chunk.Len() > 0 {
							place(p, chunk.String())
							chunk.Reset()
						}
						newRow()
					}
					chunk.WriteRune(r)
					used += w
				}
				if chunk.Len() > 0 {
					place(p, chunk.String())
				}
			}
			continue
		case used == 0:
		case used+1+tok.width <= width:
			cur.add(Fragment{Text: " ", Role: role, Link: NoLink})
			used++
		default:
			newRow()
		}

		for _, p := range tok.pieces {
			place(p, p.text)
		}
		used += tok.width
	}
	if used > 0 {
		rows = append(rows, cur)
	}

	return rows
}
