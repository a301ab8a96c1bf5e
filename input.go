package main

import (
	"context"
	"io"
	"unicode/utf8"
)

// escapeKeys maps the escape sequences terminals send for special keys to
// the key names used in keybindings.
var escapeKeys = map[string]string{
	"[A": "<up>", "[B": "<down>", "[C": "<right>", "[D": "<left>",
	"OA": "<up>", "OB": "<down>", "OC": "<right>", "OD": "<left>",
	"[H": "<home>", "[F": "<end>", "OH": "<home>", "OF": "<end>",
	"[1~": "<home>", "[7~": "<home>", "[4~": "<end>", "[8~": "<end>",
	"[2~": "<ins>", "[3~": "<del>",
	"[5~": "<pgup>", "[6~": "<pgdn>",
	"[Z": "<s-tab>",
}

// decodeKeys splits raw terminal input into key names. Printable
// characters are returned as themselves; everything else uses the <name>
// form. Incomplete trailing input is returned as rest.
func decodeKeys(buf []byte) (keys []string, rest []byte) {
	for len(buf) > 0 {
		b := buf[0]
		switch {
		case b == 0x1b:
			key, n := decodeEscape(buf)
			keys = append(keys, key)
			buf = buf[n:]
			continue
		case b == '\r' || b == '\n':
			keys = append(keys, "<enter>")
		case b == '\t':
			keys = append(keys, "<tab>")
		case b == 0x7f || b == 0x08:
			keys = append(keys, "<bs>")
		case b == ' ':
			keys = append(keys, "<space>")
		case b == 0:
			keys = append(keys, "<c-space>")
		case b < 0x20:
			keys = append(keys, "<c-"+string(rune('a'+b-1))+">")
		default:
			if !utf8.FullRune(buf) {
				return keys, buf
			}
			r, n := utf8.DecodeRune(buf)
			if r != utf8.RuneError {
				keys = append(keys, string(r))
			}
			buf = buf[n:]
			continue
		}
		buf = buf[1:]
	}
	return keys, nil
}

// decodeEscape decodes one escape sequence at the start of buf and returns
// the key and the number of bytes used. A lone ESC is <esc>.
func decodeEscape(buf []byte) (string, int) {
	if len(buf) == 1 {
		return "<esc>", 1
	}
	switch buf[1] {
	case '[', 'O':
	default:
		// Alt+key arrives as ESC followed by the key.
		return "<esc>", 1
	}

	// CSI parameters end at the first byte in 0x40..0x7e.
	end := -1
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			end = i
			break
		}
	}
	if end < 0 {
		return "<esc>", 1
	}
	seq := string(buf[1 : end+1])
	if key, ok := escapeKeys[seq]; ok {
		return key, end + 1
	}
	return "<unknown>", end + 1
}

// readKeys reads stdin until ctx is done, sending decoded keys to out. The
// terminal is in raw mode with a read timeout, so Read returns regularly.
func readKeys(ctx context.Context, r io.Reader, out chan<- string) {
	defer close(out)
	buf := make([]byte, 256)
	var pending []byte
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := r.Read(buf)
		if n > 0 {
			var keys []string
			keys, pending = decodeKeys(append(pending, buf[:n]...))
			for _, k := range keys {
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			}
		}
		// Raw mode reads report io.EOF when the timeout expires.
		if err != nil && err != io.EOF {
			return
		}
	}
}
