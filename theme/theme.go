// Package theme provides color theming for the terminal reader.
package theme

import (
	"wikiterm/document"
	"wikiterm/layout"
	"wikiterm/render"
)

// Color represents an RGB color that can render to ANSI.
type Color struct {
	R, G, B uint8
}

// Theme defines the color palette of the reader.
// Page text uses terminal attributes (bold/italic) for emphasis. Colors
// mark structure: headings, links, search matches and the status line.
type Theme struct {
	Name string
	Dark bool // true if this is a dark theme

	// Base colors
	Background    Color // terminal background (ignored if TransparentBg is true)
	TransparentBg bool  // if true, use terminal's native background
	Foreground    Color // default text
	Dim           Color // markers, status line hints

	// Structure
	Heading Color
	Link    Color
	Code    Color // monospace spans

	// Highlights
	Selection    Color // background of the selected link
	Match        Color // background of search matches
	CurrentMatch Color // background of the match under the cursor

	// Chrome
	StatusBar Color // status line background
	Accent    Color // spinner, search prompt
	Error     Color
	Warning   Color
}

// Style creates a render.Style with the given foreground color.
func (c Color) Style() render.Style {
	return render.Style{
		FgRGB:    [3]uint8{c.R, c.G, c.B},
		UseFgRGB: true,
	}
}

// StyleBg creates a render.Style with the given background color.
func (c Color) StyleBg() render.Style {
	return render.Style{
		BgRGB:    [3]uint8{c.R, c.G, c.B},
		UseBgRGB: true,
	}
}

// StyleFgBg creates a render.Style with foreground and background colors.
func StyleFgBg(fg, bg Color) render.Style {
	return render.Style{
		FgRGB:    [3]uint8{fg.R, fg.G, fg.B},
		UseFgRGB: true,
		BgRGB:    [3]uint8{bg.R, bg.G, bg.B},
		UseBgRGB: true,
	}
}

// BaseStyle returns the base render.Style for the theme.
// If TransparentBg is true, no colors are set (terminal defaults used).
func (t *Theme) BaseStyle() render.Style {
	if t.TransparentBg {
		return render.Style{}
	}
	return StyleFgBg(t.Foreground, t.Background)
}

// Fragment returns the style of a laid out fragment that is not part of a
// link.
func (t *Theme) Fragment(s document.Style, role layout.Role) render.Style {
	st := t.BaseStyle()
	switch role {
	case layout.RoleHeading:
		st = st.Merge(t.Heading.Style())
		st.Bold = true
	case layout.RoleMarker:
		st = st.Merge(t.Dim.Style())
	}
	if s.Strong {
		st.Bold = true
	}
	if s.Emphasis {
		st.Italic = true
	}
	if s.Monospace {
		st = st.Merge(t.Code.Style())
	}
	return st
}

// LinkStyle returns the style of link text with the given text style.
func (t *Theme) LinkStyle(s document.Style, selected bool) render.Style {
	st := t.Fragment(s, layout.RoleText).Merge(t.Link.Style())
	st.Underline = true
	if selected {
		st = st.Merge(t.Selection.StyleBg())
		st.Bold = true
	}
	return st
}

// MatchStyle returns the highlight laid over search matches.
func (t *Theme) MatchStyle(current bool) render.Style {
	if current {
		return StyleFgBg(t.Background, t.CurrentMatch)
	}
	return StyleFgBg(t.Background, t.Match)
}

// StatusStyle returns the style of the status line.
func (t *Theme) StatusStyle() render.Style {
	return StyleFgBg(t.Foreground, t.StatusBar)
}

// NoticeStyle returns the style of a notice on the status line.
func (t *Theme) NoticeStyle(isError bool) render.Style {
	c := t.Warning
	if isError {
		c = t.Error
	}
	st := t.StatusStyle().Merge(c.Style())
	st.Bold = true
	return st
}

// Hex creates a Color from a hex string like "#RRGGBB" or "RRGGBB".
func Hex(s string) Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}
	}
	return Color{
		R: hexByte(s[0:2]),
		G: hexByte(s[2:4]),
		B: hexByte(s[4:6]),
	}
}

func hexByte(s string) uint8 {
	var v uint8
	for _, c := range s {
		v *= 16
		switch {
		case c >= '0' && c <= '9':
			v += uint8(c - '0')
		case c >= 'a' && c <= 'f':
			v += uint8(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			v += uint8(c - 'A' + 10)
		}
	}
	return v
}

// Built-in themes
var (
	// Default - uses terminal's native background, works with any terminal theme
	DefaultDark = &Theme{
		Name:          "default-dark",
		Dark:          true,
		TransparentBg: true,
		Background:    Hex("1c1c1c"),
		Foreground:    Hex("e0e0e0"),
		Dim:           Hex("767676"),
		Heading:       Hex("5fafff"),
		Link:          Hex("5fd7d7"),
		Code:          Hex("d7af87"),
		Selection:     Hex("3a3a3a"),
		Match:         Hex("d7d700"),
		CurrentMatch:  Hex("ff8700"),
		StatusBar:     Hex("303030"),
		Accent:        Hex("5fd7d7"),
		Error:         Hex("d75f5f"),
		Warning:       Hex("d7af5f"),
	}

	DefaultLight = &Theme{
		Name:         "default-light",
		Background:   Hex("fafafa"),
		Foreground:   Hex("1a1a1a"),
		Dim:          Hex("888888"),
		Heading:      Hex("1565c0"),
		Link:         Hex("00838f"),
		Code:         Hex("8d6e63"),
		Selection:    Hex("e0e0e0"),
		Match:        Hex("fff176"),
		CurrentMatch: Hex("ffb74d"),
		StatusBar:    Hex("eeeeee"),
		Accent:       Hex("00838f"),
		Error:        Hex("c62828"),
		Warning:      Hex("f57c00"),
	}

	// Solarized - Ethan Schoonover's precision colors
	SolarizedDark = &Theme{
		Name:         "solarized-dark",
		Dark:         true,
		Background:   Hex("002b36"), // base03
		Foreground:   Hex("839496"), // base0
		Dim:          Hex("586e75"), // base01
		Heading:      Hex("268bd2"), // blue
		Link:         Hex("2aa198"), // cyan
		Code:         Hex("b58900"), // yellow
		Selection:    Hex("073642"), // base02
		Match:        Hex("b58900"), // yellow
		CurrentMatch: Hex("cb4b16"), // orange
		StatusBar:    Hex("073642"), // base02
		Accent:       Hex("2aa198"),
		Error:        Hex("dc322f"),
		Warning:      Hex("cb4b16"),
	}

	SolarizedLight = &Theme{
		Name:         "solarized-light",
		Background:   Hex("fdf6e3"), // base3
		Foreground:   Hex("657b83"), // base00
		Dim:          Hex("93a1a1"), // base1
		Heading:      Hex("268bd2"),
		Link:         Hex("2aa198"),
		Code:         Hex("b58900"),
		Selection:    Hex("eee8d5"), // base2
		Match:        Hex("b58900"),
		CurrentMatch: Hex("cb4b16"),
		StatusBar:    Hex("eee8d5"),
		Accent:       Hex("2aa198"),
		Error:        Hex("dc322f"),
		Warning:      Hex("cb4b16"),
	}

	// Nord - Arctic, north-bluish color palette
	Nord = &Theme{
		Name:         "nord",
		Dark:         true,
		Background:   Hex("2e3440"), // nord0
		Foreground:   Hex("d8dee9"), // nord4
		Dim:          Hex("4c566a"), // nord3
		Heading:      Hex("81a1c1"), // nord9
		Link:         Hex("88c0d0"), // nord8
		Code:         Hex("d08770"), // nord12
		Selection:    Hex("434c5e"), // nord2
		Match:        Hex("ebcb8b"), // nord13
		CurrentMatch: Hex("d08770"),
		StatusBar:    Hex("3b4252"), // nord1
		Accent:       Hex("88c0d0"),
		Error:        Hex("bf616a"),
		Warning:      Hex("d08770"),
	}

	// Gruvbox - Retro groove color scheme
	GruvboxDark = &Theme{
		Name:         "gruvbox-dark",
		Dark:         true,
		Background:   Hex("282828"), // bg
		Foreground:   Hex("ebdbb2"), // fg
		Dim:          Hex("928374"), // gray
		Heading:      Hex("83a598"), // blue
		Link:         Hex("8ec07c"), // aqua
		Code:         Hex("d3869b"), // purple
		Selection:    Hex("3c3836"), // bg1
		Match:        Hex("fabd2f"), // yellow
		CurrentMatch: Hex("fe8019"), // orange
		StatusBar:    Hex("3c3836"),
		Accent:       Hex("8ec07c"),
		Error:        Hex("fb4934"),
		Warning:      Hex("fe8019"),
	}

	GruvboxLight = &Theme{
		Name:         "gruvbox-light",
		Background:   Hex("fbf1c7"),
		Foreground:   Hex("3c3836"),
		Dim:          Hex("928374"),
		Heading:      Hex("076678"),
		Link:         Hex("427b58"),
		Code:         Hex("8f3f71"),
		Selection:    Hex("ebdbb2"),
		Match:        Hex("b57614"),
		CurrentMatch: Hex("af3a03"),
		StatusBar:    Hex("ebdbb2"),
		Accent:       Hex("427b58"),
		Error:        Hex("9d0006"),
		Warning:      Hex("af3a03"),
	}

	// Tokyo Night - Clean dark theme inspired by Tokyo city lights
	TokyoNight = &Theme{
		Name:         "tokyo-night",
		Dark:         true,
		Background:   Hex("1a1b26"),
		Foreground:   Hex("a9b1d6"),
		Dim:          Hex("565f89"), // comment
		Heading:      Hex("7aa2f7"),
		Link:         Hex("7dcfff"),
		Code:         Hex("bb9af7"),
		Selection:    Hex("283457"),
		Match:        Hex("e0af68"),
		CurrentMatch: Hex("ff9e64"),
		StatusBar:    Hex("24283b"),
		Accent:       Hex("7dcfff"),
		Error:        Hex("f7768e"),
		Warning:      Hex("ff9e64"),
	}

	// Catppuccin - Soothing pastel theme
	CatppuccinMocha = &Theme{
		Name:         "catppuccin-mocha",
		Dark:         true,
		Background:   Hex("1e1e2e"), // base
		Foreground:   Hex("cdd6f4"), // text
		Dim:          Hex("6c7086"), // overlay0
		Heading:      Hex("89b4fa"), // blue
		Link:         Hex("89dceb"), // sky
		Code:         Hex("f5c2e7"), // pink
		Selection:    Hex("313244"), // surface0
		Match:        Hex("f9e2af"), // yellow
		CurrentMatch: Hex("fab387"), // peach
		StatusBar:    Hex("181825"), // mantle
		Accent:       Hex("89dceb"),
		Error:        Hex("f38ba8"),
		Warning:      Hex("fab387"),
	}

	CatppuccinLatte = &Theme{
		Name:         "catppuccin-latte",
		Background:   Hex("eff1f5"),
		Foreground:   Hex("4c4f69"),
		Dim:          Hex("9ca0b0"),
		Heading:      Hex("1e66f5"),
		Link:         Hex("04a5e5"),
		Code:         Hex("ea76cb"),
		Selection:    Hex("ccd0da"),
		Match:        Hex("df8e1d"),
		CurrentMatch: Hex("fe640b"),
		StatusBar:    Hex("e6e9ef"),
		Accent:       Hex("04a5e5"),
		Error:        Hex("d20f39"),
		Warning:      Hex("fe640b"),
	}
)

// All contains all built-in themes for iteration.
var All = []*Theme{
	DefaultDark,
	DefaultLight,
	SolarizedDark,
	SolarizedLight,
	Nord,
	GruvboxDark,
	GruvboxLight,
	TokyoNight,
	CatppuccinMocha,
	CatppuccinLatte,
}

// ByName returns the built-in theme with the given name.
func ByName(name string) (*Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Names lists the built-in theme names.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Variant returns the light or dark counterpart of t, or t itself when
// there is none.
func Variant(t *Theme) *Theme {
	name := t.Name
	switch {
	case t.Dark && len(name) > 5 && name[len(name)-5:] == "-dark":
		name = name[:len(name)-5] + "-light"
	case !t.Dark && len(name) > 6 && name[len(name)-6:] == "-light":
		name = name[:len(name)-6] + "-dark"
	case t.Name == CatppuccinMocha.Name:
		return CatppuccinLatte
	case t.Name == CatppuccinLatte.Name:
		return CatppuccinMocha
	}
	if v, ok := ByName(name); ok {
		return v
	}
	return t
}
