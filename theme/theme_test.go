package theme

import (
	"testing"

	"wikiterm/document"
	"wikiterm/layout"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in       string
		expected Color
	}{
		{"#ff8700", Color{255, 135, 0}},
		{"5FD7D7", Color{95, 215, 215}},
		{"bad", Color{}},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); got != tt.expected {
			t.Errorf("Hex(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		th, ok := ByName(name)
		if !ok || th.Name != name {
			t.Errorf("theme %q not found", name)
		}
	}
	if _, ok := ByName("nope"); ok {
		t.Error("unknown theme should not be found")
	}
}

func TestVariant(t *testing.T) {
	tests := []struct {
		in       *Theme
		expected *Theme
	}{
		{DefaultDark, DefaultLight},
		{DefaultLight, DefaultDark},
		{GruvboxDark, GruvboxLight},
		{CatppuccinMocha, CatppuccinLatte},
		{Nord, Nord},
	}
	for _, tt := range tests {
		if got := Variant(tt.in); got != tt.expected {
			t.Errorf("Variant(%s) = %s, expected %s", tt.in.Name, got.Name, tt.expected.Name)
		}
	}
}

func TestFragmentStyles(t *testing.T) {
	th := Nord

	heading := th.Fragment(document.Style{}, layout.RoleHeading)
	if !heading.Bold || !heading.UseFgRGB || heading.FgRGB != [3]uint8{th.Heading.R, th.Heading.G, th.Heading.B} {
		t.Errorf("unexpected heading style %+v", heading)
	}

	em := th.Fragment(document.Style{Emphasis: true, Strong: true}, layout.RoleText)
	if !em.Italic || !em.Bold {
		t.Errorf("unexpected emphasis style %+v", em)
	}

	link := th.LinkStyle(document.Style{}, false)
	if !link.Underline || link.FgRGB != [3]uint8{th.Link.R, th.Link.G, th.Link.B} {
		t.Errorf("unexpected link style %+v", link)
	}
	sel := th.LinkStyle(document.Style{}, true)
	if !sel.UseBgRGB || sel.BgRGB != [3]uint8{th.Selection.R, th.Selection.G, th.Selection.B} {
		t.Errorf("selected link should use the selection background, got %+v", sel)
	}
}

func TestTransparentBackground(t *testing.T) {
	if st := DefaultDark.BaseStyle(); st.UseBgRGB || st.UseFgRGB {
		t.Errorf("transparent theme should not set colors, got %+v", st)
	}
	if st := Nord.BaseStyle(); !st.UseBgRGB {
		t.Error("opaque theme should set the background")
	}
}
