package tex

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"display wrapper", `{\displaystyle E=mc^{2}}`, "E=mc²"},
		{"greek and relations", `\alpha \leq \beta`, "α ≤ β"},
		{"longest command wins", `\left( x \right) \le y`, "( x ) ≤ y"},
		{"fraction", `\frac{a+b}{2}`, "(a+b)/2"},
		{"root", `\sqrt{2}`, "√2"},
		{"nested", `\frac{1}{\sqrt{x}}`, "1/(√x)"},
		{"sum with limits", `\sum_{i=1}^{n} x_i`, "∑ᵢ₌₁ⁿ xᵢ"},
		{"no superscript glyph", `x^{q}`, "x^q"},
		{"partial superscript", `e^{i\pi}`, "e^(iπ)"},
		{"roman", `\mathrm{d}x`, "dx"},
		{"set membership", `a \in A`, "a ∈ A"},
		{"prime", `f^\prime(x)`, "f′(x)"},
		{"aligned", `\begin{aligned}a&=b\\c&=d\end{aligned}`, "a =b; c =d"},
		{"plain", "x + y", "x + y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.in); got != tt.expected {
				t.Errorf("Render(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}
