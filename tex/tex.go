// Package tex renders TeX math source as plain Unicode text. Wiki formulas
// carry their source in the fallback image's alt text, usually wrapped in
// {\displaystyle ...}.
package tex

import (
	"regexp"
	"sort"
	"strings"
)

var symbols = map[string]string{
	// Greek
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ",
	`\epsilon`: "ε", `\varepsilon`: "ε", `\zeta`: "ζ", `\eta`: "η",
	`\theta`: "θ", `\vartheta`: "ϑ", `\iota`: "ι", `\kappa`: "κ",
	`\lambda`: "λ", `\mu`: "μ", `\nu`: "ν", `\xi`: "ξ",
	`\pi`: "π", `\rho`: "ρ", `\sigma`: "σ", `\varsigma`: "ς",
	`\tau`: "τ", `\upsilon`: "υ", `\phi`: "φ", `\varphi`: "ϕ",
	`\chi`: "χ", `\psi`: "ψ", `\omega`: "ω",
	`\Gamma`: "Γ", `\Delta`: "Δ", `\Theta`: "Θ", `\Lambda`: "Λ",
	`\Xi`: "Ξ", `\Pi`: "Π", `\Sigma`: "Σ", `\Upsilon`: "Υ",
	`\Phi`: "Φ", `\Psi`: "Ψ", `\Omega`: "Ω",

	// Operators and relations
	`\cdot`: "·", `\times`: "×", `\div`: "÷", `\pm`: "±", `\mp`: "∓",
	`\ast`: "∗", `\circ`: "∘", `\bullet`: "•", `\star`: "⋆",
	`\leq`: "≤", `\le`: "≤", `\geq`: "≥", `\ge`: "≥",
	`\neq`: "≠", `\ne`: "≠", `\approx`: "≈", `\equiv`: "≡",
	`\sim`: "∼", `\simeq`: "≃", `\cong`: "≅", `\propto`: "∝",
	`\ll`: "≪", `\gg`: "≫",

	// Arrows
	`\rightarrow`: "→", `\to`: "→", `\leftarrow`: "←", `\gets`: "←",
	`\leftrightarrow`: "↔", `\Rightarrow`: "⇒", `\Leftarrow`: "⇐",
	`\Leftrightarrow`: "⇔", `\mapsto`: "↦", `\implies`: "⟹", `\iff`: "⟺",
	`\uparrow`: "↑", `\downarrow`: "↓", `\longrightarrow`: "⟶",

	// Sets and logic
	`\in`: "∈", `\notin`: "∉", `\ni`: "∋", `\subset`: "⊂", `\supset`: "⊃",
	`\subseteq`: "⊆", `\supseteq`: "⊇", `\cup`: "∪", `\cap`: "∩",
	`\emptyset`: "∅", `\varnothing`: "∅", `\setminus`: "∖",
	`\land`: "∧", `\wedge`: "∧", `\lor`: "∨", `\vee`: "∨",
	`\neg`: "¬", `\lnot`: "¬", `\forall`: "∀", `\exists`: "∃",

	// Analysis
	`\infty`: "∞", `\partial`: "∂", `\nabla`: "∇",
	`\sum`: "∑", `\prod`: "∏", `\int`: "∫", `\iint`: "∬", `\oint`: "∮",
	`\lim`: "lim", `\log`: "log", `\ln`: "ln", `\exp`: "exp",
	`\sin`: "sin", `\cos`: "cos", `\tan`: "tan", `\max`: "max", `\min`: "min",

	// Misc
	`\sqrt`: "√", `\prime`: "′", `\degree`: "°", `\angle`: "∠",
	`\hbar`: "ℏ", `\ell`: "ℓ", `\aleph`: "ℵ", `\Re`: "ℜ", `\Im`: "ℑ",
	`\ldots`: "…", `\cdots`: "⋯", `\dots`: "…", `\vdots`: "⋮",
	`\langle`: "⟨", `\rangle`: "⟩", `\lfloor`: "⌊", `\rfloor`: "⌋",
	`\lceil`: "⌈", `\rceil`: "⌉", `\|`: "‖", `\mid`: "|",

	// Spacing and escapes
	`\,`: " ", `\:`: " ", `\;`: " ", `\!`: "", `\ `: " ",
	`\quad`: " ", `\qquad`: " ",
	`\{`: "{", `\}`: "}", `\%`: "%", `\$`: "$", `\&`: "&", `\_`: "_",
	`\left`: "", `\right`: "", `\bigl`: "", `\bigr`: "", `\Big`: "", `\big`: "",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶',
	'7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽',
	')': '⁾', 'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'i': 'ⁱ',
	'k': 'ᵏ', 'm': 'ᵐ', 'n': 'ⁿ', 't': 'ᵗ', 'x': 'ˣ', 'y': 'ʸ', 'T': 'ᵀ',
	'′': '′',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆',
	'7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋', '=': '₌', '(': '₍',
	')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'n': 'ₙ',
	'o': 'ₒ', 'r': 'ᵣ', 't': 'ₜ', 'x': 'ₓ',
}

var (
	// commands are matched longest first so \leq wins over \le.
	commands = func() *strings.Replacer {
		keys := make([]string, 0, len(symbols))
		for k := range symbols {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		pairs := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			pairs = append(pairs, k, symbols[k])
		}
		return strings.NewReplacer(pairs...)
	}()

	styleWrapper = regexp.MustCompile(`(?s)^\{\\(?:displaystyle|textstyle|scriptstyle)\s*(.*)\}$`)
	environment  = regexp.MustCompile(`\\(?:begin|end)\{[^}]*\}`)
	discarded    = regexp.MustCompile(`\\(?:color|hspace|vspace|phantom|label)\{[^}]*\}`)
	passThrough  = regexp.MustCompile(`\\(?:mathrm|mathbf|mathit|mathsf|mathtt|mathcal|mathbb|mathfrak|boldsymbol|operatorname|text|textrm|textbf|textit|mbox|hat|bar|vec|tilde|overline)\{([^{}]*)\}`)
	fraction     = regexp.MustCompile(`\\[dt]?frac\{([^{}]*)\}\{([^{}]*)\}`)
	root         = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	supGroup     = regexp.MustCompile(`\^\{([^{}]*)\}`)
	subGroup     = regexp.MustCompile(`_\{([^{}]*)\}`)
	supChar      = regexp.MustCompile(`\^([A-Za-z0-9+\-=()′])`)
	subChar      = regexp.MustCompile(`_([A-Za-z0-9+\-=()])`)
	space        = regexp.MustCompile(`\s+`)
	group        = regexp.MustCompile(`\{([^{}]*)\}`)
)

// Render converts TeX source to Unicode. Constructs without a Unicode
// form are kept as readable text: fractions become (a)/(b) and scripts
// without a superscript glyph keep their ^ or _.
func Render(src string) string {
	s := strings.TrimSpace(src)
	if m := styleWrapper.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = environment.ReplaceAllString(s, "")
	s = strings.NewReplacer(`\\`, "; ", "&", " ").Replace(s)
	s = discarded.ReplaceAllString(s, "")

	// Nested groups resolve from the inside out.
	for i := 0; i < 4; i++ {
		before := s
		s = passThrough.ReplaceAllString(s, "$1")
		s = root.ReplaceAllStringFunc(s, func(m string) string {
			return "√" + wrap(root.FindStringSubmatch(m)[1])
		})
		s = fraction.ReplaceAllStringFunc(s, func(m string) string {
			parts := fraction.FindStringSubmatch(m)
			return wrap(parts[1]) + "/" + wrap(parts[2])
		})
		if s == before {
			break
		}
	}

	s = commands.Replace(s)
	s = supGroup.ReplaceAllStringFunc(s, func(m string) string {
		return script(m[2:len(m)-1], "^", superscripts)
	})
	s = subGroup.ReplaceAllStringFunc(s, func(m string) string {
		return script(m[2:len(m)-1], "_", subscripts)
	})
	s = supChar.ReplaceAllStringFunc(s, func(m string) string {
		return script(m[1:], "^", superscripts)
	})
	s = subChar.ReplaceAllStringFunc(s, func(m string) string {
		return script(m[1:], "_", subscripts)
	})
	for group.MatchString(s) {
		s = group.ReplaceAllString(s, "$1")
	}
	return strings.TrimSpace(space.ReplaceAllString(s, " "))
}

// script converts s to script glyphs when every rune has one, otherwise it
// keeps the marker.
func script(s, marker string, glyphs map[rune]rune) string {
	var b strings.Builder
	for _, c := range s {
		g, ok := glyphs[c]
		if !ok {
			if len([]rune(s)) == 1 {
				return marker + s
			}
			return marker + "(" + s + ")"
		}
		b.WriteRune(g)
	}
	return b.String()
}

func wrap(s string) string {
	if len([]rune(s)) == 1 {
		return s
	}
	return "(" + s + ")"
}
