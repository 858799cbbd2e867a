package widget

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnbalancedBraces = errors.New("unbalanced braces")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMissingArgument  = errors.New("missing argument")
)

// TeXRenderer approximates TeX math with Unicode symbols, super- and
// subscripts. It covers the common inline subset; anything else is an error
// so the widget falls back to the raw source.
type TeXRenderer struct{}

func (TeXRenderer) Render(source string, display bool) (string, error) {
	p := &texParser{src: source}
	out, err := p.sequence(false)
	if err != nil {
		return "", err
	}
	if display {
		// display math keeps explicit line breaks
		lines := strings.Split(out, "\n")
		for i, l := range lines {
			lines[i] = strings.Join(strings.Fields(l), " ")
		}
		return strings.Join(lines, "\n"), nil
	}
	return strings.Join(strings.Fields(out), " "), nil
}

var texSymbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι",
	"kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π",
	"rho": "ρ", "sigma": "σ", "tau": "τ", "phi": "φ", "varphi": "φ",
	"chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	"times": "×", "cdot": "·", "div": "÷", "pm": "±", "mp": "∓",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "propto": "∝",
	"infty": "∞", "partial": "∂", "nabla": "∇",
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"to": "→", "rightarrow": "→", "leftarrow": "←", "leftrightarrow": "↔",
	"Rightarrow": "⇒", "Leftarrow": "⇐", "Leftrightarrow": "⇔", "mapsto": "↦",
	"in": "∈", "notin": "∉", "subset": "⊂", "subseteq": "⊆", "supset": "⊃",
	"cup": "∪", "cap": "∩", "emptyset": "∅", "forall": "∀", "exists": "∃",
	"neg": "¬", "land": "∧", "lor": "∨", "circ": "∘",
	"cdots": "⋯", "ldots": "…", "dots": "…",
	"quad": "  ", "qquad": "    ",
	"langle": "⟨", "rangle": "⟩", "lfloor": "⌊", "rfloor": "⌋",
	"lceil": "⌈", "rceil": "⌉",
	"left": "", "right": "", "displaystyle": "",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶',
	'7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽',
	')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆',
	'7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋', '=': '₌', '(': '₍',
	')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'o': 'ₒ', 'x': 'ₓ', 'i': 'ᵢ', 'j': 'ⱼ',
	'k': 'ₖ', 'm': 'ₘ', 'n': 'ₙ', 't': 'ₜ',
}

type texParser struct {
	src string
	pos int
}

func (p *texParser) sequence(inGroup bool) (string, error) {
	var b strings.Builder
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '}':
			if !inGroup {
				return "", ErrUnbalancedBraces
			}
			p.pos++
			return b.String(), nil
		case '{':
			p.pos++
			s, err := p.sequence(true)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case '^', '_':
			p.pos++
			arg, err := p.argument()
			if err != nil {
				return "", err
			}
			b.WriteString(script(arg, c == '^'))
		case '\\':
			s, err := p.command()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	if inGroup {
		return "", ErrUnbalancedBraces
	}
	return b.String(), nil
}

// argument reads one group, command or character.
func (p *texParser) argument() (string, error) {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", ErrMissingArgument
	}
	switch p.src[p.pos] {
	case '{':
		p.pos++
		return p.sequence(true)
	case '}':
		return "", ErrUnbalancedBraces
	case '\\':
		return p.command()
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return string(r), nil
}

func (p *texParser) command() (string, error) {
	p.pos++ // backslash
	start := p.pos
	for p.pos < len(p.src) && isASCIILetter(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("%w: trailing backslash", ErrUnknownCommand)
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '{', '}', '$', '%', '&', '#', '_', '|':
			return string(c), nil
		case ',', ';', ' ', '!', ':':
			return " ", nil
		case '\\':
			return "\n", nil
		}
		return "", fmt.Errorf("%w: \\%c", ErrUnknownCommand, c)
	}

	if s, ok := texSymbols[name]; ok {
		return s, nil
	}
	switch name {
	case "frac", "dfrac", "tfrac":
		num, err := p.argument()
		if err != nil {
			return "", err
		}
		den, err := p.argument()
		if err != nil {
			return "", err
		}
		return parenthesize(num) + "/" + parenthesize(den), nil
	case "sqrt":
		arg, err := p.argument()
		if err != nil {
			return "", err
		}
		return "√" + parenthesize(arg), nil
	case "text", "mathrm", "mathbf", "mathit", "mathsf", "mathtt", "operatorname", "boldsymbol":
		return p.argument()
	case "sin", "cos", "tan", "log", "ln", "exp", "lim", "max", "min", "det":
		return name, nil
	}
	return "", fmt.Errorf("%w: \\%s", ErrUnknownCommand, name)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func parenthesize(s string) string {
	if utf8.RuneCountInString(s) <= 1 || isWord(s) {
		return s
	}
	return "(" + s + ")"
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func script(arg string, sup bool) string {
	table := subscripts
	marker := "_"
	if sup {
		table = superscripts
		marker = "^"
	}
	var b strings.Builder
	for _, r := range arg {
		m, ok := table[r]
		if !ok {
			if utf8.RuneCountInString(arg) == 1 {
				return marker + arg
			}
			return marker + "(" + arg + ")"
		}
		b.WriteRune(m)
	}
	return b.String()
}
