package content

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrMalformed is wrapped by every layout failure caused by bad TeX.
var ErrMalformed = errors.New("malformed math")

// Engine lays out the TeX inside one math segment as terminal text.
type Engine interface {
	Layout(tex string, display Display) (string, error)
}

// UnicodeEngine renders a practical TeX subset with Unicode symbols,
// super/subscript characters and linear fractions. Unknown commands are
// kept verbatim; structural mistakes are errors.
type UnicodeEngine struct{}

// Layout implements Engine.
func (UnicodeEngine) Layout(tex string, display Display) (string, error) {
	p := &texParser{src: tex, display: display}
	out, err := p.sequence(stopEOF)
	if err != nil {
		return "", err
	}
	return tidy(out), nil
}

type stop int

const (
	stopEOF stop = iota
	stopBrace
	stopEnv
)

type texParser struct {
	src     string
	pos     int
	display Display
	envs    []string
}

func (p *texParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s (at %d)", ErrMalformed, fmt.Sprintf(format, args...), p.pos)
}

func (p *texParser) eof() bool { return p.pos >= len(p.src) }

func (p *texParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *texParser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

// sequence consumes atoms until the terminator for mode. For stopBrace the
// closing brace is consumed; for stopEnv the parser stops in front of the
// matching \end.
func (p *texParser) sequence(mode stop) (string, error) {
	var b strings.Builder
	for {
		if p.eof() {
			switch mode {
			case stopBrace:
				return "", p.errorf("unbalanced braces")
			case stopEnv:
				return "", p.errorf(`missing \end{%s}`, p.envs[len(p.envs)-1])
			}
			return b.String(), nil
		}

		c := p.src[p.pos]
		switch {
		case c == '}':
			if mode != stopBrace {
				return "", p.errorf("unexpected }")
			}
			p.pos++
			return b.String(), nil

		case mode == stopEnv && strings.HasPrefix(p.src[p.pos:], `\end`) && !isLetterAt(p.src, p.pos+4):
			return b.String(), nil

		case c == '^' || c == '_':
			p.pos++
			s, err := p.script(c)
			if err != nil {
				return "", err
			}
			b.WriteString(s)

		case c == '&':
			p.pos++
			b.WriteString("  ")

		case c == '~':
			p.pos++
			b.WriteByte(' ')

		case isSpace(c):
			p.skipSpace()
			b.WriteByte(' ')

		default:
			s, err := p.atom()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
}

// atom reads one unit: a braced group, a command or a single rune.
func (p *texParser) atom() (string, error) {
	if p.eof() {
		return "", p.errorf("missing argument")
	}
	switch p.peek() {
	case '{':
		p.pos++
		return p.sequence(stopBrace)
	case '\\':
		return p.command()
	case '}':
		return "", p.errorf("missing argument")
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return string(r), nil
}

// argument skips leading space and reads one atom.
func (p *texParser) argument(cmd string) (string, error) {
	p.skipSpace()
	if p.eof() || p.peek() == '}' || p.peek() == '^' || p.peek() == '_' {
		return "", p.errorf(`\%s missing argument`, cmd)
	}
	return p.atom()
}

func (p *texParser) script(mark byte) (string, error) {
	p.skipSpace()
	if p.eof() || p.peek() == '}' || p.peek() == '^' || p.peek() == '_' {
		return "", p.errorf("dangling %c", mark)
	}
	body, err := p.atom()
	if err != nil {
		return "", err
	}
	table := superscripts
	if mark == '_' {
		table = subscripts
	}
	if s, ok := mapAll(body, table); ok {
		return s, nil
	}
	if utf8.RuneCountInString(body) == 1 {
		return string(mark) + body, nil
	}
	return string(mark) + "(" + body + ")", nil
}

func (p *texParser) command() (string, error) {
	p.pos++ // backslash
	if p.eof() {
		return "", p.errorf("trailing backslash")
	}

	if !isLetterAt(p.src, p.pos) {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.display == DisplayBlock {
				return "\n", nil
			}
			return "; ", nil
		case ',', ';', ':', '!', ' ':
			return " ", nil
		case '{', '}', '$', '%', '&', '#', '_':
			return string(c), nil
		case '|':
			return "‖", nil
		}
		return `\` + string(c), nil
	}

	start := p.pos
	for isLetterAt(p.src, p.pos) {
		p.pos++
	}
	name := p.src[start:p.pos]
	before := p.pos
	p.skipSpace()

	if sym, ok := symbols[name]; ok {
		if p.pos > before {
			return sym + " ", nil
		}
		return sym, nil
	}

	switch name {
	case "frac", "dfrac", "tfrac", "cfrac":
		num, err := p.argument(name)
		if err != nil {
			return "", err
		}
		den, err := p.argument(name)
		if err != nil {
			return "", err
		}
		return group(num) + "/" + group(den), nil

	case "binom":
		n, err := p.argument(name)
		if err != nil {
			return "", err
		}
		k, err := p.argument(name)
		if err != nil {
			return "", err
		}
		return "C(" + n + ", " + k + ")", nil

	case "sqrt":
		root := "√"
		if p.peek() == '[' {
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				return "", p.errorf(`\sqrt index not closed`)
			}
			inner := &texParser{src: p.src[p.pos+1 : p.pos+end], display: p.display}
			idx, err := inner.sequence(stopEOF)
			if err != nil {
				return "", err
			}
			p.pos += end + 1
			root = rootSign(strings.TrimSpace(idx))
		}
		arg, err := p.argument(name)
		if err != nil {
			return "", err
		}
		return root + group(arg), nil

	case "text", "textrm", "textbf", "textit", "mbox", "mathrm", "mathbf",
		"mathit", "mathsf", "mathtt", "boldsymbol", "operatorname", "displaystyle":
		if name == "displaystyle" {
			return "", nil
		}
		return p.argument(name)

	case "mathbb":
		arg, err := p.argument(name)
		if err != nil {
			return "", err
		}
		if s, ok := mapAll(arg, doubleStruck); ok {
			return s, nil
		}
		return arg, nil

	case "vec", "overrightarrow":
		return p.accent(name, '⃗')
	case "hat", "widehat":
		return p.accent(name, '̂')
	case "bar", "overline":
		return p.accent(name, '̅')
	case "dot":
		return p.accent(name, '̇')
	case "tilde", "widetilde":
		return p.accent(name, '̃')

	case "left", "right", "big", "Big", "bigl", "bigr", "Bigl", "Bigr":
		return p.delimiter(name)

	case "begin":
		return p.environment()

	case "end":
		env, err := p.envName()
		if err != nil {
			return "", err
		}
		return "", p.errorf(`unmatched \end{%s}`, env)
	}

	return `\` + name, nil
}

func (p *texParser) accent(name string, mark rune) (string, error) {
	arg, err := p.argument(name)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(arg) == 1 {
		return arg + string(mark), nil
	}
	return name + "(" + arg + ")", nil
}

func (p *texParser) delimiter(name string) (string, error) {
	if p.eof() {
		return "", p.errorf(`\%s missing delimiter`, name)
	}
	if p.peek() == '.' {
		p.pos++
		return "", nil
	}
	if p.peek() == '\\' {
		return p.command()
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return string(r), nil
}

func (p *texParser) envName() (string, error) {
	p.skipSpace()
	if p.peek() != '{' {
		return "", p.errorf("environment name expected")
	}
	end := strings.IndexByte(p.src[p.pos:], '}')
	if end < 0 {
		return "", p.errorf("unbalanced braces")
	}
	name := strings.TrimSpace(p.src[p.pos+1 : p.pos+end])
	p.pos += end + 1
	return name, nil
}

func (p *texParser) environment() (string, error) {
	name, err := p.envName()
	if err != nil {
		return "", err
	}
	if name == "array" {
		// column spec
		if _, err := p.envName(); err != nil {
			return "", err
		}
	}

	p.envs = append(p.envs, name)
	body, err := p.sequence(stopEnv)
	if err != nil {
		return "", err
	}
	p.envs = p.envs[:len(p.envs)-1]

	p.pos += len(`\end`)
	closing, err := p.envName()
	if err != nil {
		return "", err
	}
	if closing != name {
		return "", p.errorf(`\begin{%s} closed by \end{%s}`, name, closing)
	}

	body = strings.TrimSpace(body)
	switch strings.TrimSuffix(name, "*") {
	case "pmatrix":
		return "(" + body + ")", nil
	case "bmatrix":
		return "[" + body + "]", nil
	case "vmatrix":
		return "|" + body + "|", nil
	case "cases":
		return "{ " + body, nil
	}
	return body, nil
}

// group wraps a fraction operand in parentheses unless it is a single
// number or identifier.
func group(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= 1 {
		return s
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' {
			return "(" + s + ")"
		}
	}
	return s
}

func rootSign(idx string) string {
	switch idx {
	case "", "2":
		return "√"
	case "3":
		return "∛"
	case "4":
		return "∜"
	}
	if s, ok := mapAll(idx, superscripts); ok {
		return s + "√"
	}
	return idx + "√"
}

func mapAll(s string, table map[rune]rune) (string, bool) {
	if s == "" {
		return "", false
	}
	var b strings.Builder
	for _, r := range s {
		m, ok := table[r]
		if !ok {
			return "", false
		}
		b.WriteRune(m)
	}
	return b.String(), true
}

// tidy collapses runs of spaces, trims each line and pulls row
// separators left.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(strings.Join(strings.Fields(line), " "), " ;", ";")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLetterAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
