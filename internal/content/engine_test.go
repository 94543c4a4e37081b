package content

import (
	"errors"
	"testing"
)

func TestUnicodeEngine_Layout(t *testing.T) {
	tests := []struct {
		tex  string
		want string
	}{
		{"x^2", "x²"},
		{"E=mc^2", "E=mc²"},
		{"x_{10}", "x₁₀"},
		{"x^{q}", "x^q"},
		{"e^{i\\pi}", "e^(iπ)"},
		{`\frac{1}{2}`, "1/2"},
		{`\frac{a+b}{2}`, "(a+b)/2"},
		{`\frac12`, "1/2"},
		{`3 \times 4`, "3 × 4"},
		{`\alpha + \beta`, "α + β"},
		{`\sqrt{16}`, "√16"},
		{`\sqrt[3]{8}`, "∛8"},
		{`\sqrt{x+1}`, "√(x+1)"},
		{`\text{si } x \leq 0`, "si x ≤ 0"},
		{`\left( a \right)`, "( a )"},
		{`\mathbb{R}`, "ℝ"},
		{`\foo`, `\foo`},
		{`\{1, 2\}`, "{1, 2}"},
	}

	e := UnicodeEngine{}
	for _, tc := range tests {
		got, err := e.Layout(tc.tex, DisplayInline)
		if err != nil {
			t.Errorf("Layout(%q) error: %v", tc.tex, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Layout(%q) = %q, want %q", tc.tex, got, tc.want)
		}
	}
}

func TestUnicodeEngine_Environments(t *testing.T) {
	e := UnicodeEngine{}

	got, err := e.Layout(`\begin{pmatrix} 1 & 0 \\ 0 & 1 \end{pmatrix}`, DisplayInline)
	if err != nil {
		t.Fatalf("pmatrix: %v", err)
	}
	if got != "(1 0; 0 1)" {
		t.Errorf("pmatrix = %q", got)
	}

	got, err = e.Layout(`\begin{cases} 1 & x > 0 \\ 0 & x \leq 0 \end{cases}`, DisplayBlock)
	if err != nil {
		t.Fatalf("cases: %v", err)
	}
	if got != "{ 1 x > 0\n0 x ≤ 0" {
		t.Errorf("cases = %q", got)
	}
}

func TestUnicodeEngine_Malformed(t *testing.T) {
	inputs := []string{
		`\frac{1}`,
		`{x`,
		`x}`,
		`x^`,
		`x_`,
		`a\`,
		`\begin{cases} x`,
		`\end{cases}`,
		`\begin{a} x \end{b}`,
	}

	e := UnicodeEngine{}
	for _, in := range inputs {
		_, err := e.Layout(in, DisplayInline)
		if err == nil {
			t.Errorf("Layout(%q) succeeded, want error", in)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Layout(%q) error %v does not wrap ErrMalformed", in, err)
		}
	}
}
