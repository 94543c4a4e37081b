package content

import (
	"strings"
	"testing"
)

func TestParse_PlainText(t *testing.T) {
	segs := Parse("Simple text")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Kind != KindText || segs[0].Value != "Simple text" {
		t.Errorf("segment = %+v, want text %q", segs[0], "Simple text")
	}
}

func TestParse_Empty(t *testing.T) {
	if segs := Parse(""); len(segs) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", segs)
	}
}

func TestParse_Delimiters(t *testing.T) {
	tests := []struct {
		input   string
		value   string
		display Display
	}{
		{"$x^2$", "x^2", DisplayInline},
		{"$$E=mc^2$$", "E=mc^2", DisplayBlock},
		{`\(a+b\)`, "a+b", DisplayInline},
		{`\[\int_0^1 x\,dx\]`, `\int_0^1 x\,dx`, DisplayBlock},
	}

	for _, tc := range tests {
		segs := Parse(tc.input)
		if len(segs) != 1 {
			t.Errorf("Parse(%q): got %d segments, want 1", tc.input, len(segs))
			continue
		}
		s := segs[0]
		if !s.IsMath() || s.Value != tc.value || s.Display != tc.display {
			t.Errorf("Parse(%q) = {%s %q %s}, want {math %q %s}",
				tc.input, s.Kind, s.Value, s.Display, tc.value, tc.display)
		}
	}
}

func TestParse_Mixed(t *testing.T) {
	segs := Parse("Soit $a$ et $$b = 2$$ alors")

	want := []struct {
		kind  Kind
		value string
	}{
		{KindText, "Soit "},
		{KindMath, "a"},
		{KindText, " et "},
		{KindMath, "b = 2"},
		{KindText, " alors"},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(segs), len(want), segs)
	}
	for i, w := range want {
		if segs[i].Kind != w.kind || segs[i].Value != w.value {
			t.Errorf("segment %d = {%s %q}, want {%s %q}", i, segs[i].Kind, segs[i].Value, w.kind, w.value)
		}
	}
}

func TestParse_NonGreedy(t *testing.T) {
	segs := Parse("$a$ + $b$")
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[0].Value != "a" || segs[2].Value != "b" {
		t.Errorf("values = %q, %q; want a, b", segs[0].Value, segs[2].Value)
	}
}

func TestParse_UnclosedIsText(t *testing.T) {
	for _, in := range []string{"costs $5", "$$", "$", `\(x`, `\[ y`, "$$a$"} {
		segs := Parse(in)
		for _, s := range segs {
			if in != "$$a$" && s.IsMath() {
				t.Errorf("Parse(%q) produced math segment %+v", in, s)
			}
		}
		if Source(segs) != in {
			t.Errorf("Source(Parse(%q)) = %q", in, Source(segs))
		}
	}
}

func TestParse_EscapedDollar(t *testing.T) {
	segs := Parse(`prix: 5\$ et 6\$`)
	if len(segs) != 1 || segs[0].IsMath() {
		t.Errorf("escaped dollars should stay text, got %+v", segs)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"Simple text",
		"$x^2$",
		"a $b$ c $$d$$ e \\(f\\) g \\[h\\] i",
		"unclosed $ here and $$ there",
		"$$$",
		"\\\\$x$",
		"tab\there $3 \times 4$",
		"",
	}
	for _, in := range inputs {
		if got := Source(Parse(in)); got != in {
			t.Errorf("Source(Parse(%q)) = %q", in, got)
		}
	}
}

func TestParse_RepairsMathOnly(t *testing.T) {
	// "\t" below is a real TAB, as produced by a transport that decoded
	// "\times" as an escape sequence.
	segs := Parse("a\tb $3 \times 4$")
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Value != "a\tb " {
		t.Errorf("text value = %q, want tab preserved", segs[0].Value)
	}
	if segs[1].Value != `3 \times 4` {
		t.Errorf("math value = %q, want %q", segs[1].Value, `3 \times 4`)
	}
	if !strings.Contains(segs[1].Raw, "\t") {
		t.Errorf("raw should keep the original bytes, got %q", segs[1].Raw)
	}
}

func TestParse_RepairPlainTextOption(t *testing.T) {
	segs := parse("a\tb", Options{RepairPlainText: true})
	if len(segs) != 1 || segs[0].Value != `a\tb` {
		t.Errorf("got %+v, want repaired text", segs)
	}
}

func TestRepairEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"\times", `\times`},
		{"\frac{1}{2}", `\frac{1}{2}`},
		{"\vec{v}", `\vec{v}`},
		{"\beta", `\beta`},
		{"\rightarrow", `\rightarrow`},
		{"a\nb", "a\nb"},
		{`\times`, `\times`},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := RepairEscapes(tc.in); got != tc.want {
			t.Errorf("RepairEscapes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRepairEscapes_Idempotent(t *testing.T) {
	for _, in := range []string{"\t\f\v\b\r", "x \times y", "a\nb\tc", ""} {
		once := RepairEscapes(in)
		if twice := RepairEscapes(once); twice != once {
			t.Errorf("RepairEscapes not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}
