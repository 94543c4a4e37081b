package content

import "strings"

// collapsed maps control bytes produced when a transport decodes "\t", "\f",
// "\v", "\b" or "\r" as escape sequences back to the letter that followed
// the backslash. In LaTeX these are macro prefixes (\times, \frac, \vec,
// \beta, \rightarrow). Newline is deliberately absent: in prose it is
// almost always a real line break.
var collapsed = map[byte]byte{
	'\t': 't',
	'\f': 'f',
	'\v': 'v',
	'\b': 'b',
	'\r': 'r',
}

// RepairEscapes re-expands collapsed escape bytes into a backslash and a
// letter. Applying it twice is the same as applying it once.
func RepairEscapes(s string) string {
	if !strings.ContainsAny(s, "\t\f\v\b\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if letter, ok := collapsed[c]; ok {
			b.WriteByte('\\')
			b.WriteByte(letter)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
