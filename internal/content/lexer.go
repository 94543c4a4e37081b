package content

import "strings"

// delimiter is one recognized math fence.
type delimiter struct {
	open    string
	close   string
	display Display
}

// delimiters in precedence order. At a given position the first pair that
// closes wins, so "$$" is always tried before "$".
var delimiters = []delimiter{
	{open: "$$", close: "$$", display: DisplayBlock},
	{open: `\[`, close: `\]`, display: DisplayBlock},
	{open: "$", close: "$", display: DisplayInline},
	{open: `\(`, close: `\)`, display: DisplayInline},
}

// Parse splits s into text and math segments in a single left-to-right pass.
//
// Each delimiter pair is matched lazily: the first closing fence ends the
// math, and the math must be non-empty. A fence preceded by an odd number of
// backslashes is escaped and is treated as text. An opening fence that never
// closes is plain text. Adjacent text is coalesced.
func Parse(s string) []Segment {
	return parse(s, Options{})
}

func parse(s string, opts Options) []Segment {
	if s == "" {
		return nil
	}

	var segs []Segment
	textStart := 0

	flushText := func(end int) {
		if textStart >= end {
			return
		}
		raw := s[textStart:end]
		value := raw
		if opts.RepairPlainText {
			value = RepairEscapes(raw)
		}
		segs = append(segs, Segment{Kind: KindText, Value: value, Raw: raw})
	}

	for i := 0; i < len(s); {
		seg, n := matchMath(s, i)
		if n == 0 {
			i++
			continue
		}
		flushText(i)
		segs = append(segs, seg)
		i += n
		textStart = i
	}
	flushText(len(s))

	return segs
}

// matchMath tries every delimiter at position i and returns the math segment
// and the number of bytes it spans. n == 0 means no match.
func matchMath(s string, i int) (Segment, int) {
	for _, d := range delimiters {
		if !fenceAt(s, i, d.open) {
			continue
		}
		start := i + len(d.open)
		end := closingFence(s, start+1, d.close)
		if end < 0 {
			continue
		}
		raw := s[i : end+len(d.close)]
		return Segment{
			Kind:    KindMath,
			Value:   RepairEscapes(s[start:end]),
			Display: d.display,
			Raw:     raw,
		}, len(raw)
	}
	return Segment{}, 0
}

// closingFence returns the index of the first unescaped fence at or after
// from, or -1.
func closingFence(s string, from int, fence string) int {
	for from <= len(s)-len(fence) {
		j := strings.Index(s[from:], fence)
		if j < 0 {
			return -1
		}
		j += from
		if fenceAt(s, j, fence) {
			return j
		}
		from = j + 1
	}
	return -1
}

// fenceAt reports whether fence starts at s[i] and is not escaped.
func fenceAt(s string, i int, fence string) bool {
	if i < 0 || i+len(fence) > len(s) || s[i:i+len(fence)] != fence {
		return false
	}
	slashes := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		slashes++
	}
	return slashes%2 == 0
}
