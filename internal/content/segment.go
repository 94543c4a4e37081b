package content

// Kind classifies a parsed segment.
type Kind int

const (
	KindText Kind = iota
	KindMath
)

func (k Kind) String() string {
	if k == KindMath {
		return "math"
	}
	return "text"
}

// Display says how a math segment is laid out.
type Display int

const (
	DisplayInline Display = iota
	DisplayBlock
)

func (d Display) String() string {
	if d == DisplayBlock {
		return "block"
	}
	return "inline"
}

// Segment is one piece of a parsed content blob.
type Segment struct {
	Kind Kind

	// Value is the text to display. For math segments it is the content
	// between the delimiters, with collapsed escapes repaired.
	Value string

	// Display is only meaningful for math segments.
	Display Display

	// Raw is the exact source slice, delimiters included.
	Raw string
}

// IsMath reports whether the segment holds math.
func (s Segment) IsMath() bool {
	return s.Kind == KindMath
}

// Source concatenates the raw text of segs. For any input,
// Source(Parse(s)) == s.
func Source(segs []Segment) string {
	n := 0
	for _, s := range segs {
		n += len(s.Raw)
	}
	b := make([]byte, 0, n)
	for _, s := range segs {
		b = append(b, s.Raw...)
	}
	return string(b)
}
