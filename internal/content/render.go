package content

import (
	"strings"
	"sync"

	"github.com/tutorat/tutorat/internal/ui/theme"
)

// Options tunes parsing.
type Options struct {
	// RepairPlainText applies RepairEscapes to text segments as well as
	// math. Off by default: a literal tab in prose is left alone.
	RepairPlainText bool
}

// Rendered is a segment after layout. Err is set when a math segment could
// not be laid out; Text then holds the raw source so nothing is lost.
type Rendered struct {
	Segment
	Text string
	Err  error
}

// Failed reports whether the segment should be shown as a rendering error.
func (r Rendered) Failed() bool {
	return r.Err != nil
}

// Renderer turns content blobs into laid-out segments. Results are memoized
// per input and the renderer is safe for concurrent use.
type Renderer struct {
	engine Engine
	opts   Options
	cache  sync.Map // string -> []Rendered
}

// NewRenderer returns a renderer using engine, or UnicodeEngine when nil.
func NewRenderer(engine Engine, opts Options) *Renderer {
	if engine == nil {
		engine = UnicodeEngine{}
	}
	return &Renderer{engine: engine, opts: opts}
}

// Render parses s and lays out each math segment. It never fails: math the
// engine rejects is returned flagged, with its raw text.
func (r *Renderer) Render(s string) []Rendered {
	if v, ok := r.cache.Load(s); ok {
		return v.([]Rendered)
	}

	segs := parse(s, r.opts)
	out := make([]Rendered, 0, len(segs))
	for _, seg := range segs {
		out = append(out, r.layout(seg))
	}

	v, _ := r.cache.LoadOrStore(s, out)
	return v.([]Rendered)
}

func (r *Renderer) layout(seg Segment) (rd Rendered) {
	rd = Rendered{Segment: seg, Text: seg.Value}
	if !seg.IsMath() {
		return rd
	}

	defer func() {
		if p := recover(); p != nil {
			rd.Text = seg.Raw
			rd.Err = ErrMalformed
		}
	}()

	text, err := r.engine.Layout(seg.Value, seg.Display)
	if err != nil {
		rd.Text = seg.Raw
		rd.Err = err
		return rd
	}
	rd.Text = text
	return rd
}

// String renders s as a styled terminal string. Block math sits on its own
// lines.
func (r *Renderer) String(s string) string {
	var b strings.Builder
	for _, rd := range r.Render(s) {
		switch {
		case rd.Failed():
			b.WriteString(theme.MathError.Render(rd.Text))
		case !rd.IsMath():
			b.WriteString(rd.Text)
		case rd.Display == DisplayBlock:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
			b.WriteString(theme.MathBlock.Render(rd.Text))
			b.WriteByte('\n')
		default:
			b.WriteString(theme.MathInline.Render(rd.Text))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Plain renders s without styling, for logs and non-terminal output.
func (r *Renderer) Plain(s string) string {
	var b strings.Builder
	for _, rd := range r.Render(s) {
		b.WriteString(rd.Text)
	}
	return b.String()
}

var defaultRenderer = NewRenderer(nil, Options{})

// Default returns the shared renderer used by the terminal views.
func Default() *Renderer {
	return defaultRenderer
}
