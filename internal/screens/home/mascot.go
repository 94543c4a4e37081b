package home

import (
	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // last attempt succeeded today
	MascotAlert                     // several misses in a row
)

const mascotIdle = `  ,___,
  (O,O)
  /)_)
 ──"─"──
  ∑ √ π`

const mascotCelebrating = `  ,___,
  (^,^)  ★
 \/)_)/
 ──"─"──
  ∑ √ π`

const mascotAlert = `  ,___,
  (o,o)  ?
  /)_)
 ──"─"──
  ∑ √ π`

// RenderMascot returns the owl art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Accent
	case MascotAlert:
		art = mascotAlert
		fg = theme.Warning
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
