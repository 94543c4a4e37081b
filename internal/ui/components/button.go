package components

import (
	"github.com/tutorat/tutorat/internal/ui/theme"
)

// RenderButton renders a button. Screens handle the keys that press it;
// an inactive button is dimmed.
func RenderButton(label string, active bool) string {
	if active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
