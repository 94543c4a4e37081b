package components

import (
	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/ui/theme"
)

// RenderLoading renders a centered loading line.
func RenderLoading(width int, label string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n  " + label + "...")
}

// RenderError renders a centered error with the keys that get out of it.
func RenderError(width int, msg string, canRetry bool) string {
	keys := "Échap : retour"
	if canRetry {
		keys = "r : réessayer   " + keys
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("\n\n" + theme.ErrorText.Render(msg) + "\n\n" + theme.Dim.Render(keys))
}

// RenderNotFound renders the terminal view for a resource that does not
// exist.
func RenderNotFound(width int, what string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("\n\n" + theme.Title.Render(what+" introuvable") + "\n\n" +
			theme.Dim.Render("Il a peut-être été supprimé. Échap : retour"))
}

// RenderEmpty renders a centered placeholder for an empty list.
func RenderEmpty(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Italic(true).
		Render("\n\n  " + msg)
}
