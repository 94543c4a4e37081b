package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/ui/theme"
)

const titleFull = `████████╗██╗   ██╗████████╗ ██████╗ ██████╗  █████╗ ████████╗
╚══██╔══╝██║   ██║╚══██╔══╝██╔═══██╗██╔══██╗██╔══██╗╚══██╔══╝
   ██║   ██║   ██║   ██║   ██║   ██║██████╔╝███████║   ██║
   ██║   ██║   ██║   ██║   ██║   ██║██╔══██╗██╔══██║   ██║
   ██║   ╚██████╔╝   ██║   ╚██████╔╝██║  ██║██║  ██║   ██║
   ╚═╝    ╚═════╝    ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝`

const titleCompact = "T · U · T · O · R · A · T"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatsBar renders the week's practice figures in a bordered box.
func renderStatsBar(st stats, cw int, compact bool) string {
	countStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	successStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	quizStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var text string
	if compact {
		text = fmt.Sprintf("%s %s %s",
			countStyle.Render(fmt.Sprintf("✎%d", st.exercises)),
			successStyle.Render(fmt.Sprintf("✓%d", st.correct)),
			quizStyle.Render(fmt.Sprintf("★%d", st.quizzesPassed)),
		)
	} else {
		text = fmt.Sprintf("%s  %s  %s",
			countStyle.Render(fmt.Sprintf("✎ %d EXERCICES", st.exercises)),
			successStyle.Render(fmt.Sprintf("✓ %d RÉUSSIS", st.correct)),
			quizStyle.Render(fmt.Sprintf("★ %d QUIZ VALIDÉS", st.quizzesPassed)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(text)
}

const buttonWidth = 24

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	selectedBtn := base.
		Bold(true).
		Foreground(theme.BgCard).
		Background(theme.Accent).
		BorderForeground(theme.Accent)
	normalBtn := base.Foreground(theme.Text)
	disabledBtn := base.Foreground(theme.TextDim)

	var buttons []string
	for i, label := range items {
		switch {
		case disabled[i]:
			buttons = append(buttons, disabledBtn.Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for small terminals
// where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgCard).
				Background(theme.Accent).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().Foreground(theme.Text).Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderBanner renders a one-line warning under the title.
func renderBanner(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Warning).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + text)
}

func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderFrame wraps content in a double border, centered in the area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
