package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/content"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

// OptionList is a cursor over the options of one multiple-choice
// question. It does not hold the selection; the owning session does, and
// View asks for each option's mark.
type OptionList struct {
	Question string
	Options  []string
	Cursor   int
	Disabled bool
}

// NewOptionList creates an option list with the cursor on the first option.
func NewOptionList(question string, options []string) OptionList {
	return OptionList{Question: question, Options: options}
}

// Update moves the cursor. It returns the index of the option the user
// picked with space or a digit key, or exercise.Unanswered.
func (o OptionList) Update(msg tea.Msg) (OptionList, int) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || o.Disabled || len(o.Options) == 0 {
		return o, exercise.Unanswered
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
	case "space", " ":
		return o, o.Cursor
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(o.Options) {
				o.Cursor = i
				return o, i
			}
		}
	}
	return o, exercise.Unanswered
}

// View renders the question and its options. mark reports how option i
// is highlighted; nil marks nothing.
func (o OptionList) View(r *content.Renderer, mark func(i int) exercise.Mark, width int) string {
	var b strings.Builder
	if o.Question != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Bold(true).Foreground(theme.Text).
			Render(r.String(o.Question)))
		b.WriteString("\n\n")
	}

	for i, opt := range o.Options {
		m := exercise.MarkNeutral
		if mark != nil {
			m = mark(i)
		}

		pointer := "  "
		if i == o.Cursor && !o.Disabled {
			pointer = "▸ "
		}
		line := fmt.Sprintf("%s%s %s) %s", pointer, markGlyph(m), exercise.Letter(i), r.String(opt))
		b.WriteString(markStyle(m, i == o.Cursor && !o.Disabled).Width(width).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func markGlyph(m exercise.Mark) string {
	switch m {
	case exercise.MarkSelected:
		return "●"
	case exercise.MarkSelectedCorrect:
		return "✓"
	case exercise.MarkSelectedWrong:
		return "✗"
	case exercise.MarkCorrect:
		return "✓"
	}
	return "○"
}

func markStyle(m exercise.Mark, cursor bool) lipgloss.Style {
	switch m {
	case exercise.MarkSelectedCorrect, exercise.MarkCorrect:
		return theme.Correct
	case exercise.MarkSelectedWrong:
		return theme.Incorrect
	case exercise.MarkSelected:
		return theme.Selected
	}
	if cursor {
		return theme.Selected
	}
	return theme.Unselected
}
