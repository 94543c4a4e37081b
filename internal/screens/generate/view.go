package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/tutor"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	var body string
	switch s.step {
	case stepGenerating:
		body = components.RenderLoading(inner, "Le tuteur prépare ton exercice")
	case stepSaving:
		body = components.RenderLoading(inner, "Enregistrement")
	case stepPreview:
		body = s.renderPreview(inner)
	default:
		body = s.renderForm(inner)
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(body)
}

func (s *Screen) renderForm(width int) string {
	var b strings.Builder
	b.WriteString("\n")

	row := func(f field, label, value string) {
		style := theme.Unselected
		pointer := "  "
		if s.focus == f {
			style = theme.Selected
			pointer = "▸ "
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-12s", pointer, label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	choice := func(f field, v string) string {
		if s.focus == f {
			return theme.Selected.Render("◂ " + v + " ▸")
		}
		return theme.Body.Render(v)
	}

	row(fieldSubject, "Matière", s.subject.View())
	row(fieldLevel, "Niveau", choice(fieldLevel, tutor.Levels[s.level].Label))
	row(fieldTopic, "Thème", s.topic.View())
	row(fieldDifficulty, "Difficulté", choice(fieldDifficulty, difficulties[s.difficulty].Label()))
	row(fieldType, "Type", choice(fieldType, typeLabel(types[s.typ])))
	row(fieldLanguage, "Langue", choice(fieldLanguage, languageLabel(languages[s.language])))

	b.WriteString("\n")
	if s.err != nil {
		b.WriteString(theme.ErrorText.Width(width).Render(errorText(s.err)))
		b.WriteString("\n")
	}
	b.WriteString(components.RenderButton("Générer", true))
	return b.String()
}

func (s *Screen) renderPreview(width int) string {
	ex := s.draft.Exercise
	r := s.deps.Render()

	var b strings.Builder
	b.WriteString(theme.Title.Render(ex.Title))
	b.WriteString(theme.Dim.Render(fmt.Sprintf("  %s · %s · %s",
		s.draft.Params.Subject, tutor.LevelLabel(s.draft.Params.Level), s.draft.Params.Difficulty.Label())))
	b.WriteString("\n")
	if ex.Description != "" {
		b.WriteString(theme.Subtitle.Width(width).Render(r.String(ex.Description)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch c := ex.Content.(type) {
	case exercise.SingleQCM:
		list := components.NewOptionList(c.Question, c.Options)
		list.Disabled = true
		b.WriteString(list.View(r, correctMark(ex, 0), width))
	case exercise.MultiQCM:
		for q, question := range c.Questions {
			list := components.NewOptionList(fmt.Sprintf("%d. %s", q+1, question.Question), question.Options)
			list.Disabled = true
			b.WriteString(list.View(r, correctMark(ex, q), width))
			b.WriteString("\n")
		}
	case exercise.Classic:
		if c.Text != "" {
			b.WriteString(theme.Body.Width(width).Render(r.String(c.Text)))
			b.WriteString("\n\n")
		}
		var answers []string
		_ = json.Unmarshal(ex.CorrectAnswers, &answers)
		for i, q := range c.Questions {
			b.WriteString(theme.Body.Width(width).Render(fmt.Sprintf("%d. %s", i+1, r.String(q))))
			b.WriteString("\n")
			if i < len(answers) {
				b.WriteString(theme.Correct.Render("   → " + r.String(answers[i])))
				b.WriteString("\n")
			}
		}
	}

	if ex.Explanation != "" {
		b.WriteString("\n" + theme.Subtitle.Render("Explication :") + "\n")
		b.WriteString(theme.Body.Width(width).Render(r.String(ex.Explanation)))
		b.WriteString("\n")
	}
	for i, h := range ex.Hints {
		b.WriteString(theme.Hint.Width(width).Render(fmt.Sprintf("💡 Indice %d : %s", i+1, r.String(h))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if s.err != nil {
		b.WriteString(theme.ErrorText.Width(width).Render("Enregistrement impossible : " + errorText(s.err)))
		b.WriteString("\n")
	}
	b.WriteString(components.RenderButton("s Enregistrer", true) + " " +
		components.RenderButton("g Régénérer", false) + " " +
		components.RenderButton("d Abandonner", false))
	return b.String()
}

// correctMark marks the draft's correct option for question q.
func correctMark(ex *exercise.Exercise, q int) func(int) exercise.Mark {
	correct, ok := draftCorrect(ex, q)
	return func(i int) exercise.Mark {
		if ok && i == correct {
			return exercise.MarkCorrect
		}
		return exercise.MarkNeutral
	}
}

func draftCorrect(ex *exercise.Exercise, q int) (int, bool) {
	if m, ok := ex.Content.(exercise.MultiQCM); ok && q < len(m.Questions) {
		if c := m.Questions[q].CorrectOption; c != nil {
			return *c, true
		}
	}
	var key any
	if err := json.Unmarshal(ex.CorrectAnswers, &key); err != nil {
		return 0, false
	}
	if list, ok := key.([]any); ok {
		if q >= len(list) {
			return 0, false
		}
		key = list[q]
	} else if q != 0 {
		return 0, false
	}
	return exercise.NormalizeIndex(key)
}

func typeLabel(t exercise.Type) string {
	if t == exercise.TypeClassic {
		return "Exercice classique"
	}
	return "QCM"
}

func languageLabel(l string) string {
	if l == "en" {
		return "Anglais"
	}
	return "Français"
}
