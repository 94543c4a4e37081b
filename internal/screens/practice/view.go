package practice

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	switch {
	case s.notFound:
		return components.RenderNotFound(width, "Exercice")
	case s.loadErr != nil:
		return components.RenderError(width, "Impossible de charger l'exercice : "+s.loadErr.Error(), true)
	case s.session == nil:
		return components.RenderLoading(width, "Chargement de l'exercice")
	}

	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	r := s.deps.Render()
	ex := s.session.Exercise()

	var b strings.Builder
	b.WriteString(s.renderInfoLine(inner))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	b.WriteString("\n\n")

	if ex.Description != "" {
		b.WriteString(theme.Subtitle.Width(inner).Render(r.String(ex.Description)))
		b.WriteString("\n\n")
	}

	switch c := ex.Content.(type) {
	case exercise.SingleQCM, exercise.MultiQCM:
		for q, list := range s.lists {
			b.WriteString(list.View(r, func(i int) exercise.Mark { return s.session.OptionMark(q, i) }, inner))
			b.WriteString("\n")
		}
	case exercise.Classic:
		b.WriteString(s.renderClassic(c, inner))
	case exercise.Unsupported:
		b.WriteString(theme.ErrorText.Render(fmt.Sprintf("Les exercices de type « %s » ne peuvent pas être faits dans le terminal.", c.Type)))
		b.WriteString("\n")
	}

	if hints := s.session.RevealedHints(); len(hints) > 0 {
		b.WriteString("\n")
		for i, h := range hints {
			b.WriteString(theme.Hint.Width(inner).Render(fmt.Sprintf("💡 Indice %d : %s", i+1, r.String(h))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.renderStatus(inner))

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func (s *Screen) renderInfoLine(width int) string {
	ex := s.session.Exercise()

	left := theme.Title.Render(ex.Title)
	meta := []string{}
	if ex.SubjectName != "" {
		meta = append(meta, ex.SubjectName)
	}
	if ex.Difficulty != "" {
		meta = append(meta, ex.Difficulty.Label())
	}
	if len(meta) > 0 {
		left += theme.Dim.Render("  " + strings.Join(meta, " · "))
	}

	clock := components.FormatClock(s.session.Elapsed())
	if ex.TimeLimit != nil && *ex.TimeLimit > 0 {
		remaining := time.Duration(*ex.TimeLimit)*time.Second - s.session.Elapsed()
		clock = components.FormatClock(remaining)
		if remaining < 0 {
			clock = theme.ErrorText.Render(clock)
		}
	}
	right := theme.Dim.Render(fmt.Sprintf("⏱ %s   ★ %d pts", clock, s.session.DisplayPoints()))
	if n := s.session.Attempt(); n > 0 {
		right += theme.Dim.Render(fmt.Sprintf("   essai %d", n+1))
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *Screen) renderClassic(c exercise.Classic, width int) string {
	r := s.deps.Render()
	var b strings.Builder
	if c.Text != "" {
		b.WriteString(theme.Body.Width(width).Render(r.String(c.Text)))
		b.WriteString("\n\n")
	}
	for i, q := range c.Questions {
		b.WriteString(theme.Body.Width(width).Render(fmt.Sprintf("%d. %s", i+1, r.String(q))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString("Réponse : " + s.input.View())
	b.WriteString("\n")
	return b.String()
}

func (s *Screen) renderStatus(width int) string {
	switch s.session.Phase() {
	case exercise.PhaseSubmitting:
		return theme.Dim.Render("Correction en cours...")
	case exercise.PhaseGraded:
		return s.renderResult(width)
	}

	var lines []string
	if err := s.session.Err(); err != nil {
		lines = append(lines, theme.ErrorText.Render("Envoi impossible : "+err.Error()),
			theme.Dim.Render("Entrée : réessayer"))
	}
	if s.notice != "" {
		lines = append(lines, theme.Hint.Render(s.notice))
	}
	if len(lines) == 0 {
		lines = append(lines, components.RenderButton("Valider", s.session.CanSubmit()))
	}
	return strings.Join(lines, "\n")
}

func (s *Screen) renderResult(width int) string {
	res := s.session.Result()
	ex := s.session.Exercise()
	r := s.deps.Render()

	var b strings.Builder
	if res.IsCorrect {
		b.WriteString(theme.Correct.Render("✓ Bonne réponse !"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Ce n'est pas ça."))
	}
	score := fmt.Sprintf("  %d", res.Score)
	if res.MaxScore != nil {
		score += fmt.Sprintf(" / %d", *res.MaxScore)
	}
	b.WriteString(theme.Dim.Render(score + " pts"))
	b.WriteString("\n")

	if res.Message != "" {
		b.WriteString(theme.Body.Width(width).Render(r.String(res.Message)))
		b.WriteString("\n")
	}

	if _, ok := ex.Content.(exercise.Classic); ok {
		if answers := modelAnswers(res.CorrectAnswer, ex.CorrectAnswers); len(answers) > 0 {
			b.WriteString("\n" + theme.Subtitle.Render("Corrigé :") + "\n")
			for i, a := range answers {
				b.WriteString(theme.Body.Width(width).Render(fmt.Sprintf("%d. %s", i+1, r.String(a))))
				b.WriteString("\n")
			}
		}
	}

	explanation := res.Explanation
	if explanation == "" {
		explanation = ex.Explanation
	}
	if explanation != "" {
		b.WriteString("\n" + theme.Subtitle.Render("Explication :") + "\n")
		b.WriteString(theme.Body.Width(width).Render(r.String(explanation)))
		b.WriteString("\n")
	}
	return b.String()
}

// modelAnswers decodes the first answer key that holds strings: a list, or
// a single string.
func modelAnswers(keys ...json.RawMessage) []string {
	for _, raw := range keys {
		if len(raw) == 0 {
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return list
		}
		var one string
		if err := json.Unmarshal(raw, &one); err == nil && one != "" {
			return []string{one}
		}
	}
	return nil
}
