package quizrun

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/quiz"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	switch {
	case s.notFound:
		return components.RenderNotFound(width, "Quiz")
	case s.loadErr != nil:
		return components.RenderError(width, "Impossible de charger le quiz : "+s.loadErr.Error(), true)
	case s.session == nil:
		return components.RenderLoading(width, "Chargement du quiz")
	}

	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	var body string
	switch s.session.Phase() {
	case quiz.PhaseIntro:
		body = s.renderIntro(inner)
	case quiz.PhaseCompleted:
		body = s.renderResult(inner)
	default:
		body = s.renderQuestion(inner)
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(body)
}

func (s *Screen) renderIntro(width int) string {
	q := s.session.Quiz()
	r := s.deps.Render()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render(q.Title))
	b.WriteString("\n\n")
	if q.Description != "" {
		b.WriteString(theme.Body.Width(width).Render(r.String(q.Description)))
		b.WriteString("\n\n")
	}

	facts := []string{fmt.Sprintf("%d questions", q.Len())}
	if q.TimeLimit != nil && *q.TimeLimit > 0 {
		facts = append(facts, fmt.Sprintf("%d min", *q.TimeLimit))
	}
	if q.PassingScore > 0 {
		facts = append(facts, fmt.Sprintf("réussite à %d %%", q.PassingScore))
	}
	b.WriteString(theme.Dim.Render(strings.Join(facts, " · ")))
	b.WriteString("\n\n")

	switch {
	case s.session.Starting():
		b.WriteString(theme.Dim.Render("Démarrage..."))
	case s.session.Err() != nil:
		b.WriteString(theme.ErrorText.Render("Démarrage impossible : " + s.session.Err().Error()))
		b.WriteString("\n" + theme.Dim.Render("Entrée : réessayer"))
	case s.notice != "":
		b.WriteString(theme.Hint.Render(s.notice))
	default:
		b.WriteString(components.RenderButton("Commencer", true))
	}
	return b.String()
}

func (s *Screen) renderQuestion(width int) string {
	ex := s.session.Current()
	if ex == nil {
		return ""
	}
	r := s.deps.Render()
	answered, total := s.session.Progress()

	var b strings.Builder

	left := theme.Subtitle.Render(fmt.Sprintf("Question %d / %d", s.session.Index()+1, total))
	clock := components.FormatClock(s.session.Elapsed())
	if rem, ok := s.session.Remaining(); ok {
		clock = components.FormatClock(rem)
		if rem < 0 {
			clock = theme.ErrorText.Render(clock)
		}
	}
	right := theme.Dim.Render("⏱ " + clock)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n")

	var pct float64
	if total > 0 {
		pct = float64(answered) / float64(total)
	}
	b.WriteString(components.NewProgressBar(fmt.Sprintf("%d répondues", answered), pct, false, width).View())
	b.WriteString("\n\n")

	b.WriteString(theme.Title.Render(ex.Title))
	b.WriteString("\n")
	if ex.Description != "" {
		b.WriteString(theme.Subtitle.Width(width).Render(r.String(ex.Description)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch c := ex.Content.(type) {
	case exercise.SingleQCM, exercise.MultiQCM:
		for q, list := range s.lists {
			b.WriteString(list.View(r, func(i int) exercise.Mark {
				if s.selected(q) == i {
					return exercise.MarkSelected
				}
				return exercise.MarkNeutral
			}, width))
			b.WriteString("\n")
		}
	case exercise.Classic:
		if c.Text != "" {
			b.WriteString(theme.Body.Width(width).Render(r.String(c.Text)))
			b.WriteString("\n\n")
		}
		for i, q := range c.Questions {
			b.WriteString(theme.Body.Width(width).Render(fmt.Sprintf("%d. %s", i+1, r.String(q))))
			b.WriteString("\n")
		}
		b.WriteString("\nRéponse : " + s.input.View() + "\n")
	case exercise.Unsupported:
		b.WriteString(theme.ErrorText.Render(fmt.Sprintf("Question de type « %s » non prise en charge ; passe à la suivante.", c.Type)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case s.session.Phase() == quiz.PhaseSubmitting:
		b.WriteString(theme.Dim.Render("Envoi des réponses..."))
	case s.session.Err() != nil:
		b.WriteString(theme.ErrorText.Render("Envoi impossible : " + s.session.Err().Error()))
		b.WriteString("\n" + theme.Dim.Render("Entrée : réessayer"))
	case s.notice != "":
		b.WriteString(theme.Hint.Render(s.notice))
	default:
		b.WriteString(components.RenderButton("Terminer le quiz", s.session.CanFinish()))
	}
	return b.String()
}

func (s *Screen) renderResult(width int) string {
	res := s.session.Result()
	r := s.deps.Render()

	var b strings.Builder
	b.WriteString("\n")
	if res.IsPassed {
		b.WriteString(theme.Correct.Render("🎉 Quiz réussi !"))
	} else {
		b.WriteString(theme.Incorrect.Render("Quiz non validé"))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Score : %d / %d", res.Score, res.TotalScore)))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", res.Percentage/100, true, width/2).View())
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render("Temps : " + components.FormatClock(s.session.Elapsed())))
	b.WriteString("\n")
	if res.Message != "" {
		b.WriteString("\n" + theme.Body.Width(width).Render(r.String(res.Message)) + "\n")
	}
	return b.String()
}
