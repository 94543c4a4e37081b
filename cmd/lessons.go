package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/tutor"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons (optionally filtered by subject, level or title)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		subject, _ := f.GetString("subject")
		level, _ := f.GetString("level")
		search, _ := f.GetString("search")

		client, _, err := newClient()
		if err != nil {
			return err
		}
		list, err := client.ListLessons(cmd.Context(), api.LessonFilter{Subject: subject, Level: level, Search: search})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No lessons found.")
			return nil
		}

		fmt.Fprintf(out, "%-28s  %-36s  %-16s  %-9s  %s\n", "Slug", "Title", "Subject", "Level", "Min")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, l := range list {
			fmt.Fprintf(out, "%-28s  %-36s  %-16s  %-9s  %d\n",
				truncate(l.Slug, 28),
				truncate(l.Title, 36),
				truncate(l.SubjectName, 16),
				tutor.LevelLabel(l.Level),
				l.DurationMinutes,
			)
		}
		fmt.Fprintf(out, "\n%d lessons\n", len(list))
		return nil
	},
}

var lessonCmd = &cobra.Command{
	Use:   "lesson <slug>",
	Short: "Read a lesson, with its math rendered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		done, _ := cmd.Flags().GetBool("done")

		client, _, err := newClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		l, err := client.GetLesson(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		styled := !plain && isTerminal(out)
		printLesson(out, l, styled)

		if !done {
			return nil
		}
		if !client.Authenticated() {
			return fmt.Errorf("not signed in: run `tutorat token login` first")
		}
		if _, err := client.MarkLessonViewed(ctx, l.Slug, 100); err != nil {
			return err
		}
		logger.Info().Str("lesson", l.Slug).Msg("lesson marked as read")
		fmt.Fprintln(out, "Lesson marked as read.")
		return nil
	},
}

func printLesson(out io.Writer, l *api.Lesson, styled bool) {
	fmt.Fprintln(out, renderText(l.Title, styled))
	meta := []string{tutor.LevelLabel(l.Level)}
	if l.SubjectName != "" {
		meta = append([]string{l.SubjectName}, meta...)
	}
	if l.DurationMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min", l.DurationMinutes))
	}
	if l.CompletionPercentage > 0 {
		meta = append(meta, fmt.Sprintf("lu à %d%%", l.CompletionPercentage))
	}
	fmt.Fprintln(out, strings.Join(meta, " · "))
	fmt.Fprintln(out, strings.Repeat("─", 60))

	if l.Summary != "" {
		fmt.Fprintf(out, "%s\n\n", renderText(l.Summary, styled))
	}
	fmt.Fprintln(out, renderText(l.Content, styled))

	if l.VideoURL != "" {
		fmt.Fprintf(out, "\nVidéo : %s\n", l.VideoURL)
	}
	if len(l.Resources) > 0 {
		fmt.Fprintln(out, "\nRessources :")
		for _, r := range l.Resources {
			fmt.Fprintf(out, "  - %s (%s) %s\n", r.Title, r.ResourceType, r.Link())
		}
	}
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your points, streak and progress per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		if !client.Authenticated() {
			return fmt.Errorf("not signed in: run `tutorat token login` first")
		}
		ctx := cmd.Context()
		stats, err := client.GetStats(ctx)
		if err != nil {
			return err
		}
		dash, err := client.GetDashboard(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		p := dash.Progress
		fmt.Fprintf(out, "Points: %d   Streak: %d days (best %d)   Average score: %.1f\n",
			stats.TotalPoints, stats.CurrentStreak, p.LongestStreak, stats.AverageScore)
		fmt.Fprintf(out, "Totals: %d lessons, %d exercises, %d quizzes\n",
			stats.TotalLessons, stats.TotalExercises, stats.TotalQuizzes)
		fmt.Fprintf(out, "This week: %d lessons, %d exercises, %d quizzes",
			stats.LessonsThisWeek, stats.ExercisesThisWeek, stats.QuizzesThisWeek)
		if w := p.WeeklyProgress; w.Goal > 0 {
			fmt.Fprintf(out, "   goal %d/%d (%d%%)", w.LessonsThisWeek, w.Goal, w.Percentage)
		}
		fmt.Fprintln(out)

		if len(dash.SubjectProgress) > 0 {
			fmt.Fprintf(out, "\n%-20s  %-22s  %9s  %s\n", "Subject", "Lessons", "Exercises", "Avg")
			fmt.Fprintln(out, strings.Repeat("─", 64))
			for _, s := range dash.SubjectProgress {
				fmt.Fprintf(out, "%-20s  %-22s  %9d  %.1f\n",
					truncate(s.SubjectName, 20),
					progressBar(s.CompletionPercentage, 10)+fmt.Sprintf(" %d/%d", s.LessonsCompleted, s.TotalLessons),
					s.ExercisesCompleted,
					s.AverageScore,
				)
			}
		}

		if len(dash.WeakAreas) > 0 {
			fmt.Fprintln(out, "\nTo review:")
			for _, w := range dash.WeakAreas {
				fmt.Fprintf(out, "  - %s: %s (%d errors)\n", w.SubjectName, w.Concept, w.ErrorCount)
			}
		}
		return nil
	},
}

// progressBar draws pct (0..100) as width cells.
func progressBar(pct, width int) string {
	filled := min(max(pct, 0), 100) * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func init() {
	lessonsCmd.Flags().String("subject", "", "Filter by subject slug")
	lessonsCmd.Flags().String("level", "", "Filter by level (e.g. cm2)")
	lessonsCmd.Flags().String("search", "", "Filter by title")
	lessonCmd.Flags().Bool("plain", false, "Print without colors")
	lessonCmd.Flags().Bool("done", false, "Mark the lesson as read")
}
