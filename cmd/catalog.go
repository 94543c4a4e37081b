package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/browse"
	"github.com/tutorat/tutorat/internal/tutor"
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "List exercises (optionally filtered by subject, level or difficulty)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		subject, _ := f.GetString("subject")
		level, _ := f.GetString("level")
		difficulty, _ := f.GetString("difficulty")
		interactive, _ := f.GetBool("tui")

		filter := api.ExerciseFilter{Subject: subject, Level: level, Difficulty: exercise.Difficulty(difficulty)}
		if filter.Difficulty != "" && !filter.Difficulty.Valid() {
			return fmt.Errorf("invalid difficulty %q: must be easy, medium or hard", difficulty)
		}
		if interactive {
			return runTUI(cmd, func(_ *env, deps screen.Deps) (screen.Screen, error) {
				return browse.NewExercises(deps, filter), nil
			})
		}

		client, _, err := newClient()
		if err != nil {
			return err
		}
		list, err := client.ListExercises(cmd.Context(), filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No exercises found.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-36s  %-16s  %-9s  %-8s  %-9s  %s\n",
			"ID", "Title", "Subject", "Level", "Type", "Difficulty", "Pts")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, ex := range list {
			fmt.Fprintf(out, "%-6d  %-36s  %-16s  %-9s  %-8s  %-9s  %d\n",
				ex.ID,
				truncate(ex.Title, 36),
				truncate(ex.SubjectName, 16),
				tutor.LevelLabel(ex.Level),
				ex.Type,
				ex.Difficulty.Label(),
				ex.Points,
			)
		}
		fmt.Fprintf(out, "\n%d exercises\n", len(list))
		return nil
	},
}

var quizzesCmd = &cobra.Command{
	Use:   "quizzes",
	Short: "List quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		subject, _ := f.GetString("subject")
		level, _ := f.GetString("level")
		interactive, _ := f.GetBool("tui")

		filter := api.QuizFilter{Subject: subject, Level: level}
		if interactive {
			return runTUI(cmd, func(_ *env, deps screen.Deps) (screen.Screen, error) {
				return browse.NewQuizzes(deps, filter), nil
			})
		}

		client, _, err := newClient()
		if err != nil {
			return err
		}
		list, err := client.ListQuizzes(cmd.Context(), filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No quizzes found.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-40s  %9s  %8s  %s\n", "ID", "Title", "Questions", "Minutes", "Pass %")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, q := range list {
			minutes := "-"
			if q.TimeLimit != nil && *q.TimeLimit > 0 {
				minutes = fmt.Sprint(*q.TimeLimit)
			}
			count := q.ExerciseCount
			if count == 0 {
				count = q.Len()
			}
			fmt.Fprintf(out, "%-6d  %-40s  %9d  %8s  %d\n",
				q.ID, truncate(q.Title, 40), count, minutes, q.PassingScore)
		}
		fmt.Fprintf(out, "\n%d quizzes\n", len(list))
		return nil
	},
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the platform's subjects",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		subjects, err := client.ListSubjects(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s  %-24s  %s\n", "ID", "Name", "Slug")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, s := range subjects {
			fmt.Fprintf(out, "%-6d  %-24s  %s\n", s.ID, truncate(s.Name, 24), s.Slug)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{exercisesCmd, quizzesCmd} {
		c.Flags().String("subject", "", "Filter by subject slug or id")
		c.Flags().String("level", "", "Filter by level (e.g. cm2)")
		c.Flags().Bool("tui", false, "Browse interactively")
	}
	exercisesCmd.Flags().String("difficulty", "", "Filter by difficulty: easy, medium or hard")
}
