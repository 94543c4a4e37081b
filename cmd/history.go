package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/history"
	"github.com/tutorat/tutorat/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent exercise and quiz attempts",
	Long: `Show the attempts recorded on this machine, newest first. With --remote,
show the attempts the platform has for the signed-in user instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		limit, _ := f.GetInt("limit")
		remote, _ := f.GetBool("remote")
		interactive, _ := f.GetBool("tui")

		if interactive {
			return runTUI(cmd, func(_ *env, deps screen.Deps) (screen.Screen, error) {
				return history.New(deps), nil
			})
		}
		if remote {
			return remoteHistory(cmd, limit)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		attempts, err := s.EventRepo().QueryAttempts(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No attempts recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-8s  %-6s  %-34s  %7s  %6s  %s\n",
			"Time", "Kind", "ID", "Title", "Score", "Spent", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, a := range attempts {
			fmt.Fprintf(out, "%-16s  %-8s  %-6d  %-34s  %7s  %6s  %s\n",
				a.Timestamp.Local().Format("2006-01-02 15:04"),
				a.Kind,
				a.RefID,
				truncate(a.Title, 34),
				fmt.Sprintf("%d/%d", a.Score, a.MaxScore),
				formatSpent(a.TimeSpentSecs),
				okMark(a.Success),
			)
		}
		return nil
	},
}

func remoteHistory(cmd *cobra.Command, limit int) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	if !client.Authenticated() {
		return fmt.Errorf("not signed in: run `tutorat token login` first")
	}
	ctx := cmd.Context()
	exercises, err := client.ListMyAttempts(ctx)
	if err != nil {
		return err
	}
	quizzes, err := client.ListMyQuizAttempts(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exercises (%d)\n", len(exercises))
	fmt.Fprintln(out, strings.Repeat("─", 80))
	for i, a := range exercises {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(out, "%-16s  %-6d  %-34s  %4d pts  #%-3d  %s\n",
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			a.Exercise, truncate(a.ExerciseTitle, 34), a.Score, a.AttemptNumber, okMark(a.IsCorrect))
	}

	fmt.Fprintf(out, "\nQuizzes (%d)\n", len(quizzes))
	fmt.Fprintln(out, strings.Repeat("─", 80))
	for i, a := range quizzes {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(out, "%-16s  %-6d  %-34s  %5.1f %%  %6s  %s\n",
			a.StartedAt.Local().Format("2006-01-02 15:04"),
			a.Quiz, truncate(a.QuizTitle, 34), a.Percentage, formatSpent(a.TimeSpent), okMark(a.IsPassed))
	}
	return nil
}

var historyChatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List stored tutor conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.EventRepo().ChatSessions(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query chat sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No conversations recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-16s  %s\n", "Session", "Started", "Messages")
		fmt.Fprintln(out, strings.Repeat("─", 66))
		for _, c := range sessions {
			fmt.Fprintf(out, "%-36s  %-16s  %d\n",
				c.SessionID, c.Started.Local().Format("2006-01-02 15:04"), c.Messages)
		}
		return nil
	},
}

var historyChatCmd = &cobra.Command{
	Use:   "chat <session>",
	Short: "Print a stored tutor conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		msgs, err := s.EventRepo().ChatTranscript(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("query transcript: %w", err)
		}
		if len(msgs) == 0 {
			return fmt.Errorf("conversation %s not found", args[0])
		}

		out := cmd.OutOrStdout()
		for _, m := range msgs {
			who := "Toi"
			if m.Role == "assistant" {
				who = "Tuteur"
			}
			fmt.Fprintf(out, "[%s] %s\n%s\n\n", m.Timestamp.Local().Format("15:04"), who, renderText(m.Content, false))
		}
		return nil
	},
}

func formatSpent(secs int) string {
	d := time.Duration(secs) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), secs%60)
}

func okMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
	historyCmd.Flags().Bool("remote", false, "Show the platform's record instead of the local one")
	historyCmd.Flags().Bool("tui", false, "Browse interactively")
	historyChatsCmd.Flags().IntP("limit", "n", 20, "Number of conversations to show")

	historyCmd.AddCommand(historyChatsCmd)
	historyCmd.AddCommand(historyChatCmd)
}
