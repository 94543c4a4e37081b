package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/chat"
	"github.com/tutorat/tutorat/internal/screens/generate"
	"github.com/tutorat/tutorat/internal/screens/practice"
	"github.com/tutorat/tutorat/internal/screens/quizrun"
	"github.com/tutorat/tutorat/internal/tutor"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise <id>",
	Short: "Attempt an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runTUI(cmd, func(_ *env, deps screen.Deps) (screen.Screen, error) {
			return practice.New(deps, id), nil
		})
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz <id>",
	Short: "Take a quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runTUI(cmd, func(_ *env, deps screen.Deps) (screen.Screen, error) {
			return quizrun.New(deps, id), nil
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the AI tutor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, func(e *env, deps screen.Deps) (screen.Screen, error) {
			if err := e.requireTutor(); err != nil {
				return nil, err
			}
			return chat.New(deps), nil
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an exercise with the AI tutor",
	Long: `Open the exercise generator. Flags pre-fill the form; nothing is saved
on the platform until the draft is accepted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := generateParams(cmd)
		if err != nil {
			return err
		}
		return runTUI(cmd, func(e *env, deps screen.Deps) (screen.Screen, error) {
			if err := e.requireTutor(); err != nil {
				return nil, err
			}
			return generate.New(deps, p), nil
		})
	},
}

func generateParams(cmd *cobra.Command) (tutor.GenerateParams, error) {
	f := cmd.Flags()
	subject, _ := f.GetString("subject")
	level, _ := f.GetString("level")
	topic, _ := f.GetString("topic")
	difficulty, _ := f.GetString("difficulty")
	typ, _ := f.GetString("type")
	language, _ := f.GetString("language")

	p := tutor.GenerateParams{
		Subject:    subject,
		Level:      level,
		Topic:      topic,
		Difficulty: exercise.Difficulty(difficulty),
		Type:       exercise.Type(typ),
		Language:   language,
	}
	if p.Difficulty != "" && !p.Difficulty.Valid() {
		return p, fmt.Errorf("invalid difficulty %q: must be easy, medium or hard", difficulty)
	}
	return p, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func init() {
	f := generateCmd.Flags()
	f.String("subject", "", "Subject name, e.g. Mathématiques")
	f.String("level", "", "School level, e.g. cm2 or sixieme")
	f.String("topic", "", "Topic of the exercise")
	f.String("difficulty", "", "easy, medium or hard")
	f.String("type", "", "qcm or classic")
	f.String("language", "", "fr or en")
}
