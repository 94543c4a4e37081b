package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/config"
	"github.com/tutorat/tutorat/internal/logging"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/home"
)

var (
	v      = config.New()
	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "tutorat",
	Short: "Terminal client for the Tutorat platform",
	Long: `tutorat: practise exercises and quizzes, chat with the AI tutor and
generate new exercises from the terminal.

Settings come from flags, TUTORAT_* environment variables and
~/.config/tutorat/config.yaml, in that order.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, func(_ *env, deps screen.Deps) (screen.Screen, error) {
			return home.New(deps, home.Options{}), nil
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to the config file")
	pf.String("api-url", "", "Platform API base URL (overrides TUTORAT_API_URL)")
	pf.String("db", "", "Path to SQLite database file (overrides TUTORAT_DB)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json")
	pf.String("ai-backend", "", "AI tutor backend: remote or local")

	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exercisesCmd)
	rootCmd.AddCommand(quizzesCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration and sets up stderr logging. The
// terminal UI moves logging to a file before it starts.
func loadConfig(cmd *cobra.Command, args []string) error {
	pf := cmd.Root().PersistentFlags()
	if err := config.BindFlags(v, pf); err != nil {
		return err
	}
	path, _ := pf.GetString("config")

	c, err := config.Load(v, path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	l, err := logging.Init(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	logger = l
	return nil
}
