package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the platform auth token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store an auth token (reads standard input when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tok string
		if len(args) == 1 {
			tok = args[0]
		} else {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
			tok = string(b)
		}

		_, tokens, err := newClient()
		if err != nil {
			return err
		}
		if err := tokens.Set(tok); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token saved to", tokens.Path())
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored auth token",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tokens, err := newClient()
		if err != nil {
			return err
		}
		if err := tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
		if cfg.Token.Value != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "TUTORAT_TOKEN is still set in the environment.")
		}
		return nil
	},
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show whether a token is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tokens, err := newClient()
		if err != nil {
			return err
		}
		reveal, _ := cmd.Flags().GetBool("reveal")
		out := cmd.OutOrStdout()

		tok, err := tokens.Token()
		if err != nil {
			return err
		}
		exp, isJWT, err := tokens.Expiry()
		if err != nil {
			return err
		}

		source := tokens.Path()
		if cfg.Token.Value != "" {
			source = "TUTORAT_TOKEN"
		}
		switch {
		case tok == "" && isJWT:
			fmt.Fprintf(out, "Token expired on %s (%s)\n", exp.Local().Format(time.DateTime), source)
			return nil
		case tok == "":
			fmt.Fprintln(out, "No token. Run `tutorat token login` or `tutorat token set`.")
			return nil
		}

		shown := mask(tok)
		if reveal {
			shown = tok
		}
		fmt.Fprintf(out, "Token:   %s\n", shown)
		fmt.Fprintf(out, "Source:  %s\n", source)
		if isJWT {
			fmt.Fprintf(out, "Expires: %s\n", exp.Local().Format(time.DateTime))
		}
		return nil
	},
}

var tokenLoginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and store the token the platform returns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")
		password, err := readPassword(cmd, fromStdin)
		if err != nil {
			return err
		}

		client, tokens, err := newClient()
		if err != nil {
			return err
		}
		tok, err := client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := tokens.Set(tok); err != nil {
			return err
		}
		logger.Info().Str("user", args[0]).Str("api", client.BaseURL()).Msg("signed in")
		fmt.Fprintln(cmd.OutOrStdout(), "Signed in. Token saved to", tokens.Path())
		return nil
	},
}

func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin || !term.IsTerminal(os.Stdin.Fd()) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Mot de passe : ")
	b, err := term.ReadPassword(os.Stdin.Fd())
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// mask keeps the first and last four characters.
func mask(tok string) string {
	if len(tok) <= 12 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:4] + strings.Repeat("*", len(tok)-8) + tok[len(tok)-4:]
}

func init() {
	tokenShowCmd.Flags().Bool("reveal", false, "Print the full token")
	tokenLoginCmd.Flags().Bool("password-stdin", false, "Read the password from standard input")

	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenClearCmd)
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenLoginCmd)
}
