package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/content"
)

var renderCmd = &cobra.Command{
	Use:   "render [text]",
	Short: "Render text with LaTeX math the way exercises show it",
	Long: `Render a content blob with $...$, $$...$$, \(...\) and \[...\] math.
Reads standard input when no text is given or the text is "-".

This is a developer tool: no database, no network.`,
	Args: cobra.ArbitraryArgs,
	// No config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		segments, _ := cmd.Flags().GetBool("segments")
		repair, _ := cmd.Flags().GetBool("repair-text")

		text := strings.Join(args, " ")
		if text == "" || text == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			text = strings.TrimRight(string(b), "\n")
		}

		r := content.Default()
		if repair {
			r = content.NewRenderer(nil, content.Options{RepairPlainText: true})
		}

		out := cmd.OutOrStdout()
		if segments {
			for i, rd := range r.Render(text) {
				kind := rd.Kind.String()
				if rd.IsMath() {
					kind += "/" + rd.Display.String()
				}
				fmt.Fprintf(out, "%-3d %-12s %q -> %q", i, kind, rd.Raw, rd.Text)
				if rd.Failed() {
					fmt.Fprintf(out, "  error: %v", rd.Err)
				}
				fmt.Fprintln(out)
			}
			return nil
		}

		if plain {
			fmt.Fprintln(out, r.Plain(text))
		} else {
			fmt.Fprintln(out, r.String(text))
		}
		return nil
	},
}

// renderText renders s for non-interactive output.
func renderText(s string, styled bool) string {
	if styled {
		return content.Default().String(s)
	}
	return content.Default().Plain(s)
}

func init() {
	renderCmd.Flags().Bool("plain", false, "Print without colors")
	renderCmd.Flags().Bool("segments", false, "List the parsed segments instead")
	renderCmd.Flags().Bool("repair-text", false, "Also repair collapsed escapes outside math")
}
