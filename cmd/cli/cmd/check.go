package cmd

import (
	"code-agent-guard/internal/application/dto"
	"code-agent-guard/internal/infrastructure/adapter/ui"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [command line]",
	Short: "Check whether a command line may run without approval",
	Long: `Check parses the command line and validates it against the allowlist.

The arguments are joined with spaces; quote the whole line to keep operators
away from your own shell. Without arguments the line is read from stdin.
The exit status is 0 when the command is allowed and 1 when it is denied.`,
	Example: `  code-agent-guard check 'git status && ls src'
  echo 'cat .env' | code-agent-guard check --json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "Print the verdict as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	container, err := GetContainer(cmd)
	if err != nil {
		return err
	}

	command, err := commandLine(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	resp, err := container.CheckService().Check(cmd.Context(), &dto.CheckCommandRequest{
		Command: command,
		Cwd:     container.Config().Cwd,
	})
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	} else {
		printer := ui.NewPrinter(cmd.OutOrStdout(), useColor(cmd.OutOrStdout()))
		if err := printer.PrintVerdict(resp); err != nil {
			return err
		}
	}

	if !resp.Allowed {
		return ErrCommandDenied
	}
	return nil
}

// commandLine joins args, or reads the whole of in when there are none.
func commandLine(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read command from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
