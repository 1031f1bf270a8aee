package cmd

import (
	"code-agent-guard/internal/application/dto"
	"code-agent-guard/internal/infrastructure/adapter/ui"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [command line]",
	Short: "Show how a command line is tokenized and split into commands",
	Long: `Parse runs the lexer and parser without any permission check. It is useful
to see why a line is denied as unsupported, or which words a command receives.
Without arguments the line is read from stdin.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Bool("json", false, "Print tokens and commands as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	container, err := GetContainer(cmd)
	if err != nil {
		return err
	}

	command, err := commandLine(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	resp, err := container.CheckService().Parse(&dto.ParseCommandRequest{Command: command})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return ui.NewPrinter(cmd.OutOrStdout(), useColor(cmd.OutOrStdout())).PrintParse(resp)
}
