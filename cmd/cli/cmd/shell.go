package cmd

import (
	"code-agent-guard/internal/infrastructure/adapter/ui"
	"code-agent-guard/internal/infrastructure/logging"
	"fmt"

	"github.com/spf13/cobra"

	appsignal "code-agent-guard/internal/infrastructure/signal"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactively check command lines",
	Long: `Shell starts a prompt where every line is checked instead of executed.
Allowed lines containing cd move the prompt's working directory. Executables
and subcommands from the allowlist are offered as completions.

Send SIGHUP to reload .gitignore rules and rediscover skills.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	container, err := GetContainer(cmd)
	if err != nil {
		return err
	}

	reloader := appsignal.NewReloadHandler(container.Reload, logging.With().Str("component", "reload").Logger())
	reloader.Start(cmd.Context())
	defer reloader.Stop()

	check := container.CheckService()
	out := cmd.OutOrStdout()
	session := ui.NewSession(
		cmd.Context(),
		check,
		container.Permissions(),
		ui.NewPrinter(out, useColor(out)),
		container.History(),
		container.ProjectDir(),
		string(check.ResolveCwd(container.Config().Cwd)),
	)
	session.SetLogger(logging.With().Str("component", "shell").Logger())

	fmt.Fprintf(out, "Checking commands for %s (exit with Ctrl-D or \"exit\")\n", container.ProjectDir())
	session.Run()
	return nil
}
