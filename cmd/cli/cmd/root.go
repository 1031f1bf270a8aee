package cmd

import (
	"code-agent-guard/internal/infrastructure/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrCommandDenied is returned by check when the command line is not allowed.
// main exits with status 1 without printing it again.
var ErrCommandDenied = errors.New("command denied")

type containerKey struct{}

func contextWithContainer(ctx context.Context, c *config.Container) context.Context {
	return context.WithValue(ctx, containerKey{}, c)
}

func containerFromContext(ctx context.Context) *config.Container {
	if c, ok := ctx.Value(containerKey{}).(*config.Container); ok {
		return c
	}
	return nil
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "code-agent-guard",
	Short: "Allowlist checker for shell commands proposed by coding agents",
	Long: `code-agent-guard decides whether a shell command line may run without
asking a human first.

The command line is parsed statically; anything that cannot be analysed
(substitutions, variables, subshells) is denied. Every command must match the
allowlist, every file argument must stay inside the project and out of hidden
and gitignored paths. Scripts of discovered skills may always run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		container, err := config.NewContainer(config.LoadConfig())
		if err != nil {
			return err
		}
		cmd.SetContext(contextWithContainer(cmd.Context(), container))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// GetContainer retrieves the wired dependencies from the command context.
func GetContainer(cmd *cobra.Command) (*config.Container, error) {
	if c := containerFromContext(cmd.Context()); c != nil {
		return c, nil
	}
	return nil, errors.New("container not initialized")
}

// useColor reports whether w is a terminal that should get ANSI colors.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func init() {
	// Define flags
	rootCmd.PersistentFlags().StringP("dir", "d", ".", "Project directory; file arguments may not leave it")
	rootCmd.PersistentFlags().String("cwd", "", "Working directory commands start in (default: project directory)")
	rootCmd.PersistentFlags().StringSlice("skills", []string{"skills"}, "Directories scanned for skills, relative to the project")
	rootCmd.PersistentFlags().Bool("no-builtins", false, "Start from an empty allowlist")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error or off")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Human-readable log output")
	rootCmd.PersistentFlags().String("history-file", "~/.code-agent-guard-history", "History file of the interactive shell (empty for none)")

	// Bind flags to viper
	bindings := []struct{ key, flag string }{
		{"projectDir", "dir"},
		{"cwd", "cwd"},
		{"skillsDirs", "skills"},
		{"noBuiltins", "no-builtins"},
		{"logLevel", "log-level"},
		{"logPretty", "log-pretty"},
		{"historyFile", "history-file"},
	}
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, rootCmd.PersistentFlags().Lookup(b.flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", b.flag, err)
		}
	}
}
