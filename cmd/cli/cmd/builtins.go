package cmd

import (
	"code-agent-guard/internal/domain/safety"
	"code-agent-guard/internal/infrastructure/adapter/ui"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:     "builtins [executable...]",
	Aliases: []string{"allowlist"},
	Short:   "List the executables the allowlist accepts",
	Long: `Builtins lists every allowed executable with a one-line summary of the
arguments it accepts. Name executables to print their full argument patterns
and subcommand trees instead.`,
	RunE: runBuiltins,
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}

func runBuiltins(cmd *cobra.Command, args []string) error {
	container, err := GetContainer(cmd)
	if err != nil {
		return err
	}
	perms := container.Permissions()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		names := perms.Executables()
		width := 0
		for _, name := range names {
			width = max(width, len(name))
		}
		for _, name := range names {
			fmt.Fprintf(out, "%-*s  %s\n", width, name, ui.DescribeSpec(perms[name]))
		}
		return nil
	}

	for _, name := range args {
		spec, ok := perms[name]
		if !ok {
			return fmt.Errorf("%q is not in the allowlist", name)
		}
		printSpecTree(out, name, spec, 0)
	}
	return nil
}

// printSpecTree writes a spec and its subcommands, one indented level per word.
func printSpecTree(w io.Writer, name string, spec safety.CommandSpec, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\n", indent, name)
	switch {
	case spec.AllowAll:
		fmt.Fprintf(w, "%s  <args...>\n", indent)
	case len(spec.Args) == 0 && len(spec.SubCommands) == 0:
		fmt.Fprintf(w, "%s  (no arguments)\n", indent)
	}
	if !spec.AllowAll {
		for _, pattern := range spec.Args {
			fmt.Fprintf(w, "%s  %s\n", indent, safety.DescribePattern(pattern))
		}
	}
	for _, sub := range spec.SubCommandNames() {
		printSpecTree(w, sub, spec.SubCommands[sub], depth+1)
	}
}
