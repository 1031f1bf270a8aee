package main

import (
	"code-agent-guard/cmd/cli/cmd"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// The verdict has already been printed for denied commands.
		if !errors.Is(err, cmd.ErrCommandDenied) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
