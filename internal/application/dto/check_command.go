package dto

import (
	"code-agent-guard/internal/domain/shell"
	"strings"
)

// CheckCommandRequest asks whether a command line may run.
type CheckCommandRequest struct {
	Command string `json:"command"`       // The raw command line
	Cwd     string `json:"cwd,omitempty"` // Working directory; relative paths resolve against the project
}

// Validate checks that the request carries a usable command line.
func (r *CheckCommandRequest) Validate() error {
	return validateCommand(r.Command)
}

// CheckCommandResponse is the verdict for a CheckCommandRequest.
type CheckCommandResponse struct {
	Command   string           `json:"command"`
	Cwd       string           `json:"cwd"`                 // Working directory the check started in
	FinalCwd  string           `json:"final_cwd,omitempty"` // Working directory after the commands ran, when allowed
	Allowed   bool             `json:"allowed"`
	Reason    string           `json:"reason,omitempty"`
	Dangerous bool             `json:"dangerous,omitempty"`
	Danger    string           `json:"danger,omitempty"`
	Commands  []CommandSummary `json:"commands,omitempty"`
}

// CommandSummary is the serialisable form of one parsed command.
type CommandSummary struct {
	Executable    string            `json:"executable"`
	Args          []string          `json:"args"`
	ReceivingPipe bool              `json:"receiving_pipe,omitempty"`
	Redirects     []RedirectSummary `json:"redirects,omitempty"`
}

// RedirectSummary is the serialisable form of a file redirection.
type RedirectSummary struct {
	Target    string `json:"target"`
	Direction string `json:"direction"`
	Append    bool   `json:"append,omitempty"`
}

// SummarizeCommands converts a parsed command list for output.
func SummarizeCommands(list shell.CommandList) []CommandSummary {
	if len(list) == 0 {
		return nil
	}
	out := make([]CommandSummary, len(list))
	for i, cmd := range list {
		summary := CommandSummary{
			Executable:    cmd.Executable,
			Args:          cmd.Args,
			ReceivingPipe: cmd.ReceivingPipe,
		}
		for _, r := range cmd.FileRedirects {
			summary.Redirects = append(summary.Redirects, RedirectSummary{
				Target:    r.Target,
				Direction: r.Direction.String(),
				Append:    r.Append,
			})
		}
		out[i] = summary
	}
	return out
}

func validateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	if strings.ContainsRune(command, 0) {
		return ErrCommandHasNUL
	}
	return nil
}
