package safety

import (
	"code-agent-guard/internal/domain/port"
	"code-agent-guard/internal/domain/shell"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Options carries everything a check needs besides the allowlist.
type Options struct {
	// Cwd is the logical working directory the command line starts in.
	Cwd AbsolutePath

	// ProjectDir bounds every file argument. Defaults to Cwd.
	ProjectDir AbsolutePath

	// SkillsPaths are trusted directories whose scripts may run without matching.
	SkillsPaths []AbsolutePath

	// Gitignore reports ignored project-relative paths. Nil ignores nothing.
	Gitignore port.Gitignore

	// Files is used to confirm skills scripts exist. Nil disables skills detection.
	Files port.FileInspector

	// HomeDir expands "~". Defaults to the current user's home directory.
	HomeDir AbsolutePath
}

// ValidationResult is the verdict for one command line. Reason is empty when
// Allowed is true.
type ValidationResult struct {
	Allowed bool
	Reason  string
}

func allow() ValidationResult { return ValidationResult{Allowed: true} }

func deny(format string, args ...any) ValidationResult {
	return ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// checkContext is the state of one check. cwd moves with cd; everything else is
// fixed for the whole command line.
type checkContext struct {
	projectDir AbsolutePath
	cwd        AbsolutePath
	home       AbsolutePath
	skills     []AbsolutePath
	gitignore  port.Gitignore
	files      port.FileInspector
}

func newCheckContext(opts Options) *checkContext {
	c := &checkContext{
		projectDir: opts.ProjectDir,
		cwd:        opts.Cwd,
		home:       opts.HomeDir,
		skills:     opts.SkillsPaths,
		gitignore:  opts.Gitignore,
		files:      opts.Files,
	}
	if c.projectDir == "" {
		c.projectDir = c.cwd
	}
	if c.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			if abs, err := NewAbsolutePath(home); err == nil {
				c.home = abs
			}
		}
	}
	return c
}

// IsCommandAllowedByConfig parses command and checks the result against perms.
// Lexer and parser errors become denials prefixed with ReasonParseFailed, as
// does an allowed line that bash would read differently (see shell.CrossCheck).
func IsCommandAllowedByConfig(command string, perms CommandPermissions, opts Options) ValidationResult {
	list, err := shell.ParseCommand(command)
	if err != nil {
		return deny("%s%v", ReasonParseFailed, err)
	}
	return crossChecked(command, list, CheckCommandListPermissions(list, perms, opts))
}

// crossChecked turns an allowed result into a denial when bash parses command
// into something other than list. Denials pass through unchanged.
func crossChecked(command string, list shell.CommandList, result ValidationResult) ValidationResult {
	if !result.Allowed {
		return result
	}
	if err := shell.CrossCheck(command, list); err != nil {
		return deny("%s%v", ReasonParseFailed, err)
	}
	return result
}

// CheckCommandListPermissions checks every command of list from left to right
// and denies the whole list with the reason of the first denied command.
//
// cd changes the working directory that later commands resolve paths against,
// unless it is part of a pipeline, where the shell runs it in a subshell.
func CheckCommandListPermissions(list shell.CommandList, perms CommandPermissions, opts Options) ValidationResult {
	result, _ := checkCommandList(list, perms, opts)
	return result
}

// checkCommandList is CheckCommandListPermissions that also returns the working
// directory the shell ends up in when the list is allowed.
func checkCommandList(list shell.CommandList, perms CommandPermissions, opts Options) (ValidationResult, AbsolutePath) {
	if opts.Cwd == "" {
		return deny("working directory is not set"), ""
	}
	c := newCheckContext(opts)

	for i, cmd := range list {
		if cmd.Executable == "cd" {
			if reason := c.checkRedirects(cmd.FileRedirects); reason != "" {
				return deny("cd: %s", reason), ""
			}
			target, reason := c.changeDir(cmd.Args)
			if reason != "" {
				return deny("cd: %s", reason), ""
			}
			inPipeline := cmd.ReceivingPipe || (i+1 < len(list) && list[i+1].ReceivingPipe)
			if !inPipeline {
				c.cwd = target
			}
			continue
		}

		if !c.isSkillsScriptExecution(cmd) {
			if result := c.checkCommand(cmd, perms); !result.Allowed {
				return result, ""
			}
		}

		if reason := c.checkRedirects(cmd.FileRedirects); reason != "" {
			return deny("%s: %s", cmd.Executable, reason), ""
		}
	}
	return allow(), c.cwd
}

// changeDir computes the target of cd. Forms the simulated working directory
// cannot follow are rejected.
func (c *checkContext) changeDir(args []string) (AbsolutePath, string) {
	switch {
	case len(args) == 0:
		if c.home == "" {
			return "", "home directory is unknown"
		}
		return c.home, ""
	case len(args) > 1:
		return "", fmt.Sprintf("too many arguments: %s", strings.Join(args, " "))
	case args[0] == "-":
		return "", `"cd -" is not supported`
	}

	expanded, err := expandHome(UnresolvedPath(args[0]), c.home)
	if err != nil {
		return "", fmt.Sprintf("path %q cannot be resolved: %v", args[0], err)
	}
	return c.cwd.Resolve(expanded), ""
}

// checkCommand matches one command against the allowlist.
func (c *checkContext) checkCommand(cmd shell.ParsedCommand, perms CommandPermissions) ValidationResult {
	spec, ok := perms[cmd.Executable]
	if !ok {
		return deny("command %q is not allowed", cmd.Executable)
	}

	name := cmd.Executable
	args := cmd.Args
	for len(args) > 0 {
		sub, ok := spec.SubCommands[args[0]]
		if !ok {
			break
		}
		name += " " + args[0]
		spec = sub
		args = args[1:]
	}

	if spec.AllowAll {
		return allow()
	}
	if len(spec.Args) == 0 {
		if len(args) == 0 {
			return allow()
		}
		if len(spec.SubCommands) > 0 {
			return deny("%s: subcommand %q is not allowed (allowed: %s)", name, args[0], strings.Join(spec.SubCommandNames(), ", "))
		}
		return deny("%s: arguments are not allowed: %s", name, strings.Join(args, " "))
	}

	var best failure
	for _, pattern := range spec.Args {
		m, err := c.matchArgsPattern(pattern, args)
		if err != nil {
			return invalidConfig(name, err)
		}
		if m.ok {
			return allow()
		}
		best = furthest(best, m.fail)
	}
	return deny("%s: %s", name, best.reason)
}

func invalidConfig(name string, err error) ValidationResult {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return deny("%s%s: %v", ReasonInvalidConfig, name, cfgErr)
	}
	return deny("%s%v", ReasonInvalidConfig, err)
}
