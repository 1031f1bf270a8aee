package safety

import (
	"code-agent-guard/internal/domain/shell"
	"strings"
)

var (
	shellScriptFlags  = map[string]bool{"-e": true, "-u": true, "-x": true, "-v": true}
	pythonScriptFlags = map[string]bool{
		"-u": true, "-B": true, "-O": true, "-OO": true, "-E": true, "-I": true, "-q": true,
	}
	nodeScriptFlags = map[string]bool{"--no-warnings": true, "--enable-source-maps": true}
)

// scriptInterpreters are the runners whose first script argument may be a skills
// script, each with the options allowed before the script. Only options that
// take no value and do not change which code runs are listed: stdin (-s, -),
// interactive (-i), inline code (-c, -e for node, -m) and preload (-r, --require,
// --import, --loader) options all disqualify the command. Names are matched
// exactly; "/usr/bin/python3" is not an interpreter here.
var scriptInterpreters = map[string]map[string]bool{
	"bash":    shellScriptFlags,
	"sh":      shellScriptFlags,
	"zsh":     shellScriptFlags,
	"python":  pythonScriptFlags,
	"python2": pythonScriptFlags,
	"python3": pythonScriptFlags,
	"node":    nodeScriptFlags,
	"nodejs":  nodeScriptFlags,
	"tsx":     nodeScriptFlags,
}

// isSkillsScriptExecution reports whether cmd runs an existing regular file that
// lives under one of the skills directories, either directly or through a known
// interpreter (including "npx tsx" and "pkgx <interpreter>").
func (c *checkContext) isSkillsScriptExecution(cmd shell.ParsedCommand) bool {
	if len(c.skills) == 0 || c.files == nil {
		return false
	}

	interpreter, args := cmd.Executable, cmd.Args
	switch {
	case interpreter == "npx" || interpreter == "pkgx":
		if len(args) == 0 || (interpreter == "npx" && args[0] != "tsx") {
			return false
		}
		interpreter, args = args[0], args[1:]
	case strings.Contains(interpreter, "/"):
		return c.isSkillsScript(interpreter)
	}

	// Without a slash the shell searches PATH, not the working directory, so an
	// unknown bare name is never a script.
	allowed, ok := scriptInterpreters[interpreter]
	if !ok {
		return false
	}
	script, ok := scriptArgument(args, allowed)
	if !ok {
		return false
	}
	return c.isSkillsScript(script)
}

// scriptArgument returns the first argument that is not an option. Any option
// outside allowed means the script is not what the interpreter runs.
func scriptArgument(args []string, allowed map[string]bool) (string, bool) {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			return arg, true
		}
		if !allowed[arg] {
			return "", false
		}
	}
	return "", false
}

func (c *checkContext) isSkillsScript(p string) bool {
	expanded, err := expandHome(UnresolvedPath(p), c.home)
	if err != nil {
		return false
	}
	resolved := c.cwd.Resolve(expanded)

	for _, dir := range c.skills {
		rel, ok := resolved.RelativeTo(dir)
		if !ok || rel.IsRoot() {
			continue
		}
		if c.files.IsRegularFile(resolved.String()) {
			return true
		}
	}
	return false
}
