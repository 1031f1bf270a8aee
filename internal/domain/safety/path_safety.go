package safety

import (
	"code-agent-guard/internal/domain/shell"
	"fmt"
	"strings"
)

// expansionChars are characters the shell expands in unquoted words. A file
// argument holding them could name paths other than the one that was checked.
const expansionChars = "*?[$"

// isPathSafe checks a file argument against the project boundary and returns an
// empty string when it is safe, or the denial reason otherwise.
//
// The checks run in order and stop at the first failure: the resolved path must
// be inside the project, no component of the project-relative path may start
// with ".", and the gitignore matcher must not ignore it. The project root
// itself skips the last two checks.
func (c *checkContext) isPathSafe(arg string) string {
	expanded, err := expandHome(UnresolvedPath(arg), c.home)
	if err != nil {
		return fmt.Sprintf("path %q cannot be resolved: %v", arg, err)
	}

	resolved := c.cwd.Resolve(expanded)
	rel, ok := resolved.RelativeTo(c.projectDir)
	if !ok {
		return fmt.Sprintf("path %q is outside project directory", arg)
	}

	if !rel.IsRoot() {
		for _, segment := range rel.Segments() {
			if strings.HasPrefix(segment, ".") {
				return fmt.Sprintf("path %q is a hidden directory or file", arg)
			}
		}
		if c.gitignore != nil && c.gitignore.Ignores(string(rel)) {
			return fmt.Sprintf("path %q is gitignored", arg)
		}
	}

	if strings.ContainsAny(arg, expansionChars) {
		return fmt.Sprintf("path %q contains shell expansion characters", arg)
	}
	return ""
}

// checkFileArg is isPathSafe for arguments matched by File and RestFiles. An
// argument starting with "-" is an option to the command, never a file.
func (c *checkContext) checkFileArg(arg string) string {
	if strings.HasPrefix(arg, "-") {
		return fmt.Sprintf("argument %q is an option, not a file", arg)
	}
	return c.isPathSafe(arg)
}

// checkRedirects applies path safety to every file redirection target.
func (c *checkContext) checkRedirects(redirects []shell.FileRedirect) string {
	for _, r := range redirects {
		if r.Target == devNull {
			continue
		}
		if reason := c.isPathSafe(r.Target); reason != "" {
			return fmt.Sprintf("%s redirection: %s", r.Direction, reason)
		}
	}
	return ""
}
