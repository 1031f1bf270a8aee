// Package safety decides whether a shell command line may run on behalf of an agent.
//
// A command line is parsed by package shell and every resulting command is matched
// against a hierarchical allowlist (CommandPermissions). File arguments must stay
// inside the project, must not be hidden and must not be gitignored. Working
// directory changes made by cd are tracked across the chain, and a single denied
// command denies the whole chain.
package safety

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural allowlist problems.
// These errors can be checked using errors.Is() on a *ConfigError.
var (
	// ErrRestNotLast indicates a RestFiles or RestAny spec that is not the last spec of its pattern.
	ErrRestNotLast = errors.New("rest spec must be the last spec of a pattern")

	// ErrRestInGroup indicates a RestFiles or RestAny spec nested inside a Group.
	ErrRestInGroup = errors.New("rest spec is not allowed inside a group")

	// ErrInvalidPattern indicates a Pattern spec whose regular expression does not compile.
	ErrInvalidPattern = errors.New("invalid argument pattern")

	// ErrUnknownArgSpec indicates an ArgSpec implementation the matcher does not know.
	ErrUnknownArgSpec = errors.New("unknown argument spec")

	// ErrEmptySubCommand indicates a subcommand keyed by the empty string.
	ErrEmptySubCommand = errors.New("subcommand name cannot be empty")

	// ErrEmptyGroup indicates a Group without inner specs.
	ErrEmptyGroup = errors.New("group must contain at least one spec")
)

// ConfigError is a structural problem in an allowlist. It is never caused by the
// command being checked.
type ConfigError struct {
	Location string // e.g. `git push: args[0][2]`
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Reason prefixes used in denials.
const (
	// ReasonParseFailed prefixes denials caused by a *shell.LexerError or *shell.ParserError.
	ReasonParseFailed = "failed to parse command: "

	// ReasonInvalidConfig prefixes denials caused by a *ConfigError.
	ReasonInvalidConfig = "invalid permission configuration: "
)

// devNull is accepted as a redirect target without path checks.
const devNull = "/dev/null"
