package safety

import (
	"code-agent-guard/internal/domain/shell"
	"errors"
	"fmt"
)

// ErrPermissionsRequired is returned by NewCommandValidator without an allowlist.
var ErrPermissionsRequired = errors.New("command permissions are required")

// Verdict is a ValidationResult together with what was learnt while producing it.
type Verdict struct {
	ValidationResult

	// IsDangerous is set for denied commands that match a DangerousPattern.
	// Allowed commands are never flagged.
	IsDangerous bool

	// Danger names the matched DangerousPattern.
	Danger string

	// Commands is the parsed command line. It is nil when parsing failed.
	Commands shell.CommandList

	// Cwd is the working directory after an allowed command line has run,
	// following every cd outside a pipeline. It is empty on denial.
	Cwd AbsolutePath
}

// CommandValidator checks command lines against one allowlist.
//
// This interface decouples callers (the CLI, the tool gate, the check service)
// from the engine, so they can be tested with a stub validator.
type CommandValidator interface {
	// Validate checks command with opts.Cwd as the starting directory.
	Validate(command string, opts Options) Verdict
}

// CommandValidatorImpl is the standard CommandValidator.
type CommandValidatorImpl struct {
	perms CommandPermissions
}

var _ CommandValidator = (*CommandValidatorImpl)(nil)

// NewCommandValidator validates perms once and returns a validator using it.
func NewCommandValidator(perms CommandPermissions) (*CommandValidatorImpl, error) {
	if perms == nil {
		return nil, ErrPermissionsRequired
	}
	if err := ValidatePermissions(perms); err != nil {
		return nil, fmt.Errorf("invalid command permissions: %w", err)
	}
	return &CommandValidatorImpl{perms: perms}, nil
}

// Validate implements CommandValidator.Validate.
func (v *CommandValidatorImpl) Validate(command string, opts Options) Verdict {
	list, err := shell.ParseCommand(command)
	if err != nil {
		return Verdict{ValidationResult: deny("%s%v", ReasonParseFailed, err)}
	}

	result, cwd := checkCommandList(list, v.perms, opts)
	if checked := crossChecked(command, list, result); checked != result {
		result, cwd = checked, ""
	}
	verdict := Verdict{
		ValidationResult: result,
		Commands:         list,
		Cwd:              cwd,
	}
	if !verdict.Allowed {
		verdict.IsDangerous, verdict.Danger = IsDangerousCommand(list)
	}
	return verdict
}

// Permissions returns the allowlist the validator checks against.
func (v *CommandValidatorImpl) Permissions() CommandPermissions {
	return v.perms
}
