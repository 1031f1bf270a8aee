package safety

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// CommandSpec describes what an executable (or one of its subcommands) accepts.
//
// Matching descends into SubCommands while the next argument names one. At the
// node reached, AllowAll accepts any remaining arguments; otherwise the remaining
// arguments must fully match one of the alternative patterns in Args. A nil Args
// accepts only an empty argument list.
type CommandSpec struct {
	SubCommands map[string]CommandSpec
	Args        [][]ArgSpec
	AllowAll    bool
}

// CommandPermissions maps an executable name to its spec. It is the allowlist.
// Values are treated as immutable once handed to the engine.
type CommandPermissions map[string]CommandSpec

// Executables returns the configured executable names in sorted order.
func (p CommandPermissions) Executables() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubCommandNames returns the spec's subcommand keys in sorted order.
func (s CommandSpec) SubCommandNames() []string {
	names := make([]string, 0, len(s.SubCommands))
	for name := range s.SubCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MergePermissions returns a new allowlist holding base overlaid by each overlay in
// order. An overlay entry replaces the base entry for the same executable entirely.
func MergePermissions(base CommandPermissions, overlays ...CommandPermissions) CommandPermissions {
	merged := make(CommandPermissions, len(base))
	for name, spec := range base {
		merged[name] = spec
	}
	for _, overlay := range overlays {
		for name, spec := range overlay {
			merged[name] = spec
		}
	}
	return merged
}

// ValidatePermissions reports every structural problem in perms as a joined
// error of *ConfigError values, or nil when the allowlist is well formed.
func ValidatePermissions(perms CommandPermissions) error {
	var errs []error
	for _, name := range perms.Executables() {
		errs = append(errs, validateSpec(name, perms[name])...)
	}
	return errors.Join(errs...)
}

func validateSpec(location string, spec CommandSpec) []error {
	var errs []error
	for i, pattern := range spec.Args {
		if err := validatePattern(fmt.Sprintf("%s: args[%d]", location, i), pattern); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range spec.SubCommandNames() {
		if sub == "" {
			errs = append(errs, &ConfigError{Location: location, Err: ErrEmptySubCommand})
			continue
		}
		errs = append(errs, validateSpec(location+" "+sub, spec.SubCommands[sub])...)
	}
	return errs
}

// validatePattern checks the structural rules of one pattern and returns the
// first violation.
func validatePattern(location string, pattern []ArgSpec) error {
	for i, spec := range pattern {
		at := fmt.Sprintf("%s[%d]", location, i)
		if isRest(spec) && i != len(pattern)-1 {
			return &ConfigError{Location: at, Err: ErrRestNotLast}
		}
		if err := validateArgSpec(at, spec, false); err != nil {
			return err
		}
	}
	return nil
}

func validateArgSpec(location string, spec ArgSpec, inGroup bool) error {
	switch s := spec.(type) {
	case Literal, File, Any:
		return nil
	case RestFiles, RestAny:
		if inGroup {
			return &ConfigError{Location: location, Err: ErrRestInGroup}
		}
		return nil
	case Pattern:
		if _, err := compileArgPattern(s.Regex); err != nil {
			return &ConfigError{Location: location, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
		}
		return nil
	case Group:
		if len(s.Specs) == 0 {
			return &ConfigError{Location: location, Err: ErrEmptyGroup}
		}
		for i, inner := range s.Specs {
			if err := validateArgSpec(fmt.Sprintf("%s.%d", location, i), inner, true); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ConfigError{Location: location, Err: fmt.Errorf("%w: %T", ErrUnknownArgSpec, spec)}
	}
}

// argPatterns caches compiled, anchored Pattern expressions. Compiled
// expressions are safe for concurrent use.
var argPatterns sync.Map // map[string]*regexp.Regexp

func compileArgPattern(expr string) (*regexp.Regexp, error) {
	if re, ok := argPatterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, err
	}
	argPatterns.Store(expr, re)
	return re, nil
}
