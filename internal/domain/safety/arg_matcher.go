package safety

import (
	"fmt"
	"strings"
)

// failure records why an attempt stopped matching and at which argument index.
// A failure further into the argument list is more specific.
type failure struct {
	pos    int
	reason string
}

func (f failure) set() bool { return f.reason != "" }

// furthest returns the more specific of a and b; ties keep a.
func furthest(a, b failure) failure {
	if !a.set() || (b.set() && b.pos > a.pos) {
		return b
	}
	return a
}

// match is the outcome of matching specs from some argument index. On success
// next is the index of the first unconsumed argument. fail may be set even on
// success: it then holds the deepest failure seen inside optional groups, which
// is the best explanation if the enclosing pattern fails later.
type match struct {
	ok   bool
	next int
	fail failure
}

func matched(next int, hint failure) match {
	return match{ok: true, next: next, fail: hint}
}

func failed(pos int, format string, args ...any) match {
	return match{fail: failure{pos: pos, reason: fmt.Sprintf(format, args...)}}
}

// matchArgsPattern matches the whole argument list against one pattern. Each
// call starts from a fresh cursor, so alternatives never share state. The error
// is non-nil only for structural problems in the pattern.
func (c *checkContext) matchArgsPattern(pattern []ArgSpec, args []string) (match, error) {
	if err := validatePattern("pattern", pattern); err != nil {
		return match{}, err
	}

	pos := 0
	var hint failure
	for _, spec := range pattern {
		m, err := c.matchSpec(spec, args, pos)
		if err != nil {
			return match{}, err
		}
		hint = furthest(hint, m.fail)
		if !m.ok {
			return match{fail: hint}, nil
		}
		pos = m.next
	}

	if pos < len(args) {
		extra := failed(pos, "unexpected extra arguments: %s", strings.Join(args[pos:], " "))
		return match{fail: furthest(hint, extra.fail)}, nil
	}
	return matched(pos, hint), nil
}

// matchSpec matches a single spec at args[pos:].
func (c *checkContext) matchSpec(spec ArgSpec, args []string, pos int) (match, error) {
	switch s := spec.(type) {
	case Literal:
		if pos >= len(args) {
			return failed(pos, "missing argument %q", s.Value), nil
		}
		if args[pos] != s.Value {
			return failed(pos, "argument %q is not allowed here (expected %q)", args[pos], s.Value), nil
		}
		return matched(pos+1, failure{}), nil

	case File:
		if pos >= len(args) {
			return failed(pos, "missing file argument"), nil
		}
		if reason := c.checkFileArg(args[pos]); reason != "" {
			return failed(pos, "%s", reason), nil
		}
		return matched(pos+1, failure{}), nil

	case RestFiles:
		for i := pos; i < len(args); i++ {
			if reason := c.checkFileArg(args[i]); reason != "" {
				return failed(i, "%s", reason), nil
			}
		}
		return matched(len(args), failure{}), nil

	case RestAny:
		return matched(len(args), failure{}), nil

	case Any:
		if pos >= len(args) {
			return failed(pos, "missing argument"), nil
		}
		return matched(pos+1, failure{}), nil

	case Pattern:
		re, err := compileArgPattern(s.Regex)
		if err != nil {
			return match{}, &ConfigError{Location: "pattern", Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
		}
		if pos >= len(args) {
			return failed(pos, "missing argument matching %s", s.Describe()), nil
		}
		if !re.MatchString(args[pos]) {
			return failed(pos, "argument %q does not match %s", args[pos], s.Describe()), nil
		}
		return matched(pos+1, failure{}), nil

	case Group:
		var m match
		var err error
		if s.AnyOrder {
			m, err = c.matchGroupAnyOrder(s, args, pos)
		} else {
			m, err = c.matchGroupSequential(s, args, pos)
		}
		if err != nil {
			return match{}, err
		}
		if !m.ok && s.Optional {
			return matched(pos, m.fail), nil
		}
		return m, nil

	default:
		return match{}, &ConfigError{Location: "pattern", Err: fmt.Errorf("%w: %T", ErrUnknownArgSpec, spec)}
	}
}

// matchGroupSequential matches the group's specs strictly in order.
func (c *checkContext) matchGroupSequential(g Group, args []string, pos int) (match, error) {
	cur := pos
	var hint failure
	for _, spec := range g.Specs {
		m, err := c.matchSpec(spec, args, cur)
		if err != nil {
			return match{}, err
		}
		hint = furthest(hint, m.fail)
		if !m.ok {
			return match{fail: hint}, nil
		}
		cur = m.next
	}
	return matched(cur, hint), nil
}

// matchGroupAnyOrder repeatedly tries every not yet matched spec at the current
// position and takes the first one that consumes at least one argument, until no
// spec makes progress. All required specs must have matched by then.
//
// remaining is rebuilt on every successful match instead of being edited in place.
func (c *checkContext) matchGroupAnyOrder(g Group, args []string, pos int) (match, error) {
	remaining := make([]int, len(g.Specs))
	for i := range remaining {
		remaining[i] = i
	}

	cur := pos
	var hint failure
	for progress := true; progress && cur < len(args); {
		progress = false
		for _, idx := range remaining {
			m, err := c.matchSpec(g.Specs[idx], args, cur)
			if err != nil {
				return match{}, err
			}
			hint = furthest(hint, m.fail)
			if m.ok && m.next > cur {
				cur = m.next
				remaining = without(remaining, idx)
				progress = true
				break
			}
		}
	}

	for _, idx := range remaining {
		spec := g.Specs[idx]
		if isOptional(spec) {
			continue
		}
		missing := failed(cur, "missing %s", spec.Describe())
		if cur < len(args) {
			missing = failed(cur, "argument %q is not allowed here (expected %s)", args[cur], spec.Describe())
		}
		return match{fail: furthest(missing.fail, hint)}, nil
	}
	return matched(cur, hint), nil
}

func without(indices []int, drop int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i != drop {
			out = append(out, i)
		}
	}
	return out
}
