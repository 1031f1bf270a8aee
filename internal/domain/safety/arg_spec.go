package safety

import (
	"fmt"
	"strings"
)

// ArgSpec is one element of an argument pattern. The set of implementations is
// closed: Literal, File, RestFiles, RestAny, Any, Pattern and Group.
type ArgSpec interface {
	argSpec()
	// Describe renders the spec for denial reasons and listings.
	Describe() string
}

// Literal matches one argument equal to Value.
type Literal struct {
	Value string
}

// File matches one argument that resolves to a safe path.
type File struct{}

// RestFiles matches all remaining arguments, each of which must be a safe path.
// It must be the last spec of a pattern and may not appear inside a Group.
type RestFiles struct{}

// RestAny matches all remaining arguments. It must be the last spec of a pattern
// and may not appear inside a Group.
type RestAny struct{}

// Any matches exactly one argument of any content.
type Any struct{}

// Pattern matches one argument fully matching the regular expression Regex.
// The expression is anchored automatically.
type Pattern struct {
	Regex string
}

// Group matches a sub-sequence of specs, in order or, with AnyOrder, in any order.
// An Optional group that does not match consumes no arguments.
type Group struct {
	Specs    []ArgSpec
	Optional bool
	AnyOrder bool
}

func (Literal) argSpec()   {}
func (File) argSpec()      {}
func (RestFiles) argSpec() {}
func (RestAny) argSpec()   {}
func (Any) argSpec()       {}
func (Pattern) argSpec()   {}
func (Group) argSpec()     {}

func (s Literal) Describe() string { return fmt.Sprintf("%q", s.Value) }
func (File) Describe() string      { return "<file>" }
func (RestFiles) Describe() string { return "<files...>" }
func (RestAny) Describe() string   { return "<args...>" }
func (Any) Describe() string       { return "<arg>" }
func (s Pattern) Describe() string { return "/" + s.Regex + "/" }

func (g Group) Describe() string {
	parts := make([]string, len(g.Specs))
	for i, s := range g.Specs {
		parts[i] = s.Describe()
	}
	sep := " "
	if g.AnyOrder {
		sep = " & "
	}
	body := strings.Join(parts, sep)
	if g.Optional {
		return "[" + body + "]"
	}
	return "(" + body + ")"
}

// Lit returns a Literal spec.
func Lit(value string) ArgSpec { return Literal{Value: value} }

// FileArg returns a File spec.
func FileArg() ArgSpec { return File{} }

// RestFilesArg returns a RestFiles spec.
func RestFilesArg() ArgSpec { return RestFiles{} }

// RestAnyArg returns a RestAny spec.
func RestAnyArg() ArgSpec { return RestAny{} }

// AnyArg returns an Any spec.
func AnyArg() ArgSpec { return Any{} }

// Regex returns a Pattern spec.
func Regex(expr string) ArgSpec { return Pattern{Regex: expr} }

// Seq returns a required, ordered Group.
func Seq(specs ...ArgSpec) ArgSpec { return Group{Specs: specs} }

// Optional returns an optional, ordered Group.
func Optional(specs ...ArgSpec) ArgSpec { return Group{Specs: specs, Optional: true} }

// AnyOrder returns a required Group whose specs may appear in any order.
func AnyOrder(specs ...ArgSpec) ArgSpec { return Group{Specs: specs, AnyOrder: true} }

// OptionalAnyOrder returns an optional Group whose specs may appear in any order.
// Every inner spec that is not itself optional must match for the group to match.
func OptionalAnyOrder(specs ...ArgSpec) ArgSpec {
	return Group{Specs: specs, Optional: true, AnyOrder: true}
}

// Args collects alternative patterns for CommandSpec.Args.
func Args(patterns ...[]ArgSpec) [][]ArgSpec { return patterns }

// P builds a single pattern.
func P(specs ...ArgSpec) []ArgSpec {
	if specs == nil {
		return []ArgSpec{}
	}
	return specs
}

// DescribePattern renders a whole pattern, e.g. `"-n" /\d+/ <files...>`.
func DescribePattern(pattern []ArgSpec) string {
	if len(pattern) == 0 {
		return "(no arguments)"
	}
	parts := make([]string, len(pattern))
	for i, s := range pattern {
		parts[i] = s.Describe()
	}
	return strings.Join(parts, " ")
}

func isRest(s ArgSpec) bool {
	switch s.(type) {
	case RestFiles, RestAny:
		return true
	}
	return false
}

func isOptional(s ArgSpec) bool {
	g, ok := s.(Group)
	return ok && g.Optional
}
