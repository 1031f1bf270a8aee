// Package shell turns a raw command line into a structured list of commands.
//
// Only a small, statically analysable subset of POSIX shell is understood: words with
// quoting and escapes, the sequencing operators &&, || and ;, pipes, and file
// redirections. Anything the caller could not reason about safely (substitutions,
// expansions, subshells, brace groups, background jobs, here-documents) is rejected
// by the lexer with a *LexerError rather than interpreted.
package shell

import "fmt"

// TokenType identifies the kind of a lexical token.
type TokenType int

const (
	// TokenWord is a command name or argument after quote removal.
	TokenWord TokenType = iota
	// TokenOperator is one of &&, ||, | or ;.
	TokenOperator
	// TokenRedirect is a redirection with its target folded in, e.g. "2>/dev/null".
	TokenRedirect
	// TokenEOF terminates every token stream.
	TokenEOF
)

// String returns the lowercase name of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenWord:
		return "word"
	case TokenOperator:
		return "operator"
	case TokenRedirect:
		return "redirect"
	case TokenEOF:
		return "eof"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is a single lexical unit.
type Token struct {
	Type  TokenType
	Value string
}

// String renders the token for diagnostics.
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "eof"
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// Operator values.
const (
	OpAnd       = "&&"
	OpOr        = "||"
	OpPipe      = "|"
	OpSemicolon = ";"
)

// operators is ordered longest first so "||" wins over "|".
var operators = []string{OpAnd, OpOr, OpPipe, OpSemicolon}
