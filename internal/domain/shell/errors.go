package shell

import (
	"errors"
	"fmt"
)

// Sentinel errors for lexing and parsing.
// Use errors.Is on a *LexerError or *ParserError to classify the failure.
var (
	// ErrUnsupportedFeature indicates a shell construct that is deliberately not interpreted.
	ErrUnsupportedFeature = errors.New("unsupported shell feature")

	// ErrUnterminatedQuote indicates a single or double quote without its closing quote.
	ErrUnterminatedQuote = errors.New("unterminated quote")

	// ErrMissingRedirectTarget indicates a file redirection with no word after it.
	ErrMissingRedirectTarget = errors.New("missing redirect target")

	// ErrUnexpectedToken indicates a token stream that does not form a command.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrInterpretationMismatch indicates that bash would run something other
	// than the parsed command list. Returned by CrossCheck.
	ErrInterpretationMismatch = errors.New("bash would interpret the command differently")
)

// LexerError reports why a command line could not be tokenized.
type LexerError struct {
	Pos     int    // byte offset in the input
	Feature string // name of the rejected construct, empty for quoting errors
	Kind    error  // one of the sentinel errors above
}

func (e *LexerError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Kind, e.Pos, e.Feature)
	}
	return fmt.Sprintf("%s at position %d", e.Kind, e.Pos)
}

func (e *LexerError) Unwrap() error {
	return e.Kind
}

func unsupported(pos int, feature string) *LexerError {
	return &LexerError{Pos: pos, Feature: feature, Kind: ErrUnsupportedFeature}
}

// ParserError reports a token stream that does not form a valid command list.
type ParserError struct {
	Index int // index of the offending token
	Msg   string
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("parse error at token %d: %s", e.Index, e.Msg)
}

func (e *ParserError) Unwrap() error {
	return ErrUnexpectedToken
}
