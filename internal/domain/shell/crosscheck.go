package shell

import (
	"fmt"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CrossCheck parses input again with the mvdan.cc/sh bash parser and reports
// whether it yields the same commands, arguments, pipes and file redirections
// as list. Input bash cannot parse at all is not an error here: the
// lexer already rejects every construct it does not understand, and it accepts
// a few separator sequences (";;", "| ;") that bash refuses.
func CrossCheck(input string, list CommandList) error {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(input), "")
	if err != nil {
		return nil
	}

	var bash CommandList
	for _, stmt := range file.Stmts {
		if err := flattenStmt(stmt, false, &bash); err != nil {
			return err
		}
	}

	if len(bash) != len(list) {
		return fmt.Errorf("%w: %d commands instead of %d", ErrInterpretationMismatch, len(bash), len(list))
	}
	for i := range list {
		if !sameCommand(list[i], bash[i]) {
			return fmt.Errorf("%w: command %d runs as %q", ErrInterpretationMismatch, i+1,
				strings.Join(append([]string{bash[i].Executable}, bash[i].Args...), " "))
		}
	}
	return nil
}

func flattenStmt(stmt *syntax.Stmt, receiving bool, out *CommandList) error {
	if stmt.Negated || stmt.Background || stmt.Coprocess {
		return fmt.Errorf("%w: statement modifier", ErrInterpretationMismatch)
	}

	switch cmd := stmt.Cmd.(type) {
	case *syntax.BinaryCmd:
		if len(stmt.Redirs) > 0 {
			return fmt.Errorf("%w: redirection of a command list", ErrInterpretationMismatch)
		}
		if err := flattenStmt(cmd.X, receiving, out); err != nil {
			return err
		}
		return flattenStmt(cmd.Y, cmd.Op == syntax.Pipe || cmd.Op == syntax.PipeAll, out)

	case *syntax.CallExpr:
		if len(cmd.Assigns) > 0 {
			return fmt.Errorf("%w: variable assignment", ErrInterpretationMismatch)
		}
		if len(cmd.Args) == 0 {
			return fmt.Errorf("%w: redirection without command", ErrInterpretationMismatch)
		}
		words := make([]string, len(cmd.Args))
		for i, w := range cmd.Args {
			lit, err := wordLiteral(w)
			if err != nil {
				return err
			}
			words[i] = lit
		}
		parsed := ParsedCommand{Executable: words[0], Args: words[1:], ReceivingPipe: receiving}
		for _, r := range stmt.Redirs {
			fr, ok, err := fileRedirect(r)
			if err != nil {
				return err
			}
			if ok {
				parsed.FileRedirects = append(parsed.FileRedirects, fr)
			}
		}
		*out = append(*out, parsed)
		return nil

	default:
		return fmt.Errorf("%w: compound command %T", ErrInterpretationMismatch, stmt.Cmd)
	}
}

func fileRedirect(r *syntax.Redirect) (FileRedirect, bool, error) {
	var fr FileRedirect
	switch r.Op {
	case syntax.DplIn, syntax.DplOut:
		return fr, false, nil
	case syntax.RdrOut:
		fr.Direction = RedirectOutput
	case syntax.AppOut:
		fr.Direction, fr.Append = RedirectOutput, true
	case syntax.RdrIn:
		fr.Direction = RedirectInput
	default:
		return fr, false, fmt.Errorf("%w: redirection %s", ErrInterpretationMismatch, r.Op)
	}

	target, err := wordLiteral(r.Word)
	if err != nil {
		return fr, false, err
	}
	fr.Target = target
	return fr, true, nil
}

// wordLiteral performs quote removal on a word made only of literal and quoted
// parts. Any expansion is a mismatch, as the lexer never lets one through.
func wordLiteral(w *syntax.Word) (string, error) {
	var b strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			unescape(&b, p.Value, false)
		case *syntax.SglQuoted:
			if p.Dollar {
				return "", fmt.Errorf("%w: ANSI-C quoting", ErrInterpretationMismatch)
			}
			b.WriteString(p.Value)
		case *syntax.DblQuoted:
			if p.Dollar {
				return "", fmt.Errorf("%w: locale quoting", ErrInterpretationMismatch)
			}
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", fmt.Errorf("%w: expansion %T", ErrInterpretationMismatch, inner)
				}
				unescape(&b, lit.Value, true)
			}
		default:
			return "", fmt.Errorf("%w: expansion %T", ErrInterpretationMismatch, part)
		}
	}
	return b.String(), nil
}

// unescape writes raw source text with backslash escapes removed. Inside double
// quotes a backslash only escapes $, `, ", \ and newline.
func unescape(b *strings.Builder, raw string, inDouble bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			b.WriteByte(raw[i])
			continue
		}
		if i+1 >= len(raw) {
			continue
		}
		next := raw[i+1]
		switch {
		case next == '\n':
			i++
		case !inDouble || strings.IndexByte("$`\"\\", next) >= 0:
			b.WriteByte(next)
			i++
		default:
			b.WriteByte('\\')
		}
	}
}

func sameCommand(a, b ParsedCommand) bool {
	return a.Executable == b.Executable &&
		a.ReceivingPipe == b.ReceivingPipe &&
		slices.Equal(a.Args, b.Args) &&
		slices.Equal(a.FileRedirects, b.FileRedirects)
}
