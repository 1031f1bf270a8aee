package shell

import (
	"strings"
)

// Tokenize converts a command line into a token stream terminated by a TokenEOF token.
//
// Quotes are removed and escapes resolved, so word values are exactly what the
// executed program would receive in argv. A *LexerError is returned for quoting
// errors and for every construct whose value cannot be known without running the
// shell.
func Tokenize(input string) ([]Token, error) {
	lx := &lexer{src: input}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.tokens, nil
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

func (lx *lexer) run() error {
	for {
		lx.skipBlanks()
		if lx.pos >= len(lx.src) {
			break
		}

		ch := lx.src[lx.pos]

		// An unquoted newline ends a command just like ';'.
		if ch == '\n' {
			lx.emit(TokenOperator, OpSemicolon)
			lx.pos++
			continue
		}

		if op := lx.operatorAt(lx.pos); op != "" {
			lx.emit(TokenOperator, op)
			lx.pos += len(op)
			continue
		}

		if err := lx.checkUnsupported(lx.pos); err != nil {
			return err
		}

		if lx.redirectAt(lx.pos, true) {
			if err := lx.lexRedirect(); err != nil {
				return err
			}
			continue
		}

		start := lx.pos
		word, ok, err := lx.lexWord()
		if err != nil {
			return err
		}
		if ok {
			lx.emit(TokenWord, word)
		} else if lx.pos == start {
			// Nothing consumable here; lexWord only stops without progress on a
			// terminator, which the checks above already handled.
			return unsupported(lx.pos, "unexpected character "+string(ch))
		}
	}

	lx.emit(TokenEOF, "")
	return nil
}

func (lx *lexer) emit(t TokenType, value string) {
	lx.tokens = append(lx.tokens, Token{Type: t, Value: value})
}

// skipBlanks skips spaces, tabs, carriage returns and backslash-newline continuations.
// Newlines are significant and are left in place.
func (lx *lexer) skipBlanks() {
	for lx.pos < len(lx.src) {
		switch {
		case isBlank(lx.src[lx.pos]):
			lx.pos++
		case strings.HasPrefix(lx.src[lx.pos:], "\\\n"):
			lx.pos += 2
		default:
			return
		}
	}
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// operatorAt returns the operator starting at pos, longest match first.
func (lx *lexer) operatorAt(pos int) string {
	rest := lx.src[pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return ""
}

// redirectAt reports whether a redirection starts at pos. A numeric file
// descriptor prefix is only recognised at the start of a word: "a2>x" is the
// word "a2" followed by ">x".
func (lx *lexer) redirectAt(pos int, wordStart bool) bool {
	i := pos
	if wordStart {
		for i < len(lx.src) && isDigit(lx.src[i]) {
			i++
		}
	}
	return i < len(lx.src) && (lx.src[i] == '>' || lx.src[i] == '<')
}

func (lx *lexer) byteAt(pos int) byte {
	if pos < 0 || pos >= len(lx.src) {
		return 0
	}
	return lx.src[pos]
}

// checkUnsupported rejects constructs that start at pos in unquoted context.
func (lx *lexer) checkUnsupported(pos int) *LexerError {
	ch := lx.byteAt(pos)
	next := lx.byteAt(pos + 1)

	switch ch {
	case '$':
		switch {
		case next == '(' && lx.byteAt(pos+2) == '(':
			return unsupported(pos, "arithmetic expansion $((...))")
		case next == '(':
			return unsupported(pos, "command substitution $(...)")
		case next == '{':
			return unsupported(pos, "variable expansion ${...}")
		case isNameStart(next):
			return unsupported(pos, "variable expansion $"+string(next)+"...")
		case next == '\'' || next == '"':
			return unsupported(pos, "ANSI-C or locale quoting $'...'")
		}
	case '`':
		return unsupported(pos, "command substitution `...`")
	case '<', '>':
		if next == '(' {
			return unsupported(pos, "process substitution "+string(ch)+"(...)")
		}
	case '(', ')':
		return unsupported(pos, "subshell (...)")
	case '{':
		return unsupported(pos, "brace group or brace expansion {...}")
	case '&':
		if next != '&' {
			return unsupported(pos, "background execution &")
		}
	}
	return nil
}

// lexRedirect consumes a redirection starting at the current position.
func (lx *lexer) lexRedirect() error {
	start := lx.pos
	i := lx.pos
	for i < len(lx.src) && isDigit(lx.src[i]) {
		i++
	}

	opChar := lx.src[i]
	if lx.byteAt(i+1) == '(' {
		return unsupported(i, "process substitution "+string(opChar)+"(...)")
	}
	if opChar == '<' && lx.byteAt(i+1) == '<' {
		return unsupported(i, "here-document <<")
	}

	// fd-to-fd: 2>&1, >&2, 2>&-
	if lx.byteAt(i+1) == '&' {
		j := i + 2
		if lx.byteAt(j) == '-' {
			j++
		} else {
			for j < len(lx.src) && isDigit(lx.src[j]) {
				j++
			}
			if j == i+2 {
				return unsupported(i, "redirection of both output streams >&file")
			}
		}
		if j < len(lx.src) && !lx.terminatesWord(j) {
			return unsupported(start, "malformed file descriptor redirection")
		}
		lx.emit(TokenRedirect, lx.src[start:j])
		lx.pos = j
		return nil
	}

	opEnd := i + 1
	if opChar == '>' && lx.byteAt(i+1) == '>' {
		opEnd++
	}
	op := lx.src[start:opEnd]
	lx.pos = opEnd

	for lx.pos < len(lx.src) && isBlank(lx.src[lx.pos]) {
		lx.pos++
	}
	if lx.pos >= len(lx.src) || lx.terminatesWord(lx.pos) {
		return &LexerError{Pos: lx.pos, Feature: "after " + op, Kind: ErrMissingRedirectTarget}
	}

	target, ok, err := lx.lexWord()
	if err != nil {
		return err
	}
	if !ok {
		return &LexerError{Pos: lx.pos, Feature: "after " + op, Kind: ErrMissingRedirectTarget}
	}
	// A quoted or escaped target such as '&1' names a file, but folded into the
	// token it would read as an fd-to-fd redirection.
	if strings.HasPrefix(target, "&") {
		return unsupported(start, "ambiguous redirection target "+target)
	}
	lx.emit(TokenRedirect, op+target)
	return nil
}

// terminatesWord reports whether an unquoted word ends before pos.
func (lx *lexer) terminatesWord(pos int) bool {
	ch := lx.src[pos]
	if isBlank(ch) || ch == '\n' || ch == '<' || ch == '>' {
		return true
	}
	return lx.operatorAt(pos) != ""
}

// lexWord consumes one word, concatenating adjacent quoted and unquoted segments.
// ok is false when no word characters were present (for example a lone trailing
// backslash).
func (lx *lexer) lexWord() (string, bool, error) {
	var b strings.Builder
	found := false

	for lx.pos < len(lx.src) && !lx.terminatesWord(lx.pos) {
		ch := lx.src[lx.pos]
		switch ch {
		case '\'':
			if err := lx.lexSingleQuoted(&b); err != nil {
				return "", false, err
			}
			found = true
		case '"':
			if err := lx.lexDoubleQuoted(&b); err != nil {
				return "", false, err
			}
			found = true
		case '\\':
			if lx.pos+1 >= len(lx.src) {
				// Trailing backslash: a line continuation with nothing after it.
				lx.pos++
				continue
			}
			next := lx.src[lx.pos+1]
			lx.pos += 2
			if next == '\n' {
				continue
			}
			b.WriteByte(next)
			found = true
		default:
			if err := lx.checkUnsupported(lx.pos); err != nil {
				return "", false, err
			}
			b.WriteByte(ch)
			lx.pos++
			found = true
		}
	}

	return b.String(), found, nil
}

func (lx *lexer) lexSingleQuoted(b *strings.Builder) error {
	open := lx.pos
	end := strings.IndexByte(lx.src[open+1:], '\'')
	if end < 0 {
		return &LexerError{Pos: open, Feature: "single quote", Kind: ErrUnterminatedQuote}
	}
	b.WriteString(lx.src[open+1 : open+1+end])
	lx.pos = open + end + 2
	return nil
}

func (lx *lexer) lexDoubleQuoted(b *strings.Builder) error {
	open := lx.pos
	lx.pos++

	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch ch {
		case '"':
			lx.pos++
			return nil
		case '\\':
			if lx.pos+1 >= len(lx.src) {
				return &LexerError{Pos: open, Feature: "double quote", Kind: ErrUnterminatedQuote}
			}
			next := lx.src[lx.pos+1]
			switch next {
			case '"', '\\', '$', '`':
				b.WriteByte(next)
				lx.pos += 2
			case '\n':
				lx.pos += 2
			default:
				b.WriteByte('\\')
				lx.pos++
			}
		case '`':
			return unsupported(lx.pos, "command substitution `...`")
		case '$':
			next := lx.byteAt(lx.pos + 1)
			switch {
			case next == '(' && lx.byteAt(lx.pos+2) == '(':
				return unsupported(lx.pos, "arithmetic expansion $((...))")
			case next == '(':
				return unsupported(lx.pos, "command substitution $(...)")
			case next == '{':
				return unsupported(lx.pos, "variable expansion ${...}")
			case isNameStart(next):
				return unsupported(lx.pos, "variable expansion $"+string(next)+"...")
			}
			b.WriteByte(ch)
			lx.pos++
		default:
			b.WriteByte(ch)
			lx.pos++
		}
	}

	return &LexerError{Pos: open, Feature: "double quote", Kind: ErrUnterminatedQuote}
}
