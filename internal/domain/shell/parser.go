package shell

import (
	"fmt"
	"regexp"
)

// RedirectDirection tells whether a file redirection reads or writes its target.
type RedirectDirection int

const (
	// RedirectInput is "<".
	RedirectInput RedirectDirection = iota
	// RedirectOutput is ">" or ">>".
	RedirectOutput
)

func (d RedirectDirection) String() string {
	if d == RedirectInput {
		return "input"
	}
	return "output"
}

// FileRedirect is a redirection whose target is a file path.
type FileRedirect struct {
	Target    string
	Direction RedirectDirection
	Append    bool // ">>"
}

// ParsedCommand is one simple command of a command line.
type ParsedCommand struct {
	Executable    string
	Args          []string
	ReceivingPipe bool // true iff the command directly follows a "|"
	FileRedirects []FileRedirect
}

// CommandList is the ordered list of commands of a command line.
type CommandList []ParsedCommand

var (
	fdRedirectRe   = regexp.MustCompile(`^\d*[<>]&(\d+|-)$`)
	fileRedirectRe = regexp.MustCompile(`(?s)^\d*(>>|>|<)(.*)$`)
)

// ParseCommand tokenizes and parses a command line.
func ParseCommand(input string) (CommandList, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse groups a token stream into commands split on operator tokens.
// A stream holding only TokenEOF yields an empty list.
func Parse(tokens []Token) (CommandList, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		return nil, &ParserError{Index: len(tokens), Msg: "token stream is not terminated by eof"}
	}

	p := &parser{tokens: tokens}
	list := CommandList{}
	lastOp := ""

	for {
		// Consecutive separators produce empty commands, e.g. a trailing ";".
		for p.peek().Type == TokenOperator {
			lastOp = p.next().Value
		}
		if p.peek().Type == TokenEOF {
			break
		}

		cmd, ok, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		if ok {
			cmd.ReceivingPipe = lastOp == OpPipe
			list = append(list, cmd)
		}

		if p.peek().Type == TokenOperator {
			lastOp = p.next().Value
		} else {
			lastOp = ""
		}
	}

	return list, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) atCommandEnd() bool {
	t := p.peek().Type
	return t == TokenOperator || t == TokenEOF
}

// parseCommand parses one simple command. ok is false for an empty segment.
func (p *parser) parseCommand() (ParsedCommand, bool, error) {
	var redirects []FileRedirect
	leading := 0
	for p.peek().Type == TokenRedirect {
		if fr, ok := parseRedirect(p.next().Value); ok {
			redirects = append(redirects, fr)
		}
		leading++
	}

	if p.atCommandEnd() {
		if leading > 0 {
			return ParsedCommand{}, false, &ParserError{Index: p.pos, Msg: "redirection without command"}
		}
		return ParsedCommand{}, false, nil
	}

	tok := p.next()
	if tok.Type != TokenWord {
		return ParsedCommand{}, false, &ParserError{
			Index: p.pos - 1,
			Msg:   fmt.Sprintf("expected command name, got %s", tok),
		}
	}

	cmd := ParsedCommand{
		Executable:    tok.Value,
		Args:          []string{},
		FileRedirects: redirects,
	}

	for !p.atCommandEnd() {
		tok := p.next()
		switch tok.Type {
		case TokenWord:
			cmd.Args = append(cmd.Args, tok.Value)
		case TokenRedirect:
			if fr, ok := parseRedirect(tok.Value); ok {
				cmd.FileRedirects = append(cmd.FileRedirects, fr)
			}
		}
	}

	return cmd, true, nil
}

// parseRedirect extracts the file target of a redirect token. fd-to-fd
// redirections such as "2>&1" carry no file and report ok == false.
func parseRedirect(value string) (FileRedirect, bool) {
	if fdRedirectRe.MatchString(value) {
		return FileRedirect{}, false
	}
	m := fileRedirectRe.FindStringSubmatch(value)
	if m == nil {
		return FileRedirect{}, false
	}
	fr := FileRedirect{Target: m[2], Direction: RedirectOutput}
	switch m[1] {
	case "<":
		fr.Direction = RedirectInput
	case ">>":
		fr.Append = true
	}
	return fr, true
}
